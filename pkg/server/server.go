package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/config"
	"github.com/facebookgo/grace/gracehttp"
	"gopkg.in/inconshreveable/log15.v2"
)

// Server is a crowdd server
//
// It serves the registered services and performs a graceful handoff
// on restart
type Server struct {
	log log15.Logger

	httpServers []*http.Server
}

// NewServer creates a new crowdd server
func NewServer(log log15.Logger) *Server {
	srv := &Server{
		httpServers: make([]*http.Server, 0, 3),
	}
	if log == nil {
		log = log15.New()
		log.SetHandler(log15.StderrHandler)
	}
	srv.log = log.New(log15.Ctx{"pkg": "github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/server"})
	return srv
}

// RegisterService adds a service to the server
// It will serve the HTTP with the given service
func (s *Server) RegisterService(cfg config.ServiceConfig, handler http.Handler) error {
	srv := &http.Server{
		Addr:           cfg.Address,
		Handler:        handler,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}
	var err error
	srv.ReadTimeout, err = cfg.ReadTimeout.Duration()
	if err != nil {
		return fmt.Errorf("error parsing duration for server %s: %v", cfg.Address, err)
	}
	srv.WriteTimeout, err = cfg.WriteTimeout.Duration()
	if err != nil {
		return fmt.Errorf("error parsing duration for server %s: %v", cfg.Address, err)
	}
	s.httpServers = append(s.httpServers, srv)
	return nil
}

// Serve starts serving all registered services
//
// It blocks until the process is signalled to stop or hands its listeners
// off to a successor process
func (s *Server) Serve() error {
	if len(s.httpServers) == 0 {
		return errors.New("no services registered")
	}
	pid := os.Getpid()
	for _, srv := range s.httpServers {
		s.log.Info("server listening", log15.Ctx{
			"address": srv.Addr,
			"PID":     pid,
		})
	}
	err := gracehttp.Serve(s.httpServers...)
	if err != nil {
		return fmt.Errorf("error serving HTTP: %v", err)
	}
	s.log.Info("exiting. graceful handoff complete.", log15.Ctx{"pid": pid})
	return nil
}
