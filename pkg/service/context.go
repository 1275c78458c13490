package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/config"
	"gopkg.in/inconshreveable/log15.v2"
)

// Context is a custom context which is used by the service pkg
type Context struct {
	context.Context

	cfg config.Config
	log log15.Logger

	crowdDBWrite    *sql.DB
	crowdDBReadOnly *sql.DB
}

// Value wraps the Context.Value
func (ctx *Context) Value(key interface{}) interface{} {
	switch key {
	case "cfg":
		return ctx.cfg
	case "log":
		return ctx.log
	default:
		return ctx.Context.Value(key)
	}
}

// WithValue creates a new service context with the given value
func (ctx *Context) WithValue(key, value interface{}) *Context {
	return &Context{
		Context:         context.WithValue(ctx.Context, key, value),
		cfg:             ctx.cfg,
		log:             ctx.log,
		crowdDBWrite:    ctx.crowdDBWrite,
		crowdDBReadOnly: ctx.crowdDBReadOnly,
	}
}

// Config returns the config.Config associated with the context
func (ctx *Context) Config() *config.Config {
	return &ctx.cfg
}

// Log returns the log15.Logger associated with the context
func (ctx *Context) Log() log15.Logger {
	return ctx.log
}

type dbRequestReadOnly bool

// ReadOnly is a possible parameter for the ctx.CrowdDB() method. If this
// parameter is passed, the method will attempt to return the read-only
// database connection
var ReadOnly = dbRequestReadOnly(true)

// CrowdDB returns the *sql.DB for the crowdfunding DB
// If the parameter(s) contain a service.ReadOnly, the read-only connection
// will be returned if present
func (ctx *Context) CrowdDB(ros ...dbRequestReadOnly) *sql.DB {
	var ro bool
	if len(ros) > 0 {
		for _, r := range ros {
			if r {
				ro = true
			}
		}
	}
	if !ro {
		return ctx.crowdDBWrite
	}
	if ctx.crowdDBReadOnly == nil {
		return ctx.crowdDBWrite
	}
	return ctx.crowdDBReadOnly
}

// SetCrowdDB sets the crowdfunding DB connection(s)
// It will panic if the write connection is nil
func (ctx *Context) SetCrowdDB(w, ro *sql.DB) {
	if w == nil {
		panic("write DB connection cannot be nil")
	}
	ctx.crowdDBWrite, ctx.crowdDBReadOnly = w, ro
}

// NewContext creates a new service context for use in the service pkg
func NewContext(ctx context.Context, cfg config.Config, log log15.Logger) (*Context, error) {
	if log == nil {
		return nil, errors.New("log cannot be nil")
	}
	c := &Context{
		Context: ctx,
		cfg:     cfg,
		log:     log,
	}
	return c, nil
}
