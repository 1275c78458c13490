package main

import (
	"context"
	"database/sql"
	"os"

	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/config"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/env"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/server"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/service"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/service/provider"
	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
	"github.com/urfave/cli"
	"gopkg.in/inconshreveable/log15.v2"
)

const (
	// AppName is the name of the application
	AppName = "crowdd"
	// AppVersion is the version of the application
	AppVersion = "0.1"
	// AppDescription describes what this application does
	AppDescription = "crowdfunding payment daemon"

	// EnvVarConfig can be used to set the configuration file name instead
	// of the config flag
	EnvVarConfig = "CROWDDCFG"
)

var log log15.Logger

func main() {
	log = env.Log.New(log15.Ctx{
		"AppName":    AppName,
		"AppVersion": AppVersion,
	})

	app := cli.NewApp()
	app.Name = AppName
	app.Version = AppVersion
	app.Usage = AppDescription
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Usage:  "config file name",
			EnvVar: EnvVarConfig,
		},
	}
	app.Action = serveAction

	err := app.Run(os.Args)
	if err != nil {
		log.Crit("daemon exited with error", log15.Ctx{"err": err})
		os.Exit(1)
	}
}

func serveAction(c *cli.Context) error {
	env.SetRuntime()

	cfg, err := readConfig(c.String("config"))
	if err != nil {
		return err
	}

	crowdDBWrite, err := openDB(cfg.Database.CrowdDBWrite)
	if err != nil {
		log.Crit("error connecting to crowd DB (write)", log15.Ctx{"err": err})
		return err
	}
	var crowdDBReadOnly *sql.DB
	if cfg.Database.CrowdDBReadOnly != "" {
		crowdDBReadOnly, err = openDB(cfg.Database.CrowdDBReadOnly)
		if err != nil {
			log.Crit("error connecting to crowd DB (read-only)", log15.Ctx{"err": err})
			return err
		}
	}

	ctx, err := service.NewContext(context.Background(), cfg, log)
	if err != nil {
		log.Crit("error creating service context", log15.Ctx{"err": err})
		return err
	}
	ctx.SetCrowdDB(crowdDBWrite, crowdDBReadOnly)

	router := mux.NewRouter()
	providerService, err := provider.NewService(ctx)
	if err != nil {
		log.Crit("error creating provider service", log15.Ctx{"err": err})
		return err
	}
	err = providerService.AttachDrivers(router)
	if err != nil {
		log.Crit("error attaching provider drivers", log15.Ctx{"err": err})
		return err
	}

	srv := server.NewServer(log)
	err = srv.RegisterService(cfg.Provider.Service, router)
	if err != nil {
		log.Crit("error registering provider service", log15.Ctx{"err": err})
		return err
	}
	log.Info("serving...", log15.Ctx{"address": cfg.Provider.Service.Address})
	return srv.Serve()
}

func readConfig(cfgFileName string) (config.Config, error) {
	if cfgFileName == "" {
		log.Warn("no config file provided. running with default config")
		return config.DefaultConfig(), nil
	}
	cfgFile, err := os.Open(cfgFileName)
	if err != nil {
		log.Crit("error opening config file", log15.Ctx{
			"err":         err,
			"cfgFileName": cfgFileName,
		})
		return config.Config{}, err
	}
	defer cfgFile.Close()
	cfg, err := config.ReadConfig(cfgFile)
	if err != nil {
		log.Crit("error reading config file", log15.Ctx{
			"err":         err,
			"cfgFileName": cfgFileName,
		})
		return config.Config{}, err
	}
	return cfg, nil
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
