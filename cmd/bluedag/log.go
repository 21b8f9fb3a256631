package main

import (
	"fmt"
	"os"

	"github.com/kaspanet/bluedag/infrastructure/config"
	"github.com/kaspanet/bluedag/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BDCM")

func initLog(cfg *config.Config) {
	logger.InitLog(cfg.LogFile(), cfg.ErrLogFile())
	err := logger.SetLogLevels(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting the log level: %s\n", err)
		os.Exit(1)
	}
}
