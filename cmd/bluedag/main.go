package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/kaspanet/bluedag/infrastructure/config"
	"github.com/kaspanet/bluedag/infrastructure/logger"
	"github.com/kaspanet/bluedag/util/panics"
	"github.com/kaspanet/bluedag/util/profiling"
	"github.com/kaspanet/bluedag/version"
)

func main() {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error parsing command-line arguments: %s\n", err)
		os.Exit(1)
	}

	// Show the version and exit if the version flag was specified.
	if cfg.ShowVersion {
		fmt.Println("bluedag version", version.Version())
		os.Exit(0)
	}

	initLog(cfg)

	os.Exit(run(cfg))
}

func run(cfg *config.Config) int {
	defer logger.BackendLog.Close()
	defer panics.HandlePanic(log)

	log.Infof("Version %s", version.Version())

	if cfg.CPUProfile != "" {
		stop, err := profiling.StartCPUProfile(cfg.CPUProfile, log)
		if err != nil {
			log.Errorf("%s", err)
			return 1
		}
		defer stop()
	}

	log.Infof("Replaying scenario %s with k=%d on %s", cfg.Scenario.Name, cfg.K, cfg.NetParams().Name)
	summary, err := replay(cfg)
	if err != nil {
		log.Criticalf("Replay failed: %+v", err)
		return 1
	}
	summary.log()
	return 0
}
