package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/kaspanet/bluedag/domain/dagconfig"
	"github.com/kaspanet/bluedag/domain/dagscenarios"
	"github.com/kaspanet/bluedag/infrastructure/logger"
)

const (
	defaultAppDirname     = ".bluedag"
	defaultLogDirname     = "logs"
	defaultLogLevel       = "info"
	defaultLogFilename    = "bluedag.log"
	defaultErrLogFilename = "bluedag_err.log"

	// scenarioK marks that no --k was given and the scenario's own K is used.
	scenarioK = -1
)

// Flags defines the command line options of bluedag.
type Flags struct {
	ShowVersion   bool   `short:"V" long:"version" description:"Display version information and exit"`
	Scenario      string `short:"s" long:"scenario" description:"Name of a built-in scenario to replay"`
	ScenarioFile  string `long:"scenario-file" description:"Path to a JSON scenario to replay"`
	K             int    `short:"k" long:"k" default:"-1" description:"Anticone bound to classify with. Defaults to the one of the scenario"`
	DeriveK       bool   `long:"derive-k" description:"Derive the anticone bound from the propagation delay, block rate and security of the network"`
	Verify        bool   `long:"verify" description:"Verify the integrity of the DAG after every block"`
	ChooseParents int    `long:"choose-parents" description:"After the replay, choose up to this many independent parents for a new block"`
	LogLevel      string `short:"d" long:"loglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical, off}"`
	LogDir        string `long:"logdir" description:"Directory to log output"`
	CPUProfile    string `long:"cpuprofile" description:"Write CPU profile to the specified file"`
	NetworkFlags
}

// Config is the resolved configuration of a bluedag run.
type Config struct {
	*Flags

	// Scenario is the scenario to replay.
	Scenario *dagscenarios.Scenario

	// K is the anticone bound every block is classified with.
	K dagconfig.KType
}

// LogFile returns the path of the main log file.
func (cfg *Config) LogFile() string {
	return filepath.Join(cfg.LogDir, defaultLogFilename)
}

// ErrLogFile returns the path of the log file that only gets warnings and
// errors.
func (cfg *Config) ErrLogFile() string {
	return filepath.Join(cfg.LogDir, defaultErrLogFilename)
}

func defaultLogDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, defaultAppDirname, defaultLogDirname)
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = strings.Replace(path, "~", homeDir, 1)
		}
	}
	return filepath.Clean(os.ExpandEnv(path))
}

// LoadConfig parses args and resolves them into a Config:
// 	1) Start with the defaults
// 	2) Apply the command line options
// 	3) Resolve the network and apply its DAG params override file
// 	4) Load the scenario and pick the anticone bound
//
// A help request is returned as a *flags.Error of type flags.ErrHelp. When
// --version is given only the flags are set.
func LoadConfig(args []string) (*Config, error) {
	cfgFlags := &Flags{
		K:        scenarioK,
		LogLevel: defaultLogLevel,
		LogDir:   defaultLogDir(),
	}
	parser := flags.NewParser(cfgFlags, flags.HelpFlag)
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}
	if len(remainingArgs) > 0 {
		return nil, errors.Errorf("unexpected arguments: %s", strings.Join(remainingArgs, " "))
	}
	if cfgFlags.ShowVersion {
		return &Config{Flags: cfgFlags}, nil
	}

	err = cfgFlags.ResolveNetwork(parser)
	if err != nil {
		return nil, err
	}

	if _, ok := logger.LevelFromString(cfgFlags.LogLevel); !ok {
		return nil, errors.Errorf("invalid log level %s", cfgFlags.LogLevel)
	}
	cfgFlags.LogDir = cleanAndExpandPath(cfgFlags.LogDir)
	if cfgFlags.CPUProfile != "" {
		cfgFlags.CPUProfile = cleanAndExpandPath(cfgFlags.CPUProfile)
	}

	if cfgFlags.ChooseParents < 0 {
		return nil, errors.Errorf("--choose-parents must not be negative, got %d", cfgFlags.ChooseParents)
	}

	cfg := &Config{Flags: cfgFlags}
	cfg.Scenario, err = cfgFlags.loadScenario()
	if err != nil {
		return nil, err
	}
	cfg.K, err = cfgFlags.resolveK(cfg.Scenario)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfgFlags *Flags) loadScenario() (*dagscenarios.Scenario, error) {
	switch {
	case cfgFlags.Scenario != "" && cfgFlags.ScenarioFile != "":
		return nil, errors.New("--scenario and --scenario-file cannot be used together")
	case cfgFlags.ScenarioFile != "":
		return dagscenarios.LoadFile(cleanAndExpandPath(cfgFlags.ScenarioFile))
	case cfgFlags.Scenario != "":
		scenario, ok := dagscenarios.ByName(cfgFlags.Scenario)
		if !ok {
			return nil, errors.Errorf("unknown scenario %s, choose one of: %s",
				cfgFlags.Scenario, strings.Join(dagscenarios.Names(), ", "))
		}
		return scenario, nil
	default:
		return nil, errors.New("one of --scenario or --scenario-file is required")
	}
}

func (cfgFlags *Flags) resolveK(scenario *dagscenarios.Scenario) (dagconfig.KType, error) {
	if cfgFlags.DeriveK {
		if cfgFlags.K != scenarioK {
			return 0, errors.New("--k and --derive-k cannot be used together")
		}
		err := cfgFlags.ActiveNetParams.DeriveK()
		if err != nil {
			return 0, err
		}
		return cfgFlags.ActiveNetParams.K, nil
	}
	if cfgFlags.K == scenarioK {
		return scenario.K, nil
	}
	if cfgFlags.K < 0 || cfgFlags.K > math.MaxUint8 {
		return 0, errors.Errorf("--k must be between 0 and %d, got %d", math.MaxUint8, cfgFlags.K)
	}
	return dagconfig.KType(cfgFlags.K), nil
}
