package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/kaspanet/bluedag/domain/dagconfig"
)

// NetworkFlags holds the network configuration, that is which network is selected.
type NetworkFlags struct {
	Testnet               bool   `long:"testnet" description:"Use the test network"`
	Simnet                bool   `long:"simnet" description:"Use the simulation network"`
	Devnet                bool   `long:"devnet" description:"Use the development network"`
	OverrideDAGParamsFile string `long:"override-dag-params-file" description:"Overrides DAG params (allowed only on devnet)"`

	ActiveNetParams *dagconfig.Params
}

type overrideDAGParamsConfig struct {
	K                              *dagconfig.KType `json:"k"`
	PropagationDelayInMilliSeconds *int64           `json:"propagationDelayInMilliSeconds"`
	BlockRate                      *float64         `json:"blockRate"`
	Security                       *float64         `json:"security"`
	AnticoneCacheSize              *int             `json:"anticoneCacheSize"`
}

// ResolveNetwork parses the network command line argument and sets
// ActiveNetParams accordingly. It returns an error if more than one network
// was selected, or if the resulting parameters are invalid.
//
// ActiveNetParams always points to a copy, so overriding it never changes
// the registered networks.
func (networkFlags *NetworkFlags) ResolveNetwork(parser *flags.Parser) error {
	params := dagconfig.MainnetParams
	// Multiple networks can't be selected simultaneously.
	numNets := 0
	if networkFlags.Testnet {
		numNets++
		params = dagconfig.TestnetParams
	}
	if networkFlags.Simnet {
		numNets++
		params = dagconfig.SimnetParams
	}
	if networkFlags.Devnet {
		numNets++
		params = dagconfig.DevnetParams
	}
	if numNets > 1 {
		message := "Multiple networks parameters (testnet, simnet, devnet) cannot be used " +
			"together. Please choose only one network"
		err := errors.Errorf(message)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return err
	}
	networkFlags.ActiveNetParams = &params

	err := networkFlags.overrideDAGParams()
	if err != nil {
		return err
	}
	return networkFlags.ActiveNetParams.Validate()
}

// NetParams returns the ActiveNetParams
func (networkFlags *NetworkFlags) NetParams() *dagconfig.Params {
	return networkFlags.ActiveNetParams
}

func (networkFlags *NetworkFlags) overrideDAGParams() error {
	if networkFlags.OverrideDAGParamsFile == "" {
		return nil
	}

	if !networkFlags.Devnet {
		return errors.Errorf("override-dag-params-file is allowed only when using devnet")
	}

	overrideDAGParamsFile, err := os.Open(networkFlags.OverrideDAGParamsFile)
	if err != nil {
		return errors.WithStack(err)
	}
	defer overrideDAGParamsFile.Close()

	decoder := json.NewDecoder(overrideDAGParamsFile)
	decoder.DisallowUnknownFields()
	config := &overrideDAGParamsConfig{}
	err = decoder.Decode(config)
	if err != nil {
		return errors.Wrapf(err, "failed to decode %s", networkFlags.OverrideDAGParamsFile)
	}

	if config.K != nil {
		networkFlags.ActiveNetParams.K = *config.K
	}

	if config.PropagationDelayInMilliSeconds != nil {
		networkFlags.ActiveNetParams.PropagationDelay = time.Duration(*config.PropagationDelayInMilliSeconds) *
			time.Millisecond
	}

	if config.BlockRate != nil {
		networkFlags.ActiveNetParams.BlockRate = *config.BlockRate
	}

	if config.Security != nil {
		networkFlags.ActiveNetParams.Security = *config.Security
	}

	if config.AnticoneCacheSize != nil {
		networkFlags.ActiveNetParams.AnticoneCacheSize = *config.AnticoneCacheSize
	}

	return nil
}
