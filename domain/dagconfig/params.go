package dagconfig

import (
	"time"

	"github.com/pkg/errors"
)

// KType defines the size of the anticone bound K of the blue set.
type KType uint8

const (
	defaultK                 = 15
	simnetK                  = 3
	defaultAnticoneCacheSize = 1024
	defaultPropagationDelay  = 5 * time.Second
	defaultBlockRate         = 1.0
	defaultSecurity          = 0.01
	simnetPropagationDelay   = time.Second
	simnetBlockRate          = 0.5
	simnetSecurity           = 0.05
	maxAnticoneCacheSize     = 1 << 20
)

// Params defines a network by the parameters of its blue set maintenance.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// K is the maximal number of blue blocks allowed in the anticone of a
	// blue block.
	K KType

	// PropagationDelay is the assumed upper bound of the time it takes a
	// block to reach every honest node.
	PropagationDelay time.Duration

	// BlockRate is the expected number of blocks created per second.
	BlockRate float64

	// Security is the accepted probability of an honest block being
	// marked red. Together with PropagationDelay and BlockRate it derives K,
	// see AnticoneSize.
	Security float64

	// AnticoneCacheSize is the number of sorted anticone query results
	// kept between two mutations of the DAG.
	AnticoneCacheSize int
}

// Validate returns an error if the parameters can't be used to run a DAG.
func (p *Params) Validate() error {
	if p.Name == "" {
		return errors.New("network name must not be empty")
	}
	if p.AnticoneCacheSize <= 0 || p.AnticoneCacheSize > maxAnticoneCacheSize {
		return errors.Errorf("anticone cache size must be in (0, %d], got %d",
			maxAnticoneCacheSize, p.AnticoneCacheSize)
	}
	return nil
}

// DeriveK replaces K with the anticone size derived from the network's
// propagation delay, block rate and security.
func (p *Params) DeriveK() error {
	k, err := AnticoneSize(p.PropagationDelay, p.BlockRate, p.Security)
	if err != nil {
		return errors.Wrapf(err, "failed to derive K for %s", p.Name)
	}
	p.K = k
	return nil
}

// MainnetParams defines the parameters for the main network.
var MainnetParams = Params{
	Name:              "mainnet",
	K:                 defaultK,
	PropagationDelay:  defaultPropagationDelay,
	BlockRate:         defaultBlockRate,
	Security:          defaultSecurity,
	AnticoneCacheSize: defaultAnticoneCacheSize,
}

// TestnetParams defines the parameters for the test network.
var TestnetParams = Params{
	Name:              "testnet",
	K:                 defaultK,
	PropagationDelay:  defaultPropagationDelay,
	BlockRate:         defaultBlockRate,
	Security:          defaultSecurity,
	AnticoneCacheSize: defaultAnticoneCacheSize,
}

// SimnetParams defines the parameters for the simulation network, used by
// the figure scenarios.
var SimnetParams = Params{
	Name:              "simnet",
	K:                 simnetK,
	PropagationDelay:  simnetPropagationDelay,
	BlockRate:         simnetBlockRate,
	Security:          simnetSecurity,
	AnticoneCacheSize: defaultAnticoneCacheSize,
}

// DevnetParams defines the parameters for the development network. It is
// the only network whose parameters may be overridden.
var DevnetParams = Params{
	Name:              "devnet",
	K:                 simnetK,
	PropagationDelay:  simnetPropagationDelay,
	BlockRate:         simnetBlockRate,
	Security:          simnetSecurity,
	AnticoneCacheSize: defaultAnticoneCacheSize,
}

var (
	// ErrDuplicateNet describes an error where the parameters for a network
	// could not be set due to the network already being a standard network
	// or previously-registered into this package.
	ErrDuplicateNet = errors.New("duplicate network")

	// ErrUnknownNet describes an error where a network name isn't registered.
	ErrUnknownNet = errors.New("unknown network")
)

var registeredNets = make(map[string]*Params)

// Register registers the parameters of a network. This may error with
// ErrDuplicateNet if a network of the same name is already registered.
func Register(params *Params) error {
	if _, ok := registeredNets[params.Name]; ok {
		return errors.Wrapf(ErrDuplicateNet, "network %s", params.Name)
	}
	registeredNets[params.Name] = params
	return nil
}

// ParamsByName returns the parameters of a registered network.
func ParamsByName(name string) (*Params, error) {
	params, ok := registeredNets[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownNet, "network %s", name)
	}
	return params, nil
}

// mustRegister performs the same function as Register except it panics if there
// is an error. This should only be called from package init functions.
func mustRegister(params *Params) {
	if err := Register(params); err != nil {
		panic("failed to register network: " + err.Error())
	}
}

func init() {
	// Register all default networks when the package is initialized.
	mustRegister(&MainnetParams)
	mustRegister(&TestnetParams)
	mustRegister(&SimnetParams)
	mustRegister(&DevnetParams)
}
