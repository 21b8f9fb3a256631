// Package dagscenarios holds named DAGs, each a sequence of blocks given
// in insertion order together with the anticone bound they are meant to be
// classified with.
package dagscenarios

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/kaspanet/bluedag/domain/dagconfig"
)

// Block is a block of a scenario. A block without parents is the root.
type Block struct {
	Name    string   `json:"name"`
	Parents []string `json:"parents"`
}

// Scenario is a named sequence of blocks. Every block refers only to
// blocks that come before it.
type Scenario struct {
	Name   string          `json:"name"`
	K      dagconfig.KType `json:"k"`
	Blocks []Block         `json:"blocks"`
}

// Validate returns an error if the scenario can't be replayed in order.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("scenario name must not be empty")
	}
	if len(s.Blocks) == 0 {
		return errors.Errorf("scenario %s has no blocks", s.Name)
	}
	seen := make(map[string]struct{}, len(s.Blocks))
	for i, block := range s.Blocks {
		if block.Name == "" {
			return errors.Errorf("block #%d of scenario %s has no name", i, s.Name)
		}
		if _, ok := seen[block.Name]; ok {
			return errors.Errorf("block %s appears twice in scenario %s", block.Name, s.Name)
		}
		for _, parent := range block.Parents {
			if _, ok := seen[parent]; !ok {
				return errors.Errorf("block %s of scenario %s refers to %s before it appears",
					block.Name, s.Name, parent)
			}
		}
		seen[block.Name] = struct{}{}
	}
	return nil
}

// Load decodes a JSON scenario from r and validates it.
func Load(r io.Reader) (*Scenario, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	scenario := &Scenario{}
	err := decoder.Decode(scenario)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode scenario")
	}
	err = scenario.Validate()
	if err != nil {
		return nil, err
	}
	return scenario, nil
}

// LoadFile is Load for the file at path.
func LoadFile(path string) (*Scenario, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer file.Close()

	scenario, err := Load(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}
	return scenario, nil
}

var registeredScenarios = make(map[string]*Scenario)

func mustRegister(scenario *Scenario) {
	err := scenario.Validate()
	if err != nil {
		panic(err)
	}
	if _, ok := registeredScenarios[scenario.Name]; ok {
		panic(fmt.Sprintf("scenario %s is registered twice", scenario.Name))
	}
	registeredScenarios[scenario.Name] = scenario
}

// ByName returns the built-in scenario called name.
func ByName(name string) (*Scenario, bool) {
	scenario, ok := registeredScenarios[name]
	return scenario, ok
}

// Names returns the names of all built-in scenarios, sorted.
func Names() []string {
	names := make([]string, 0, len(registeredScenarios))
	for name := range registeredScenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	mustRegister(&Fig3)
	mustRegister(&Fig4)
	mustRegister(&FigX1)
	mustRegister(&FigX2)
	mustRegister(&AnticoneExample)
}
