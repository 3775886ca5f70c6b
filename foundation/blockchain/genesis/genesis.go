// Package genesis maintains the protocol parameters every node in the
// simulated network starts from.
package genesis

import (
	"fmt"
	"os"
	"time"

	"github.com/jole141/chainsim/business/sys/validate"
	"gopkg.in/yaml.v3"
)

// Protocol defaults.
const (
	SoftwareVersion = "0.1.0"
	TxVersion       = 1
	BlockSubsidy    = 50_000_000_000
	BlockInterval   = 5 * time.Second
	Nodes           = 10
	TransPerBlock   = 100
	InboxSize       = 64
)

// Genesis represents the protocol parameters.
type Genesis struct {
	SoftwareVersion string        `yaml:"software_version" json:"software_version" validate:"required"`
	TxVersion       uint32        `yaml:"tx_version" json:"tx_version" validate:"required"`
	BlockSubsidy    uint64        `yaml:"block_subsidy" json:"block_subsidy"`
	Difficulty      uint32        `yaml:"difficulty" json:"difficulty"` // Carried in every header, never enforced.
	TransPerBlock   int           `yaml:"trans_per_block" json:"trans_per_block" validate:"gte=0"`
	Nodes           int           `yaml:"nodes" json:"nodes" validate:"required,gte=1"`
	BlockInterval   time.Duration `yaml:"block_interval" json:"block_interval" validate:"required,gt=0"`
	InboxSize       int           `yaml:"inbox_size" json:"inbox_size" validate:"required,gte=1"`
}

// Default returns the protocol parameters the network runs with when no
// genesis file is provided.
func Default() Genesis {
	return Genesis{
		SoftwareVersion: SoftwareVersion,
		TxVersion:       TxVersion,
		BlockSubsidy:    BlockSubsidy,
		Difficulty:      0,
		TransPerBlock:   TransPerBlock,
		Nodes:           Nodes,
		BlockInterval:   BlockInterval,
		InboxSize:       InboxSize,
	}
}

// Load opens and consumes a genesis file. Any parameter missing from the
// file keeps its default value.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	return Parse(content)
}

// Parse decodes genesis YAML on top of the defaults and validates the result.
func Parse(content []byte) (Genesis, error) {
	gen := Default()
	if err := yaml.Unmarshal(content, &gen); err != nil {
		return Genesis{}, fmt.Errorf("unmarshal genesis: %w", err)
	}

	if err := gen.Validate(); err != nil {
		return Genesis{}, err
	}

	return gen, nil
}

// Validate checks the parameters can run a network.
func (g Genesis) Validate() error {
	if err := validate.Check(g); err != nil {
		return fmt.Errorf("validate genesis: %w", err)
	}

	return nil
}

// Marshal encodes the parameters as YAML.
func (g Genesis) Marshal() ([]byte, error) {
	return yaml.Marshal(g)
}
