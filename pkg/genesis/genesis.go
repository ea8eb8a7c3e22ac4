package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/LICODX/rnr-poh/pkg/core"
	"github.com/LICODX/rnr-poh/poh"
)

type GenesisConfig struct {
	ChainID          string `json:"chain_id"`
	NetworkName      string `json:"network_name"`
	Seed             string `json:"seed"`
	GenesisTimestamp int64  `json:"genesis_timestamp"`
	HashesPerTick    uint64 `json:"hashes_per_tick"`
	TicksPerEvent    uint64 `json:"ticks_per_event"`
}

func DefaultGenesisConfig() *GenesisConfig {
	return &GenesisConfig{
		ChainID:          "rnr-poh-devnet-1",
		NetworkName:      "RNR PoH Devnet",
		Seed:             "rnr-poh-devnet-1",
		GenesisTimestamp: 1231006505,
		HashesPerTick:    core.DefaultHashesPerTick,
		TicksPerEvent:    core.DefaultTicksPerEvent,
	}
}

func LoadGenesisConfig(path string) (*GenesisConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis config: %w", err)
	}

	config := DefaultGenesisConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse genesis config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (gc *GenesisConfig) Save(path string) error {
	data, err := json.MarshalIndent(gc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal genesis config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write genesis config: %w", err)
	}
	return nil
}

func (gc *GenesisConfig) Validate() error {
	if gc.ChainID == "" {
		return errors.New("chain_id is required")
	}
	if gc.Seed == "" {
		return errors.New("seed is required")
	}
	if gc.HashesPerTick == 0 {
		return errors.New("hashes_per_tick must be positive")
	}
	return nil
}

// GenesisID is the id every chain under this config starts from.
func (gc *GenesisConfig) GenesisID() core.Hash {
	return core.HashBytes([]byte(gc.ChainID + "/" + gc.Seed))
}

// GenesisEntry is the zero-count bootstrap entry. It verifies against
// GenesisID.
func (gc *GenesisConfig) GenesisEntry() poh.Entry {
	return poh.NewTick(0, gc.GenesisID())
}
