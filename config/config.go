// Package config loads the YAML file describing which process to watch and
// where its statistics live in memory.
package config

import (
	"fmt"
	"math/bits"
	"os"
	"time"

	"crusadermem/game_phase"
	"crusadermem/process"
	"crusadermem/process_codec"

	"gopkg.in/yaml.v3"
)

// DefaultProcessName is the executable of Stronghold Crusader Extreme
const DefaultProcessName = "Stronghold_Crusader_Extreme.exe"

// DefaultPollInterval is how often the watch loop samples the game
const DefaultPollInterval = time.Second

// Config is the root of the configuration file
type Config struct {
	ProcessName  string        `yaml:"process_name"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Phase        Phase         `yaml:"phase"`
	Blocks       []Block       `yaml:"blocks"`
}

// Phase overrides where the game phase is read from. Zero fields keep the defaults.
type Phase struct {
	YearAddress    uint64 `yaml:"year_address"`
	TextureAddress uint64 `yaml:"texture_address"`
	MenuTexture    string `yaml:"menu_texture"`
}

// Block describes a group of entities laid out at a fixed stride from a base
// address, each carrying the same typed stats.
type Block struct {
	Name        string       `yaml:"name"`
	Address     uint64       `yaml:"address"`
	Stride      uint64       `yaml:"stride"`
	Count       int          `yaml:"count"`
	StatOffsets []StatOffset `yaml:"stat_offsets"`
}

// StatOffset is one named field of a block entity
type StatOffset struct {
	Name   string                     `yaml:"name"`
	Offset uint64                     `yaml:"offset"`
	Type   process_codec.SemanticType `yaml:"type"`
}

// Default returns a configuration with no blocks
func Default() *Config {
	return &Config{
		ProcessName:  DefaultProcessName,
		PollInterval: DefaultPollInterval,
	}
}

// Load reads and validates the configuration file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates YAML configuration, filling unset fields with defaults
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	for i := range cfg.Blocks {
		if cfg.Blocks[i].Count == 0 {
			cfg.Blocks[i].Count = 1
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the readers would reject
func (c *Config) Validate() error {
	if c.ProcessName == "" {
		return fmt.Errorf("process_name must not be empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}

	seen := make(map[string]bool, len(c.Blocks))
	for _, block := range c.Blocks {
		if err := block.Validate(); err != nil {
			return err
		}
		if seen[block.Name] {
			return fmt.Errorf("duplicate block %q", block.Name)
		}
		seen[block.Name] = true
	}
	return nil
}

// Validate checks a single block
func (b Block) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("block at 0x%X has no name", b.Address)
	}
	if b.Count < 1 {
		return fmt.Errorf("block %q: count must be at least 1", b.Name)
	}
	if b.Count > 1 && b.Stride == 0 {
		return fmt.Errorf("block %q: stride is required when count is %d", b.Name, b.Count)
	}
	if len(b.StatOffsets) == 0 {
		return fmt.Errorf("block %q has no stat_offsets", b.Name)
	}

	seen := make(map[string]bool, len(b.StatOffsets))
	for _, stat := range b.StatOffsets {
		if stat.Name == "" {
			return fmt.Errorf("block %q: stat at offset 0x%X has no name", b.Name, stat.Offset)
		}
		if seen[stat.Name] {
			return fmt.Errorf("block %q: duplicate stat %q", b.Name, stat.Name)
		}
		seen[stat.Name] = true

		if !b.fits(stat) {
			return fmt.Errorf("block %q: stat %q of the last entity lies past the end of the address space", b.Name, stat.Name)
		}
	}
	return nil
}

// fits reports whether the last entity's copy of stat, address included, is
// addressable without wrapping
func (b Block) fits(stat StatOffset) bool {
	hi, rel := bits.Mul64(uint64(b.Count-1), b.Stride)
	if hi != 0 {
		return false
	}
	rel, carry := bits.Add64(rel, stat.Offset, 0)
	if carry != 0 || rel > uint64(^uint(0)) {
		return false
	}
	end, carry := bits.Add64(rel, uint64(stat.Type.Width()), 0)
	if carry != 0 {
		return false
	}
	_, carry = bits.Add64(b.Address, end, 0)
	return carry == 0
}

// Block returns the block called name
func (c *Config) Block(name string) (Block, bool) {
	for _, block := range c.Blocks {
		if block.Name == name {
			return block, true
		}
	}
	return Block{}, false
}

// PhaseAddresses returns the game_phase addresses with any overrides applied
func (c *Config) PhaseAddresses() game_phase.Addresses {
	addresses := game_phase.DefaultAddresses()
	if c.Phase.YearAddress != 0 {
		addresses.Year = process.ProcessMemoryAddress(c.Phase.YearAddress)
	}
	if c.Phase.TextureAddress != 0 {
		addresses.Texture = process.ProcessMemoryAddress(c.Phase.TextureAddress)
	}
	if c.Phase.MenuTexture != "" {
		addresses.MenuTexture = c.Phase.MenuTexture
	}
	return addresses
}
