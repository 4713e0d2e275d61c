package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config carries the daemon settings loaded from the TOML config file.
type Config struct {
	RPCAddress  string `toml:"RPCAddress"`
	DataDir     string `toml:"DataDir"`
	NetworkName string `toml:"NetworkName"`
	Env         string `toml:"Env"`
	// BaseFeeBps is the pool's standing fee in basis points the pricing layer
	// discounts from.
	BaseFeeBps uint32 `toml:"BaseFeeBps"`
	// AdminAddresses are granted the loyalty admin role at startup.
	AdminAddresses []string `toml:"AdminAddresses"`
	// MintAuthority is the bech32 address holding the reward-token mint
	// credential.
	MintAuthority string `toml:"MintAuthority"`
	// BadgeAuthority is the bech32 address holding the badge issuance
	// credential.
	BadgeAuthority string `toml:"BadgeAuthority"`
}

const (
	defaultRPCAddress  = "127.0.0.1:8561"
	defaultNetworkName = "dinehook-local"
	defaultBaseFeeBps  = 300
)

// Load loads the configuration from the given path, creating a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = defaultRPCAddress
	}
	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = defaultNetworkName
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./dinehook-data"
	}
	if cfg.BaseFeeBps == 0 {
		cfg.BaseFeeBps = defaultBaseFeeBps
	}
	if cfg.AdminAddresses == nil {
		cfg.AdminAddresses = []string{}
	}
}

// Validate rejects configurations the hook cannot safely run with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}
	if cfg.BaseFeeBps > 10_000 {
		return fmt.Errorf("config: BaseFeeBps %d exceeds 10000", cfg.BaseFeeBps)
	}
	return nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
