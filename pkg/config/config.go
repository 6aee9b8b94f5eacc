package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"sendview/pkg/models"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	ConfigFileName = ".sendview.json"
	EnvPrefix      = "SENDVIEW"
)

// AddressConfig is an address book entry offered as a send recipient.
type AddressConfig struct {
	Address string `json:"address" mapstructure:"address"`
	Name    string `json:"name,omitempty" mapstructure:"name"`
}

// NetworkConfig holds the endpoints used to refresh a snapshot for one network.
type NetworkConfig struct {
	Name        string   `json:"name" mapstructure:"name"`
	NetworkID   string   `json:"network_id" mapstructure:"network_id"`
	RPCURLs     []string `json:"rpc_urls" mapstructure:"rpc_urls"`
	Symbol      string   `json:"symbol" mapstructure:"symbol"`
	CoinGeckoID string   `json:"coingecko_id" mapstructure:"coingecko_id"`
	ExplorerURL string   `json:"explorer_url,omitempty" mapstructure:"explorer_url"`
}

// GlobalConfig holds application-wide settings.
type GlobalConfig struct {
	FiatDecimals           int `json:"fiat_decimals" mapstructure:"fiat_decimals"`
	TokenDecimals          int `json:"token_decimals" mapstructure:"token_decimals"`
	RecentBlockCount       int `json:"recent_block_count" mapstructure:"recent_block_count"`
	RefreshIntervalSeconds int `json:"refresh_interval_seconds" mapstructure:"refresh_interval_seconds"`
	ServerPort             int `json:"server_port" mapstructure:"server_port"`
}

// Config is the on-disk configuration file.
type Config struct {
	Addresses       []AddressConfig `json:"addresses" mapstructure:"addresses"`
	Networks        []NetworkConfig `json:"networks" mapstructure:"networks"`
	SelectedNetwork string          `json:"selected_network" mapstructure:"selected_network"`
	GlobalConfig    `mapstructure:",squash"`
}

// AddressBook adapts configured addresses to the recipient list.
type AddressBook []AddressConfig

func (b AddressBook) Entries() []models.SendAccount {
	out := make([]models.SendAccount, 0, len(b))
	for _, a := range b {
		out = append(out, models.SendAccount{Address: a.Address, Name: a.Name})
	}
	return out
}

func (c Config) AddressBook() AddressBook {
	return AddressBook(c.Addresses)
}

// SelectedIndex returns the index of the selected network, or 0 when the name is unknown.
func (c Config) SelectedIndex() int {
	for i, n := range c.Networks {
		if n.Name == c.SelectedNetwork {
			return i
		}
	}
	return 0
}

// Selected returns the selected network. ok is false when no networks are configured.
func (c Config) Selected() (NetworkConfig, bool) {
	if len(c.Networks) == 0 {
		return NetworkConfig{}, false
	}
	return c.Networks[c.SelectedIndex()], true
}

func DefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		FiatDecimals:           2,
		TokenDecimals:          4,
		RecentBlockCount:       20,
		RefreshIntervalSeconds: 15,
		ServerPort:             8080,
	}
}

func GetConfigPath(customPath string) (string, error) {
	if customPath != "" {
		return customPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}

func newViper() *viper.Viper {
	v := viper.New()

	d := DefaultGlobalConfig()
	v.SetDefault("fiat_decimals", d.FiatDecimals)
	v.SetDefault("token_decimals", d.TokenDecimals)
	v.SetDefault("recent_block_count", d.RecentBlockCount)
	v.SetDefault("refresh_interval_seconds", d.RefreshIntervalSeconds)
	v.SetDefault("server_port", d.ServerPort)
	v.SetDefault("selected_network", "")

	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// LoadConfigFromFile reads path, falling back to defaults when it does not exist.
// SENDVIEW_* environment variables override scalar settings.
func LoadConfigFromFile(path string) (Config, error) {
	v := newViper()
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, err
	}
	return decode(v)
}

func LoadConfig(r io.Reader) (Config, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return decode(v)
}

// addressHook accepts the legacy plain-string address list.
func addressHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() == reflect.String && to == reflect.TypeOf(AddressConfig{}) {
		return AddressConfig{Address: data.(string)}, nil
	}
	return data, nil
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		addressHook,
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hooks); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	// Migration for legacy config
	if len(cfg.Networks) == 0 {
		if legacy := v.GetStringSlice("rpc_urls"); len(legacy) > 0 {
			cfg.Networks = []NetworkConfig{{
				Name:        "Ethereum",
				NetworkID:   "1",
				RPCURLs:     legacy,
				Symbol:      "ETH",
				CoinGeckoID: "ethereum",
				ExplorerURL: "https://etherscan.io",
			}}
			cfg.SelectedNetwork = "Ethereum"
		}
	}
	if cfg.Addresses == nil {
		cfg.Addresses = []AddressConfig{}
	}
	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if len(cfg.Networks) == 0 {
		return fmt.Errorf("validation failed: configuration must have at least one network")
	}
	for i, n := range cfg.Networks {
		if strings.TrimSpace(n.Name) == "" {
			return fmt.Errorf("validation failed: network at index %d has no name", i)
		}
		if len(n.RPCURLs) == 0 {
			return fmt.Errorf("validation failed: network %s has no RPC URLs", n.Name)
		}
	}
	if cfg.RecentBlockCount < 0 {
		return fmt.Errorf("validation failed: recent_block_count must not be negative")
	}

	out := cfg
	out.SelectedNetwork = cfg.Networks[cfg.SelectedIndex()].Name
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		backupPath := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102-150405"))
		input, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read existing config for backup: %w", err)
		}
		if err := os.WriteFile(backupPath, input, 0644); err != nil {
			return fmt.Errorf("failed to write backup config: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func RestoreLastBackup(configPath string) error {
	matches, err := filepath.Glob(configPath + ".*.bak")
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no backup files found")
	}
	sort.Strings(matches)
	lastBackup := matches[len(matches)-1]

	data, err := os.ReadFile(lastBackup)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}
