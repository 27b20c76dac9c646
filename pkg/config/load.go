package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Environment variable names understood by FromEnv.
const (
	EnvPrivateKey      = "PRIVATE_KEY"
	EnvRPCURL          = "RPC_URL"
	EnvProviderAddress = "PROVIDER_ADDRESS"
	EnvInitialBalance  = "INITIAL_BALANCE"
	EnvMaxRetries      = "MAX_RETRIES"
	EnvRetryDelay      = "RETRY_DELAY"
	EnvMessageContent  = "MESSAGE_CONTENT"
	EnvLedgerContract  = "LEDGER_CONTRACT"
	EnvServingContract = "SERVING_CONTRACT"
	EnvIpfsURL         = "IPFS_URL"
	EnvLighthouseURL   = "LIGHTHOUSE_URL"
	EnvFeePattern      = "FEE_PATTERN"
	EnvDebug           = "DEBUG"
)

// Load reads a YAML, JSON or TOML configuration file on top of Default. The
// format is chosen by file extension; unknown extensions are parsed as YAML.
// YAML durations are strings such as "250ms"; JSON and TOML take integer
// nanoseconds.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error. Variables already set are left untouched.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// FromEnv overlays every environment variable that is set onto cfg.
// Unset variables keep the current value, so MAX_RETRIES=0 disables
// inference while an absent MAX_RETRIES keeps the default.
func FromEnv(cfg *Config) error {
	setString(&cfg.PrivateKey, EnvPrivateKey)
	setString(&cfg.RPCAddr, EnvRPCURL)
	setString(&cfg.ProviderAddress, EnvProviderAddress)
	setString(&cfg.InitialBalance, EnvInitialBalance)
	setString(&cfg.Message, EnvMessageContent)
	setString(&cfg.LedgerAddr, EnvLedgerContract)
	setString(&cfg.ServingAddr, EnvServingContract)
	setString(&cfg.IpfsURL, EnvIpfsURL)
	setString(&cfg.LighthouseURL, EnvLighthouseURL)
	setString(&cfg.FeePattern, EnvFeePattern)

	if v, ok := lookup(EnvMaxRetries); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxRetries, err)
		}
		cfg.MaxRetries = n
	}
	if v, ok := lookup(EnvRetryDelay); ok {
		d, err := parseDelay(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRetryDelay, err)
		}
		cfg.RetryDelay = d
	}
	if v, ok := lookup(EnvDebug); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDebug, err)
		}
		cfg.Debug = b
	}
	return nil
}

// parseDelay accepts a Go duration ("2s", "1500ms") or a bare number of
// milliseconds ("2000").
func parseDelay(v string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}
