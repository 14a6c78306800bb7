package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = "bankledger.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BANKLEDGER_"

// Config represents the top-level bankledger.yaml configuration.
type Config struct {
	Ledger LedgerConfig `yaml:"ledger"`
	Log    LogConfig    `yaml:"log"`
}

// LedgerConfig sets the cashback terms of a ledger session.
type LedgerConfig struct {
	CashbackRate  string `yaml:"cashback_rate"`  // decimal fraction, e.g. "0.02"
	CashbackDelay int64  `yaml:"cashback_delay"` // in the ledger's time unit
	Rounding      string `yaml:"rounding"`       // floor, half_up, half_even
	PaymentPrefix string `yaml:"payment_prefix"`
	PaymentScope  string `yaml:"payment_scope"` // account or ledger
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"` // console or json
}

// Load reads a bankledger.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with the standard cashback terms: 2% floored,
// paid one day (in milliseconds) after the payment.
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			CashbackRate:  "0.02",
			CashbackDelay: 86400000,
			Rounding:      "floor",
			PaymentPrefix: "payment",
			PaymentScope:  "account",
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// LoadEnvFile loads a dotenv file into the process environment. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from BANKLEDGER_* environment variables.
func (c *Config) ApplyEnv() error {
	if v, ok := lookupEnv("CASHBACK_RATE"); ok {
		c.Ledger.CashbackRate = v
	}
	if v, ok := lookupEnv("CASHBACK_DELAY"); ok {
		delay, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing %sCASHBACK_DELAY %q: %w", EnvPrefix, v, err)
		}
		c.Ledger.CashbackDelay = delay
	}
	if v, ok := lookupEnv("ROUNDING"); ok {
		c.Ledger.Rounding = v
	}
	if v, ok := lookupEnv("PAYMENT_PREFIX"); ok {
		c.Ledger.PaymentPrefix = v
	}
	if v, ok := lookupEnv("PAYMENT_SCOPE"); ok {
		c.Ledger.PaymentScope = v
	}
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookupEnv("LOG_ENCODING"); ok {
		c.Log.Encoding = v
	}
	return nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var problems []string

	if _, err := c.Ledger.Policy(); err != nil {
		problems = append(problems, splitErrors(err)...)
	}
	if !oneOf(c.Log.Level, "debug", "info", "warn", "error") {
		problems = append(problems, fmt.Sprintf("invalid log level %q", c.Log.Level))
	}
	if !oneOf(c.Log.Encoding, "console", "json") {
		problems = append(problems, fmt.Sprintf("invalid log encoding %q", c.Log.Encoding))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// splitErrors flattens an errors.Join tree into its messages.
func splitErrors(err error) []string {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []string{err.Error()}
	}
	var msgs []string
	for _, e := range joined.Unwrap() {
		msgs = append(msgs, splitErrors(e)...)
	}
	return msgs
}

func lookupEnv(key string) (string, bool) {
	return os.LookupEnv(EnvPrefix + key)
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
