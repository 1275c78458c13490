package config

import (
	"encoding/json"
	"io"
	"strings"
	"time"
)

// Duration is a duration string which can be used in JSON config files
// using the notation understood by time.ParseDuration, e.g. "10s"
type Duration string

// Duration parses the configured duration string
func (d Duration) Duration() (time.Duration, error) {
	return time.ParseDuration(string(d))
}

// ServiceConfig represents a configuration for an HTTP server serving
// a provided service
type ServiceConfig struct {
	Address        string
	ReadTimeout    Duration
	WriteTimeout   Duration
	MaxHeaderBytes int
}

// StripeKeys is an API key pair for the Stripe gateway
type StripeKeys struct {
	Published string
	Secret    string
}

// IsSet returns true when both keys of the pair are present
func (k StripeKeys) IsSet() bool {
	return strings.TrimSpace(k.Published) != "" && strings.TrimSpace(k.Secret) != ""
}

// StripeConfig holds the gateway credentials and the gateway call behaviour
type StripeConfig struct {
	// TestMode selects the Test key pair when true, Live otherwise
	TestMode bool
	Test     StripeKeys
	Live     StripeKeys
	// Timeout for the outbound charge API call
	Timeout Duration
}

// Keys returns the key pair for the configured mode
func (s StripeConfig) Keys() StripeKeys {
	if s.TestMode {
		return s.Test
	}
	return s.Live
}

// Config represents a full configuration for the crowdd daemon
type Config struct {
	Provider struct {
		Service ServiceConfig
	}
	Database struct {
		// CrowdDBWrite is the DSN for the write connection to the crowdfunding DB
		CrowdDBWrite string
		// CrowdDBReadOnly is an optional DSN for a read-only connection
		CrowdDBReadOnly string
	}
	Stripe StripeConfig
	Web    struct {
		// BackingURLFormat is the fmt pattern for the pledge page of a project,
		// receiving the project id
		BackingURLFormat string
		// ShareURLFormat is the fmt pattern for the post-checkout share page,
		// receiving the project id
		ShareURLFormat string
	}
}

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	cfg := Config{}
	cfg.Provider.Service.Address = ":8443"
	cfg.Provider.Service.ReadTimeout = "10s"
	cfg.Provider.Service.WriteTimeout = "10s"
	cfg.Provider.Service.MaxHeaderBytes = 1 << 20
	cfg.Stripe.TestMode = true
	cfg.Stripe.Timeout = "30s"
	cfg.Web.BackingURLFormat = "/project/%d/backing"
	cfg.Web.ShareURLFormat = "/project/%d/backing/share"
	return cfg
}

// ReadConfig reads the JSON from the given reader into a new Config
func ReadConfig(r io.Reader) (Config, error) {
	dec := json.NewDecoder(r)
	cfg := Config{}
	err := dec.Decode(&cfg)
	return cfg, err
}

// WriteConfig will write the given config to the given Writer as JSON (pretty printed)
func WriteConfig(w io.Writer, cfg Config) error {
	jsonBytes, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(jsonBytes)
	return err
}
