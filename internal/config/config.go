// Package config assembles the runtime configuration: server settings from
// environment variables, and the platform-supplied project configuration from
// a JSON file. Fixed-name environment overrides for the project values are
// honored only when the environment is development, so production always runs
// on the project configuration alone.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	Environment     string
	RedisAddr       string
	// LedgerDSN is optional; without it the payment ledger is disabled.
	LedgerDSN       string
	DefaultLocale   string
	DefaultCurrency string

	Commercetools Commercetools
	Nuvei         Nuvei
}

// Commercetools holds the project credentials for the remote commerce
// platform.
type Commercetools struct {
	AuthURL      string `json:"authUrl"`
	APIURL       string `json:"hostUrl"`
	ProjectKey   string `json:"projectKey"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

// Nuvei holds the hosted-payment-page settings handed to the browser widget.
type Nuvei struct {
	Env                string `json:"nuveiEnv"`
	MerchantID         string `json:"nuveiMerchantId"`
	MerchantSiteID     string `json:"nuveiMerchantSiteId"`
	GoogleMerchantID   string `json:"nuveiGoogleMerchantId"`
	PaymentMethodLabel string `json:"nuveiPaymentMethodLabel"`
}

// Load builds Config from the environment and the project configuration
// file, then applies development-only overrides.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		Environment:     envOrDefault("ENVIRONMENT", "production"),
		RedisAddr:       envOrDefault("REDIS_ADDR", "localhost:6379"),
		LedgerDSN:       os.Getenv("LEDGER_DB_DSN"),
		DefaultLocale:   envOrDefault("DEFAULT_LOCALE", "en_US"),
		DefaultCurrency: envOrDefault("DEFAULT_CURRENCY", "USD"),
	}

	path := envOrDefault("PROJECT_CONFIG_FILE", "project.json")
	if err := cfg.loadProjectFile(path); err != nil {
		return Config{}, err
	}
	cfg.applyDevOverrides()
	return cfg, nil
}

// IsDev reports whether the extension runs in a development environment.
func (c Config) IsDev() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

func (c *Config) loadProjectFile(path string) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// Dev setups may provide everything through overrides instead.
		return nil
	}
	if err != nil {
		return fmt.Errorf("read project config: %w", err)
	}

	var project struct {
		Commercetools
		Nuvei
	}
	if err := json.Unmarshal(raw, &project); err != nil {
		return fmt.Errorf("parse project config %s: %w", path, err)
	}
	c.Commercetools = project.Commercetools
	c.Nuvei = project.Nuvei
	return nil
}

// applyDevOverrides replaces project values with fixed-name environment
// variables. Overrides only win under a development environment.
func (c *Config) applyDevOverrides() {
	if !c.IsDev() {
		return
	}
	override(&c.Commercetools.AuthURL, "EXTENSION_COMMERCETOOLS_AUTH_URL")
	override(&c.Commercetools.APIURL, "EXTENSION_COMMERCETOOLS_HOST_URL")
	override(&c.Commercetools.ProjectKey, "EXTENSION_COMMERCETOOLS_PROJECT_KEY")
	override(&c.Commercetools.ClientID, "EXTENSION_COMMERCETOOLS_CLIENT_ID")
	override(&c.Commercetools.ClientSecret, "EXTENSION_COMMERCETOOLS_CLIENT_SECRET")
	override(&c.Nuvei.Env, "NUVEI_ENV")
	override(&c.Nuvei.MerchantID, "NUVEI_MERCHANT_ID")
	override(&c.Nuvei.MerchantSiteID, "NUVEI_MERCHANT_SITE_ID")
	override(&c.Nuvei.GoogleMerchantID, "NUVEI_GOOGLE_MERCHANT_ID")
	override(&c.Nuvei.PaymentMethodLabel, "NUVEI_PAYMENT_METHOD_LABEL")
}

func override(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}
