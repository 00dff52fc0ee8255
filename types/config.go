package types

import (
	"os"
	"strings"
)

const (
	DriverSqlite = "sqlite"
	DriverMysql  = "mysql"
)

type Config struct {
	SharedConfigURL  string                      `yaml:"shared-config-url" json:"sharedConfigURL"`
	Stage            string                      `yaml:"stage" json:"stage"`
	SupportedDomains []DomainID                  `yaml:"supported-domains" json:"supportedDomains"`
	SyncInterval     int                         `yaml:"sync-interval" json:"syncInterval"` // seconds, 0 runs once
	Database         DatabaseSettings            `yaml:"database" json:"database"`
	DomainMetadata   map[DomainID]DomainMetadata `yaml:"domain-metadata" json:"domainMetadata"`
	RPCs             map[DomainID]string         `yaml:"rpcs" json:"rpcs"`
	API              APISettings                 `yaml:"api" json:"api"`
}

type DatabaseSettings struct {
	Driver string `yaml:"driver" json:"driver"`
	DSN    string `yaml:"dsn" json:"dsn"`
}

type APISettings struct {
	Listen         string   `yaml:"listen" json:"listen"`
	TrustedProxies []string `yaml:"trusted-proxies" json:"trustedProxies"`
}

// DomainMetadata is display information kept outside the shared configuration.
type DomainMetadata struct {
	IconURL     string `yaml:"icon-url" json:"iconUrl"`
	ExplorerURL string `yaml:"explorer-url" json:"explorerUrl"`
}

// Metadata returns the local metadata of a domain; unknown domains yield empty values.
func (c *Config) Metadata(id DomainID) DomainMetadata {
	return c.DomainMetadata[id]
}

// ApplyEnv overrides file settings with any non-empty environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("SHARED_CONFIG_URL"); v != "" {
		c.SharedConfigURL = v
	}
	if v := os.Getenv("STAGE"); v != "" {
		c.Stage = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("SUPPORTED_DOMAINS"); v != "" {
		domains := make([]DomainID, 0)
		for _, s := range strings.Split(v, ",") {
			if strings.TrimSpace(s) == "" {
				continue
			}
			id, err := ParseDomainID(s)
			if err != nil {
				return err
			}
			domains = append(domains, id)
		}
		c.SupportedDomains = domains
	}
	return nil
}
