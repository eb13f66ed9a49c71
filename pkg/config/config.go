// Package config defines the typed configuration surface the engine
// operates on and a thin YAML loader. Parsing flags/env/INI is out of
// scope; this package only owns the struct tree and decoding a file into
// it, binding a typed options struct before handing it to the
// reconciler layer.
package config

import (
	"fmt"
	"os"
	"time"

	"sigs.k8s.io/yaml"
)

// Config is the root of the typed configuration tree for one run.
type Config struct {
	NetBox  NetBox           `json:"netbox"`
	Sync    Sync             `json:"sync"`
	Cache   Cache            `json:"cache"`
	Sources []SourceSettings `json:"sources"`
}

// NetBox carries the connection settings for pkg/netboxclient.
type NetBox struct {
	URL            string        `json:"url"`
	Token          string        `json:"token"`
	ConnectTimeout time.Duration `json:"connectTimeout"`
	RequestTimeout time.Duration `json:"requestTimeout"`
	MaxRetries     int           `json:"maxRetries"`
	DisableTLSVerify bool        `json:"disableTlsVerify"`
}

// Sync carries the engine-level policy knobs of pkg/sync.Settings,
// decoupled from that package so config decoding doesn't reach into
// the sync package's types directly.
type Sync struct {
	MatchHostBySerial       bool     `json:"matchHostBySerial"`
	SetPrimaryIPPolicy      string   `json:"setPrimaryIpPolicy"`
	TenantInheritanceOrder  []string `json:"tenantInheritanceOrder"`
	PruneDelayDays          int      `json:"pruneDelayDays"`
	PreferSoleIPv6AsPrimary bool     `json:"preferSoleIpv6AsPrimary"`
	VLANGroupNameRegex      string   `json:"vlanGroupNameRegex"`
	VLANGroupIDRangeStart   int      `json:"vlanGroupIdRangeStart"`
	VLANGroupIDRangeEnd     int      `json:"vlanGroupIdRangeEnd"`
	PrimaryTagName          string   `json:"primaryTagName"`
	PrimaryTagDescription   string   `json:"primaryTagDescription"`
	OrphanTagName           string   `json:"orphanTagName"`
	EnablePrune             bool     `json:"enablePrune"`
	EnableTagGC             bool     `json:"enableTagGc"`
}

// Cache carries the on-disk class-snapshot cache settings of
// pkg/netboxclient.Cache.
type Cache struct {
	Directory string `json:"directory"`
	Disabled  bool   `json:"disabled"`
}

// SourceSettings is one entry of the sources list: the adapter-agnostic
// fields every pkg/source.Settings needs, plus a free-form Options bag a
// concrete adapter decodes for its own connection details (host,
// credentials, ...).
type SourceSettings struct {
	Name                     string         `json:"name"`
	Type                     string         `json:"type"`
	Enabled                  bool           `json:"enabled"`
	PermittedSubnets         []string       `json:"permittedSubnets"`
	ExcludedSubnets          []string       `json:"excludedSubnets"`
	SetPrimaryIPPolicy       string         `json:"setPrimaryIpPolicy"`
	IPTenantInheritanceOrder []string       `json:"ipTenantInheritanceOrder"`
	NameFilterRegex          string         `json:"nameFilterRegex"`
	IDFilterRegex            string         `json:"idFilterRegex"`
	DisableVLANSync          bool           `json:"disableVlanSync"`
	MatchHostBySerial        bool           `json:"matchHostBySerial"`
	Options                  map[string]any `json:"options"`
}

// Load decodes the YAML file at path into a Config. NetBox connection
// fields are required; everything else may be zero-valued and defaulted
// by its consumer.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if cfg.NetBox.URL == "" {
		return nil, fmt.Errorf("config %s: netbox.url is required", path)
	}
	if cfg.NetBox.Token == "" {
		return nil, fmt.Errorf("config %s: netbox.token is required", path)
	}
	if cfg.NetBox.ConnectTimeout == 0 {
		cfg.NetBox.ConnectTimeout = 5 * time.Second
	}
	if cfg.NetBox.RequestTimeout == 0 {
		cfg.NetBox.RequestTimeout = 30 * time.Second
	}
	if cfg.NetBox.MaxRetries == 0 {
		cfg.NetBox.MaxRetries = 4
	}
	if cfg.Sync.SetPrimaryIPPolicy == "" {
		cfg.Sync.SetPrimaryIPPolicy = "when-undefined"
	}
	if cfg.Cache.Directory == "" {
		cfg.Cache.Directory = ".netbox-sync-cache"
	}

	return &cfg, nil
}
