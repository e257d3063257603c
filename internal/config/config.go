// Package config loads application configuration from the TOML settings
// file and VOLCSYNC_ environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the full application configuration: connection settings
// from the settings file plus local paths and the optional credential
// store key from the environment. Loaded once at process start and passed
// by value into components; never mutated afterwards.
type Config struct {
	SourceURL      string // [USGS] url
	PortalURL      string // [PORTAL] url
	PortalUsername string // [PORTAL] username
	PortalItemID   string // [PORTAL] item_id

	DataPath  string // Local dataset file, overwritten each run.
	LogPath   string // Append-only run log.
	DBPath    string // Run history / credential database.
	CacheDir  string // HTTP conditional-request cache for the source fetch.
	SecretKey []byte // 32-byte AES-256 key; nil disables the local credential store.
}

// settingsFile mirrors the on-disk settings layout. Section and key names
// are part of the external interface and are case-sensitive.
type settingsFile struct {
	USGS struct {
		URL string `toml:"url"`
	} `toml:"USGS"`
	Portal struct {
		URL      string `toml:"url"`
		Username string `toml:"username"`
		ItemID   string `toml:"item_id"`
	} `toml:"PORTAL"`
}

// DefaultPath returns the settings file path: VOLCSYNC_CONFIG if set,
// otherwise config.toml in the working directory.
func DefaultPath() string {
	if v, ok := os.LookupEnv("VOLCSYNC_CONFIG"); ok && v != "" {
		return v
	}
	return "config.toml"
}

// Load reads the settings file at path, validates the required keys, and
// applies VOLCSYNC_ environment overrides for local paths.
// Optional variables with defaults: VOLCSYNC_DATA_PATH (volcano.geojson),
// VOLCSYNC_LOG_PATH (volcsync.log), VOLCSYNC_DB_PATH (volcsync.db),
// VOLCSYNC_CACHE_DIR (.httpcache). VOLCSYNC_SECRET_KEY (64 hex chars)
// enables the encrypted local credential store.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file %s: %w", path, err)
	}

	var sf settingsFile
	if err := toml.Unmarshal(raw, &sf); err != nil {
		return nil, fmt.Errorf("parsing settings file %s: %w", path, err)
	}

	if sf.USGS.URL == "" {
		return nil, fmt.Errorf("settings file %s: [USGS] url is required", path)
	}
	if sf.Portal.URL == "" {
		return nil, fmt.Errorf("settings file %s: [PORTAL] url is required", path)
	}
	if sf.Portal.Username == "" {
		return nil, fmt.Errorf("settings file %s: [PORTAL] username is required", path)
	}
	if sf.Portal.ItemID == "" {
		return nil, fmt.Errorf("settings file %s: [PORTAL] item_id is required", path)
	}

	dataPath := "volcano.geojson"
	if v, ok := os.LookupEnv("VOLCSYNC_DATA_PATH"); ok && v != "" {
		dataPath = v
	}

	logPath := "volcsync.log"
	if v, ok := os.LookupEnv("VOLCSYNC_LOG_PATH"); ok && v != "" {
		logPath = v
	}

	dbPath := "volcsync.db"
	if v, ok := os.LookupEnv("VOLCSYNC_DB_PATH"); ok && v != "" {
		dbPath = v
	}

	cacheDir := ".httpcache"
	if v, ok := os.LookupEnv("VOLCSYNC_CACHE_DIR"); ok && v != "" {
		cacheDir = v
	}

	var secretKey []byte
	if v, ok := os.LookupEnv("VOLCSYNC_SECRET_KEY"); ok && v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("VOLCSYNC_SECRET_KEY is not valid hex: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("VOLCSYNC_SECRET_KEY must decode to 32 bytes, got %d", len(key))
		}
		secretKey = key
	}

	return &Config{
		SourceURL:      sf.USGS.URL,
		PortalURL:      sf.Portal.URL,
		PortalUsername: sf.Portal.Username,
		PortalItemID:   sf.Portal.ItemID,
		DataPath:       dataPath,
		LogPath:        logPath,
		DBPath:         dbPath,
		CacheDir:       cacheDir,
		SecretKey:      secretKey,
	}, nil
}
