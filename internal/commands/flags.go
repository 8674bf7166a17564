package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/sadopc/sitetrackr/internal/config"
	"github.com/sadopc/sitetrackr/internal/store"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Store is the open save file. It stays nil until a command calls
	// OpenStore, so commands that never touch the file do not create it.
	Store *store.Store
}

// OpenStore opens and migrates the save file on first use and seeds any
// missing settings from the config. Later calls return the same store.
func (f *Flags) OpenStore() (*store.Store, error) {
	if f.Store != nil {
		return f.Store, nil
	}

	s, err := store.New(f.Config.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open save file: %w", err)
	}
	if err := s.SeedSettings(SettingDefaults(f.Config)); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("seed settings: %w", err)
	}

	log.Debug().Str("db", f.Config.DBPath()).Msg("opened save file")
	f.Store = s
	return s, nil
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "sitetrackr", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "sitetrackr")
}

// SettingDefaults maps the config file's item defaults onto settings keys.
// They seed a save file's settings table and never overwrite edited values.
func SettingDefaults(cfg *config.Config) map[string]string {
	return map[string]string{
		store.SettingDefaultCategory: cfg.Defaults.Category,
		store.SettingDefaultItemName: cfg.Defaults.ItemName,
		store.SettingDefaultOwner:    cfg.Defaults.Owner,
		store.SettingCurrency:        cfg.Currency,
	}
}
