package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName         = "sonoffctl"
	configFile      = "config.yaml"
	registryVersion = 1

	// ConfigPathEnvVar overrides the configuration file location
	ConfigPathEnvVar = "SONOFFCTL_CONFIG"
)

// saveMu serialises writers within the process
var saveMu sync.Mutex

// GetConfigDir returns the per-user directory holding the registry:
//   - Linux and other Unix: $XDG_CONFIG_HOME/sonoffctl, else ~/.config/sonoffctl
//   - macOS: ~/.config/sonoffctl
//   - Windows: %LOCALAPPDATA%\sonoffctl, else %USERPROFILE%\AppData\Local\sonoffctl
func GetConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, appName), nil
		}
		if profile := os.Getenv("USERPROFILE"); profile != "" {
			return filepath.Join(profile, "AppData", "Local", appName), nil
		}
		return "", fmt.Errorf("no user profile directory: neither LOCALAPPDATA nor USERPROFILE is set")
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" && runtime.GOOS != "darwin" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("no home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// GetConfigPath returns the full path to the configuration file.
// SONOFFCTL_CONFIG takes precedence over the platform location.
func GetConfigPath() (string, error) {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// Load reads the registry from the default location.
// A missing file yields an empty registry.
func Load() (*Registry, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads the registry stored at configPath
func LoadFrom(configPath string) (*Registry, error) {
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	reg := &Registry{}
	if err := yaml.Unmarshal(data, reg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}
	if reg.Version != registryVersion {
		return nil, fmt.Errorf("%s: registry version %d is not supported (want %d)", configPath, reg.Version, registryVersion)
	}

	if reg.Devices == nil {
		reg.Devices = map[string]*Device{}
	}
	if reg.Preferences == nil {
		reg.Preferences = &Preferences{TimeoutSeconds: DefaultTimeoutSeconds}
	}
	return reg, nil
}

// Save writes the registry to the default location
func (r *Registry) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return r.SaveTo(configPath)
}

// SaveTo writes the registry to configPath, creating its directory.
// The file is written next to the target and renamed over it.
func (r *Registry) SaveTo(configPath string) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	body, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}

	header := fmt.Sprintf("# sonoffctl device registry (%s)\n# Wi-Fi credentials are never stored here.\n\n", configPath)
	tmp := configPath + ".tmp"
	if err := os.WriteFile(tmp, append([]byte(header), body...), 0600); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	if err := os.Rename(tmp, configPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace registry: %w", err)
	}
	return nil
}
