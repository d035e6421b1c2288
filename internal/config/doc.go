// Package config provides user configuration management for sonoffctl.
//
// This package manages a YAML-based configuration file that maps short aliases
// to devices (address, deviceId, kind and nickname) and holds application
// preferences. It stores configuration only; device state always comes from
// the device itself.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/sonoffctl/config.yaml or $HOME/.config/sonoffctl/config.yaml
//   - macOS: $HOME/.config/sonoffctl/config.yaml
//   - Windows: %LOCALAPPDATA%\sonoffctl\config.yaml
//
// SONOFFCTL_CONFIG overrides the location.
//
// # Usage Example
//
//	registry, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = registry.SetDevice("lamp", &config.Device{
//	    Address: "192.168.1.50:8081",
//	    Kind:    "bulb",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// Writes are serialized by a mutex and go through a temporary file and rename.
// A Registry value itself is not safe for concurrent mutation.
package config
