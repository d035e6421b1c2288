package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/muurk/sonoffctl/internal/sonoff"
)

// DefaultTimeoutSeconds is the request timeout used when the config sets none
const DefaultTimeoutSeconds = 10

// Registry represents the entire user configuration file.
// It maps short aliases to devices so commands can name a device instead of
// its address.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by alias
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device is one aliased device
type Device struct {
	Address  string    `yaml:"address"`             // Base URL or host:port
	DeviceID string    `yaml:"device_id,omitempty"` // Sent as deviceId; empty for local control
	Kind     string    `yaml:"kind,omitempty"`      // switch, bulb, dimmer, relay or powermeter
	Nickname string    `yaml:"nickname,omitempty"`  // User-friendly name
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last successful use
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	TimeoutSeconds int `yaml:"timeout_seconds"` // HTTP request timeout
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: registryVersion,
		Devices: make(map[string]*Device),
		Preferences: &Preferences{
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
	}
}

// ValidateAlias rejects aliases that could be mistaken for an address
func ValidateAlias(alias string) error {
	if alias == "" {
		return fmt.Errorf("alias must not be empty")
	}
	if strings.ContainsAny(alias, ":/. \t") {
		return fmt.Errorf("alias %q must not contain ':', '/', '.' or whitespace", alias)
	}
	if strings.HasPrefix(alias, "eWeLink_") {
		return fmt.Errorf("alias %q clashes with mDNS instance names", alias)
	}
	return nil
}

// GetDevice retrieves a device by alias.
// Returns nil if the alias doesn't exist in the registry.
func (r *Registry) GetDevice(alias string) *Device {
	return r.Devices[alias]
}

// SetDevice adds or replaces the device stored under alias
func (r *Registry) SetDevice(alias string, dev *Device) error {
	if err := ValidateAlias(alias); err != nil {
		return err
	}
	if dev == nil || strings.TrimSpace(dev.Address) == "" {
		return fmt.Errorf("device %q needs an address", alias)
	}
	if _, err := sonoff.ParseKind(dev.Kind); err != nil {
		return err
	}

	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}
	r.Devices[alias] = dev
	return nil
}

// RemoveDevice deletes alias and reports whether it existed
func (r *Registry) RemoveDevice(alias string) bool {
	if _, ok := r.Devices[alias]; !ok {
		return false
	}
	delete(r.Devices, alias)
	return true
}

// Aliases returns every alias in sorted order
func (r *Registry) Aliases() []string {
	aliases := make([]string, 0, len(r.Devices))
	for alias := range r.Devices {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// TouchDevice records that alias was just used
func (r *Registry) TouchDevice(alias string) {
	if dev := r.Devices[alias]; dev != nil {
		dev.LastSeen = time.Now()
	}
}

// Timeout returns the configured request timeout
func (r *Registry) Timeout() time.Duration {
	if r.Preferences == nil || r.Preferences.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(r.Preferences.TimeoutSeconds) * time.Second
}
