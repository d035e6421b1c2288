package resolve

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/sonoffctl/internal/config"
	"github.com/muurk/sonoffctl/internal/logging"
	"github.com/muurk/sonoffctl/internal/sonoff"
)

// Source records how a target was resolved
type Source string

const (
	SourceAlias   Source = "alias"
	SourceMDNS    Source = "mdns"
	SourceAddress Source = "address"
)

// Target is a resolved device
type Target struct {
	Device sonoff.Device
	Kind   sonoff.Kind // empty when unknown
	Alias  string      // set for SourceAlias
	Source Source
}

// Resolver turns a user-supplied device reference into a device handle
type Resolver struct {
	// Registry supplies aliases; nil disables them
	Registry *config.Registry

	// Lookup resolves mDNS instance names; defaults to LookupMDNS
	Lookup LookupFunc

	// Timeout is the HTTP timeout of the returned handle; zero keeps the default
	Timeout time.Duration
}

// Resolve looks target up as, in order, a registry alias, an mDNS instance
// ("mdns:<deviceid>" or "eWeLink_<deviceid>") and finally a URL or host:port.
func (r *Resolver) Resolve(ctx context.Context, target string) (*Target, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, sonoff.NewInvalidCommandError("no device address given")
	}

	t, err := r.resolve(ctx, target)
	if err != nil {
		return nil, err
	}
	if r.Timeout > 0 {
		t.Device = t.Device.WithClient(&http.Client{Timeout: r.Timeout})
	}
	logging.Debug("Resolved device",
		zap.String("target", target),
		zap.String("source", string(t.Source)),
		zap.String("address", t.Device.Address),
		zap.String("kind", string(t.Kind)))
	return t, nil
}

func (r *Resolver) resolve(ctx context.Context, target string) (*Target, error) {
	if r.Registry != nil {
		if dev := r.Registry.GetDevice(target); dev != nil {
			kind, err := sonoff.ParseKind(dev.Kind)
			if err != nil {
				return nil, fmt.Errorf("alias %s: %w", target, err)
			}
			return &Target{
				Device: sonoff.NewDevice(dev.Address).WithID(dev.DeviceID),
				Kind:   kind,
				Alias:  target,
				Source: SourceAlias,
			}, nil
		}
	}

	if instance, ok := MDNSInstance(target); ok {
		lookup := r.Lookup
		if lookup == nil {
			lookup = LookupMDNS
		}
		svc, err := lookup(ctx, instance)
		if err != nil {
			return nil, err
		}
		return &Target{
			Device: sonoff.NewDevice(svc.Address).WithID(svc.DeviceID),
			Kind:   svc.Kind,
			Source: SourceMDNS,
		}, nil
	}

	if strings.HasPrefix(target, "mdns:") {
		return nil, sonoff.NewInvalidCommandError("mdns: needs a device id (mdns:<deviceid>)")
	}

	address, err := ParseAddress(target)
	if err != nil {
		return nil, err
	}
	return &Target{Device: sonoff.NewDevice(address), Source: SourceAddress}, nil
}

// MDNSInstance reports whether target names an mDNS instance and returns it
func MDNSInstance(target string) (string, bool) {
	if id, ok := strings.CutPrefix(target, "mdns:"); ok && id != "" {
		return InstanceName(id), true
	}
	if strings.HasPrefix(target, instancePrefix) && len(target) > len(instancePrefix) {
		return target, true
	}
	return "", false
}

// ParseAddress validates a URL or host[:port] and returns the base URL.
// A bare host without scheme or port gets the DIY-mode port.
func ParseAddress(target string) (string, error) {
	raw := target
	if !strings.Contains(raw, "://") {
		if _, _, err := net.SplitHostPort(raw); err != nil {
			raw = net.JoinHostPort(strings.Trim(raw, "[]"), strconv.Itoa(sonoff.DefaultPort))
		}
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", sonoff.NewInvalidCommandError(fmt.Sprintf("invalid device address %q: %v", target, err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", sonoff.NewInvalidCommandError(fmt.Sprintf("unsupported scheme %q in %q", u.Scheme, target))
	}
	if u.Hostname() == "" {
		return "", sonoff.NewInvalidCommandError(fmt.Sprintf("invalid device address %q: missing host", target))
	}
	return sonoff.NormalizeAddress(u.Scheme + "://" + u.Host + strings.TrimRight(u.Path, "/")), nil
}
