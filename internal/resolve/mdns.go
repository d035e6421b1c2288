package resolve

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/muurk/sonoffctl/internal/sonoff"
)

const (
	// ServiceType is the mDNS service DIY-mode devices advertise
	ServiceType = "_ewelink._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultLookupTimeout bounds a single instance lookup
	DefaultLookupTimeout = 5 * time.Second

	instancePrefix = "eWeLink_"
)

// InstanceName returns the mDNS instance name of the device with id
func InstanceName(deviceID string) string {
	return instancePrefix + deviceID
}

var txtTypes = map[sonoff.Kind]string{
	sonoff.KindSwitch:     "diy_plug",
	sonoff.KindRelay:      "diy_plug",
	sonoff.KindBulb:       "diy_light",
	sonoff.KindDimmer:     "diy_dimmer",
	sonoff.KindPowerMeter: "diy_meter",
}

// TXTType returns the type value a device of kind puts in its TXT record
func TXTType(kind sonoff.Kind) string {
	if t, ok := txtTypes[kind]; ok {
		return t
	}
	return "diy_plug"
}

// KindFromTXT maps a TXT type value back to a kind. Plugs are reported as
// switches since single and multi-outlet relays share the value.
func KindFromTXT(txtType string) sonoff.Kind {
	switch txtType {
	case "diy_light":
		return sonoff.KindBulb
	case "diy_dimmer":
		return sonoff.KindDimmer
	case "diy_meter":
		return sonoff.KindPowerMeter
	case "diy_plug":
		return sonoff.KindSwitch
	}
	return ""
}

// Service is a resolved mDNS instance
type Service struct {
	Instance string
	DeviceID string
	Kind     sonoff.Kind
	Address  string // http://ip:port
	Metadata map[string]string
}

// LookupFunc resolves one named mDNS instance
type LookupFunc func(ctx context.Context, instance string) (*Service, error)

// LookupMDNS queries the network for a single named instance of ServiceType.
// It does not browse: only the instance asked for is resolved.
func LookupMDNS(ctx context.Context, instance string) (*Service, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultLookupTimeout)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan *Service, 1)

	go func() {
		for entry := range entries {
			if svc := parseServiceEntry(entry); svc != nil && svc.Instance == instance {
				select {
				case found <- svc:
				default:
				}
				cancel()
			}
		}
	}()

	if err := resolver.Lookup(ctx, instance, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", instance, err)
	}

	select {
	case svc := <-found:
		return svc, nil
	case <-ctx.Done():
		select {
		case svc := <-found:
			return svc, nil
		default:
		}
		return nil, fmt.Errorf("device %s not found on the local network", instance)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Service.
// Returns nil if the entry carries no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Service {
	if entry == nil {
		return nil
	}

	var ip net.IP
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0]
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0]
	}
	if ip == nil {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = sonoff.DefaultPort
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}

	id := metadata["id"]
	if id == "" {
		id = strings.TrimPrefix(entry.Instance, instancePrefix)
	}

	return &Service{
		Instance: entry.Instance,
		DeviceID: id,
		Kind:     KindFromTXT(metadata["type"]),
		Address:  "http://" + net.JoinHostPort(ip.String(), strconv.Itoa(port)),
		Metadata: metadata,
	}
}
