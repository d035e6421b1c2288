package simulator

import (
	"fmt"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/sonoffctl/internal/logging"
	"github.com/muurk/sonoffctl/internal/resolve"
)

// Advertiser publishes a simulator over mDNS
type Advertiser struct {
	server *zeroconf.Server
}

// TXT returns the TXT records the simulator advertises
func (s *Simulator) TXT() []string {
	return []string{
		"txtvers=1",
		"id=" + s.DeviceID(),
		"type=" + resolve.TXTType(s.Kind()),
		"apivers=1",
	}
}

// Advertise registers the simulator as eWeLink_<id> on port.
// Call Shutdown to withdraw the record.
func (s *Simulator) Advertise(port int) (*Advertiser, error) {
	instance := resolve.InstanceName(s.DeviceID())
	server, err := zeroconf.Register(instance, resolve.ServiceType, resolve.ServiceDomain, port, s.TXT(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	logging.Info("Advertising simulator over mDNS",
		zap.String("instance", instance),
		zap.Int("port", port))
	return &Advertiser{server: server}, nil
}

// Shutdown withdraws the mDNS record
func (a *Advertiser) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
}
