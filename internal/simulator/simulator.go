package simulator

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/sonoffctl/internal/logging"
	"github.com/muurk/sonoffctl/internal/sonoff"
)

// Device-level result codes carried in the response envelope
const (
	CodeOK             = 0
	CodeBadRequest     = 400
	CodeOTALocked      = 403
	CodeUnknownDevice  = 404
	CodeInvalidParams  = 422
	DefaultOutletCount = 4
)

// Recorded is one request received by the simulator
type Recorded struct {
	Path     string
	DeviceID string
	Payload  json.RawMessage
}

type outlet struct {
	Switch  sonoff.SwitchState
	Startup sonoff.StartupState
	Pulse   sonoff.SwitchState
	Width   uint32
}

type subDevice struct {
	Type   int
	Status sonoff.SubDevStatus
}

// Simulator emulates one DIY-mode device of a given kind.
// It is an http.Handler serving the /zeroconf API.
type Simulator struct {
	mu sync.Mutex

	kind     sonoff.Kind
	deviceID string
	seq      uint32

	ssid      string
	bssid     string
	signal    int
	fwVersion string
	otaUnlock bool

	sw      sonoff.SwitchStatus
	bulb    sonoff.BulbStatus
	dimmer  sonoff.DimmerStatus
	outlets map[uint8]*outlet
	subDevs map[string]*subDevice

	requests []Recorded
}

// Option configures a Simulator
type Option func(*Simulator)

// WithDeviceID sets the device id reported by /info and checked on requests
func WithDeviceID(id string) Option {
	return func(s *Simulator) { s.deviceID = id }
}

// WithSwitch sets the initial switch state
func WithSwitch(state sonoff.SwitchState) Option {
	return func(s *Simulator) {
		s.sw.Switch = state
		s.bulb.Switch = state
		s.dimmer.Switch = state
	}
}

// WithColorMode sets the initial bulb colour mode
func WithColorMode(mode sonoff.ColorMode) Option {
	return func(s *Simulator) { s.bulb.Mode = mode }
}

// WithOutlets sets the initial relay outlet states. Outlets not listed do not exist.
func WithOutlets(switches ...sonoff.OutletSwitch) Option {
	return func(s *Simulator) {
		s.outlets = make(map[uint8]*outlet, len(switches))
		for _, sw := range switches {
			s.outlets[sw.Outlet] = &outlet{Switch: sw.Switch, Startup: sonoff.StartupOff, Pulse: sonoff.SwitchOff}
		}
	}
}

// WithSubDevice adds a power-meter sub-device
func WithSubDevice(id string, typ int, status sonoff.SubDevStatus) Option {
	return func(s *Simulator) {
		s.subDevs[id] = &subDevice{Type: typ, Status: status}
	}
}

// New creates a simulator for kind
func New(kind sonoff.Kind, opts ...Option) *Simulator {
	s := &Simulator{
		kind:      kind,
		deviceID:  "1000a1b2c3",
		ssid:      "sonoff-lab",
		bssid:     "ec:fa:bc:00:00:01",
		signal:    -52,
		fwVersion: "3.7.0",
		sw: sonoff.SwitchStatus{
			Switch:  sonoff.SwitchOff,
			Startup: sonoff.StartupOff,
			Pulse:   sonoff.SwitchOff,
		},
		bulb: sonoff.BulbStatus{
			Switch: sonoff.SwitchOff,
			Mode:   sonoff.White{Br: 100, CT: 100},
		},
		dimmer: sonoff.DimmerStatus{
			Switch:     sonoff.SwitchOff,
			Startup:    sonoff.StartupOff,
			Brightness: 50,
			Mode:       0,
			BrightMin:  1,
			BrightMax:  100,
		},
		outlets: map[uint8]*outlet{},
		subDevs: map[string]*subDevice{},
	}
	for i := uint8(0); i < DefaultOutletCount; i++ {
		s.outlets[i] = &outlet{Switch: sonoff.SwitchOff, Startup: sonoff.StartupOff, Pulse: sonoff.SwitchOff}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Kind returns the emulated device kind
func (s *Simulator) Kind() sonoff.Kind { return s.kind }

// DeviceID returns the emulated device id
func (s *Simulator) DeviceID() string { return s.deviceID }

// Requests returns a copy of every request received so far
func (s *Simulator) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many requests were received for path (e.g. "/switch")
func (s *Simulator) Count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

// Outlets returns the current relay outlet states ordered by index
func (s *Simulator) Outlets() []sonoff.OutletSwitch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outletSwitches()
}

// ServeHTTP implements http.Handler
func (s *Simulator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := s.serve(w, r)
	logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, status)
}

func (s *Simulator) serve(w http.ResponseWriter, r *http.Request) int {
	path, ok := strings.CutPrefix(r.URL.Path, "/zeroconf")
	if !ok {
		http.NotFound(w, r)
		return http.StatusNotFound
	}
	handler, ok := s.route(path)
	if !ok {
		http.NotFound(w, r)
		return http.StatusNotFound
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return http.StatusMethodNotAllowed
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return http.StatusBadRequest
	}
	var req sonoff.Request
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "malformed request envelope", http.StatusBadRequest)
		return http.StatusBadRequest
	}

	s.mu.Lock()
	s.requests = append(s.requests, Recorded{Path: path, DeviceID: req.DeviceID, Payload: req.Data})
	s.seq++
	resp := sonoff.Response{Seq: s.seq}
	if req.DeviceID != "" && req.DeviceID != s.deviceID {
		resp.Error = CodeUnknownDevice
	} else {
		data, code := handler(req.Data)
		resp.Error = code
		if data != nil && code == CodeOK {
			raw, err := json.Marshal(data)
			if err != nil {
				s.mu.Unlock()
				logging.Error("Failed to encode simulator response", zap.Error(err))
				http.Error(w, "internal error", http.StatusInternalServerError)
				return http.StatusInternalServerError
			}
			resp.Data = raw
		}
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
	return http.StatusOK
}

type handlerFunc func(data json.RawMessage) (any, int)

// route returns the handler for path. Paths the emulated kind does not
// support still resolve and answer with a device-level error.
func (s *Simulator) route(path string) (handlerFunc, bool) {
	routes := map[string]handlerFunc{
		"/info":       s.handleInfo,
		"/wifi":       s.handleWiFi,
		"/ota_unlock": s.handleOTAUnlock,
		"/ota_flash":  s.handleOTAFlash,
		"/switch":     s.handleSwitch,
		"/startup":    s.handleStartup,
		"/pulse":      s.handlePulse,
		"/dimmable":   s.handleDimmable,
		"/switches":   s.handleSwitches,
		"/startups":   s.handleStartups,
		"/pulses":     s.handlePulses,
		"/subDevList": s.handleSubDevList,
		"/getState":   s.handleGetState,
	}
	h, ok := routes[path]
	return h, ok
}

func (s *Simulator) is(kinds ...sonoff.Kind) bool {
	for _, k := range kinds {
		if s.kind == k {
			return true
		}
	}
	return false
}

func decode(data json.RawMessage, out any) bool {
	return json.Unmarshal(data, out) == nil
}

func (s *Simulator) outletSwitches() []sonoff.OutletSwitch {
	idx := make([]int, 0, len(s.outlets))
	for i := range s.outlets {
		idx = append(idx, int(i))
	}
	sort.Ints(idx)
	out := make([]sonoff.OutletSwitch, 0, len(idx))
	for _, i := range idx {
		out = append(out, sonoff.OutletSwitch{Outlet: uint8(i), Switch: s.outlets[uint8(i)].Switch})
	}
	return out
}
