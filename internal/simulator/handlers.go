package simulator

import (
	"encoding/json"
	"sort"

	"github.com/muurk/sonoffctl/internal/sonoff"
)

func merge(dst map[string]any, v any) int {
	raw, err := json.Marshal(v)
	if err != nil {
		return CodeBadRequest
	}
	if err := json.Unmarshal(raw, &dst); err != nil {
		return CodeBadRequest
	}
	return CodeOK
}

func (s *Simulator) handleInfo(json.RawMessage) (any, int) {
	info := map[string]any{
		"deviceid":       s.deviceID,
		"ssid":           s.ssid,
		"bssid":          s.bssid,
		"signalStrength": s.signal,
		"fwVersion":      s.fwVersion,
		"otaUnlock":      s.otaUnlock,
	}

	code := CodeOK
	switch s.kind {
	case sonoff.KindSwitch:
		code = merge(info, s.sw)
	case sonoff.KindBulb:
		code = merge(info, s.bulb)
	case sonoff.KindDimmer:
		code = merge(info, s.dimmer)
	case sonoff.KindRelay:
		code = merge(info, s.relayData())
	}
	return info, code
}

func (s *Simulator) handleWiFi(data json.RawMessage) (any, int) {
	var req sonoff.WiFiRequest
	if !decode(data, &req) || req.SSID == "" {
		return nil, CodeInvalidParams
	}
	s.ssid = req.SSID
	return nil, CodeOK
}

func (s *Simulator) handleOTAUnlock(json.RawMessage) (any, int) {
	s.otaUnlock = true
	return nil, CodeOK
}

func (s *Simulator) handleOTAFlash(data json.RawMessage) (any, int) {
	var req sonoff.OTAFlashRequest
	if !decode(data, &req) || req.DownloadURL == "" || len(req.SHA256Sum) != 64 {
		return nil, CodeInvalidParams
	}
	if !s.otaUnlock {
		return nil, CodeOTALocked
	}
	return nil, CodeOK
}

func validSwitch(state sonoff.SwitchState) bool {
	return state == sonoff.SwitchOn || state == sonoff.SwitchOff
}

func validStartup(state sonoff.StartupState) bool {
	return state == sonoff.StartupOn || state == sonoff.StartupOff || state == sonoff.StartupStay
}

func (s *Simulator) handleSwitch(data json.RawMessage) (any, int) {
	if !s.is(sonoff.KindSwitch, sonoff.KindBulb, sonoff.KindDimmer) {
		return nil, CodeBadRequest
	}
	var req sonoff.SwitchRequest
	if !decode(data, &req) || !validSwitch(req.Switch) {
		return nil, CodeInvalidParams
	}
	s.sw.Switch = req.Switch
	s.bulb.Switch = req.Switch
	s.dimmer.Switch = req.Switch
	return nil, CodeOK
}

func (s *Simulator) handleStartup(data json.RawMessage) (any, int) {
	if !s.is(sonoff.KindSwitch, sonoff.KindDimmer) {
		return nil, CodeBadRequest
	}
	var req sonoff.StartupRequest
	if !decode(data, &req) || !validStartup(req.Startup) {
		return nil, CodeInvalidParams
	}
	s.sw.Startup = req.Startup
	s.dimmer.Startup = req.Startup
	return nil, CodeOK
}

func (s *Simulator) handlePulse(data json.RawMessage) (any, int) {
	if !s.is(sonoff.KindSwitch) {
		return nil, CodeBadRequest
	}
	var req sonoff.PulseRequest
	if !decode(data, &req) || !validSwitch(req.Pulse) || req.PulseWidth%500 != 0 {
		return nil, CodeInvalidParams
	}
	s.sw.Pulse = req.Pulse
	s.sw.PulseWidth = req.PulseWidth
	return nil, CodeOK
}

func validColorMode(mode sonoff.ColorMode) bool {
	switch m := mode.(type) {
	case sonoff.Color:
		return m.Br >= 1 && m.Br <= 100 && m.R >= 1 && m.G >= 1 && m.B >= 1
	case sonoff.White:
		return m.Br >= 1 && m.Br <= 100 && m.CT <= 100
	}
	return false
}

func (s *Simulator) handleDimmable(data json.RawMessage) (any, int) {
	switch s.kind {
	case sonoff.KindBulb:
		var req sonoff.BulbRequest
		if !decode(data, &req) || !validColorMode(req.Mode) {
			return nil, CodeInvalidParams
		}
		s.bulb.Mode = req.Mode
		return nil, CodeOK

	case sonoff.KindDimmer:
		var req sonoff.DimmerRequest
		if !decode(data, &req) || !validSwitch(req.Switch) || req.Brightness > 100 {
			return nil, CodeInvalidParams
		}
		s.dimmer.Switch = req.Switch
		s.dimmer.Brightness = req.Brightness
		if req.Mode != nil {
			s.dimmer.Mode = *req.Mode
		}
		if req.BrightMin != nil {
			s.dimmer.BrightMin = *req.BrightMin
		}
		if req.BrightMax != nil {
			s.dimmer.BrightMax = *req.BrightMax
		}
		return nil, CodeOK
	}
	return nil, CodeBadRequest
}

// handleSwitches changes only the listed outlets, on a relay or on one
// power-meter sub-device.
func (s *Simulator) handleSwitches(data json.RawMessage) (any, int) {
	switch s.kind {
	case sonoff.KindRelay:
		var req sonoff.RelayData
		if !decode(data, &req) || len(req.Switches) == 0 {
			return nil, CodeInvalidParams
		}
		for _, sw := range req.Switches {
			if _, ok := s.outlets[sw.Outlet]; !ok || !validSwitch(sw.Switch) {
				return nil, CodeInvalidParams
			}
		}
		for _, sw := range req.Switches {
			s.outlets[sw.Outlet].Switch = sw.Switch
		}
		return nil, CodeOK

	case sonoff.KindPowerMeter:
		var req sonoff.PowerMeterSwitchesRequest
		if !decode(data, &req) {
			return nil, CodeInvalidParams
		}
		sub, ok := s.subDevs[req.SubDevID]
		if !ok {
			return nil, CodeUnknownDevice
		}
		for _, sw := range req.Switches {
			if !validSwitch(sw.Switch) || int(sw.Outlet) >= sonoff.ChannelCount {
				return nil, CodeInvalidParams
			}
		}
		for _, sw := range req.Switches {
			sub.setSwitch(sw)
		}
		return nil, CodeOK
	}
	return nil, CodeBadRequest
}

func (d *subDevice) setSwitch(sw sonoff.OutletSwitch) {
	for i := range d.Status.Switches {
		if d.Status.Switches[i].Outlet == sw.Outlet {
			d.Status.Switches[i].Switch = sw.Switch
			return
		}
	}
	d.Status.Switches = append(d.Status.Switches, sw)
}

func (s *Simulator) handleStartups(data json.RawMessage) (any, int) {
	if !s.is(sonoff.KindRelay) {
		return nil, CodeBadRequest
	}
	var req sonoff.RelayData
	if !decode(data, &req) || len(req.Configure) == 0 {
		return nil, CodeInvalidParams
	}
	for _, c := range req.Configure {
		if _, ok := s.outlets[c.Outlet]; !ok || !validStartup(c.Startup) {
			return nil, CodeInvalidParams
		}
	}
	for _, c := range req.Configure {
		s.outlets[c.Outlet].Startup = c.Startup
	}
	return nil, CodeOK
}

func (s *Simulator) handlePulses(data json.RawMessage) (any, int) {
	if !s.is(sonoff.KindRelay) {
		return nil, CodeBadRequest
	}
	var req sonoff.RelayData
	if !decode(data, &req) || len(req.Pulses) == 0 {
		return nil, CodeInvalidParams
	}
	for _, p := range req.Pulses {
		if _, ok := s.outlets[p.Outlet]; !ok || !validSwitch(p.Pulse) || !validSwitch(p.Switch) || p.Width%500 != 0 {
			return nil, CodeInvalidParams
		}
	}
	for _, p := range req.Pulses {
		o := s.outlets[p.Outlet]
		o.Pulse = p.Pulse
		o.Switch = p.Switch
		o.Width = p.Width
	}
	return nil, CodeOK
}

func (s *Simulator) relayData() sonoff.RelayData {
	data := sonoff.RelayData{Switches: s.outletSwitches()}
	for _, sw := range data.Switches {
		o := s.outlets[sw.Outlet]
		data.Configure = append(data.Configure, sonoff.OutletStartup{Outlet: sw.Outlet, Startup: o.Startup})
		data.Pulses = append(data.Pulses, sonoff.OutletPulse{Outlet: sw.Outlet, Pulse: o.Pulse, Switch: o.Switch, Width: o.Width})
	}
	return data
}

func (s *Simulator) handleSubDevList(json.RawMessage) (any, int) {
	if !s.is(sonoff.KindPowerMeter) {
		return nil, CodeBadRequest
	}
	ids := make([]string, 0, len(s.subDevs))
	for id := range s.subDevs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	list := sonoff.SubDevList{SubDevList: make([]sonoff.SubDevice, 0, len(ids))}
	for _, id := range ids {
		list.SubDevList = append(list.SubDevList, sonoff.SubDevice{SubDevID: id, Type: s.subDevs[id].Type})
	}
	return list, CodeOK
}

func (s *Simulator) handleGetState(data json.RawMessage) (any, int) {
	if !s.is(sonoff.KindPowerMeter) {
		return nil, CodeBadRequest
	}
	var req sonoff.StateRequest
	if !decode(data, &req) {
		return nil, CodeInvalidParams
	}
	if req.SubDevID == nil {
		return sonoff.HubStatus{
			DeviceID:       s.deviceID,
			SledOnline:     "on",
			SSID:           s.ssid,
			BSSID:          s.bssid,
			FWVersion:      s.fwVersion,
			SubChipFWVer:   "1.0.4",
			SignalStrength: s.signal,
			WiFiConnected:  true,
		}, CodeOK
	}
	sub, ok := s.subDevs[*req.SubDevID]
	if !ok {
		return nil, CodeUnknownDevice
	}
	return sub.Status, CodeOK
}
