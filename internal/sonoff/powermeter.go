package sonoff

import (
	"context"
	"encoding/json"
	"fmt"
)

// ChannelCount is the number of metering channels per power-meter sub-device
const ChannelCount = 4

// SubDevice is one entry of the hub's sub-device list
type SubDevice struct {
	SubDevID string `json:"subDevId"`
	Type     int    `json:"type"`
}

// SubDevList is the response data of /subDevList
type SubDevList struct {
	SubDevList []SubDevice `json:"subDevList"`
}

// PowerMeterSwitchesRequest is the payload of /switches on a power-meter hub
type PowerMeterSwitchesRequest struct {
	SubDevID string         `json:"subDevId"`
	Switches []OutletSwitch `json:"switches"`
}

// StateRequest is the payload of /getState. A nil SubDevID asks for the
// hub's own status; any non-nil id, even "", is sent as is.
type StateRequest struct {
	SubDevID *string `json:"subDevId,omitempty"`
}

// HubStatus is the hub-level response data of /getState
type HubStatus struct {
	DeviceID       string `json:"deviceid"`
	SledOnline     string `json:"sledOnline"`
	SSID           string `json:"ssid"`
	BSSID          string `json:"bssid"`
	FWVersion      string `json:"fwVersion"`
	SubChipFWVer   string `json:"subChipFwVer"`
	SignalStrength int    `json:"signalStrength"`
	WiFiConnected  bool   `json:"wifiConnected"`
}

// OverloadValue is one protection threshold and whether it is enabled
type OverloadValue struct {
	En  uint32 `json:"en"`
	Val uint32 `json:"val"`
}

// Overload is the overload protection configuration of one channel
type Overload struct {
	MinAP     OverloadValue `json:"minAP"`
	MaxAP     OverloadValue `json:"maxAP"`
	MinV      OverloadValue `json:"minV"`
	MaxV      OverloadValue `json:"maxV"`
	MaxC      OverloadValue `json:"maxC"`
	DelayTime uint32        `json:"delayTime"`
}

// OverloadTrigger records why an outlet's protection tripped
type OverloadTrigger struct {
	Outlet uint32   `json:"outlet"`
	Rsn    []uint32 `json:"rsn"`
}

// FaultState is the fault report of a sub-device.
// CSE7761Com holds one flag per channel: 1 = communication normal, 0 = error.
type FaultState struct {
	SubDevCom    uint32            `json:"subDevCom"`
	CSE7761Com   []uint32          `json:"cse7761Com"`
	OverloadTrig []OverloadTrigger `json:"overloadTrig,omitempty"`
	OverTemp     []uint32          `json:"overTemp,omitempty"`
	OverLimit    []OverloadTrigger `json:"overLimit,omitempty"`
}

// ChannelOK reports whether the metering chip of channel communicates normally
func (f FaultState) ChannelOK(channel int) bool {
	return channel >= 0 && channel < len(f.CSE7761Com) && f.CSE7761Com[channel] == 1
}

// Range is a min/max pair
type Range struct {
	Min uint32 `json:"min"`
	Max uint32 `json:"max"`
}

// Threshold is the configurable range of each measured quantity
type Threshold struct {
	ActPow  Range `json:"actPow"`
	Voltage Range `json:"voltage"`
	Current Range `json:"current"`
}

// Reading is the electrical measurement of one channel
type Reading struct {
	Current     uint32
	Voltage     uint32
	ActPow      uint32
	ReactPow    uint32
	ApparentPow uint32
}

// SubDevStatus is the sub-device response data of /getState.
// Channel-indexed fields ("overload_00", "current_01", ...) are gathered
// into Overloads and Readings.
type SubDevStatus struct {
	FWVersion  string         `json:"fwVersion"`
	Switches   []OutletSwitch `json:"switches"`
	FaultState FaultState     `json:"faultState"`
	Threshold  Threshold      `json:"threshold"`

	Overloads [ChannelCount]Overload `json:"-"`
	Readings  [ChannelCount]Reading  `json:"-"`
}

type subDevStatusFields SubDevStatus

func channelKey(name string, channel int) string {
	return fmt.Sprintf("%s_%02d", name, channel)
}

// UnmarshalJSON decodes the named fields and the channel-indexed ones
func (s *SubDevStatus) UnmarshalJSON(data []byte) error {
	var fields subDevStatusFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	for ch := 0; ch < ChannelCount; ch++ {
		if raw, ok := all[channelKey("overload", ch)]; ok {
			if err := json.Unmarshal(raw, &fields.Overloads[ch]); err != nil {
				return fmt.Errorf("channel %d overload: %w", ch, err)
			}
		}
		r := &fields.Readings[ch]
		for name, dst := range map[string]*uint32{
			"current":     &r.Current,
			"voltage":     &r.Voltage,
			"actPow":      &r.ActPow,
			"reactPow":    &r.ReactPow,
			"apparentPow": &r.ApparentPow,
		} {
			raw, ok := all[channelKey(name, ch)]
			if !ok {
				continue
			}
			if err := json.Unmarshal(raw, dst); err != nil {
				return fmt.Errorf("channel %d %s: %w", ch, name, err)
			}
		}
	}

	*s = SubDevStatus(fields)
	return nil
}

// MarshalJSON emits the channel-indexed fields in the device's flat layout
func (s SubDevStatus) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(subDevStatusFields(s))
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(base, &out); err != nil {
		return nil, err
	}
	for ch := 0; ch < ChannelCount; ch++ {
		r := s.Readings[ch]
		out[channelKey("overload", ch)] = s.Overloads[ch]
		out[channelKey("current", ch)] = r.Current
		out[channelKey("voltage", ch)] = r.Voltage
		out[channelKey("actPow", ch)] = r.ActPow
		out[channelKey("reactPow", ch)] = r.ReactPow
		out[channelKey("apparentPow", ch)] = r.ApparentPow
	}
	return json.Marshal(out)
}

// PowerMeter is a power-metering hub multiplexing sub-devices (e.g. SPM-Main)
type PowerMeter struct {
	dev Device
}

// NewPowerMeter wraps dev as a power-meter hub
func NewPowerMeter(dev Device) *PowerMeter {
	return &PowerMeter{dev: dev}
}

// Device returns the handle the hub talks through
func (p *PowerMeter) Device() Device { return p.dev }

// SetSwitches sets the listed outlets of one sub-device
func (p *PowerMeter) SetSwitches(ctx context.Context, subDevID string, switches []OutletSwitch) (*Response, error) {
	return p.dev.RawRequest(ctx, "/switches", PowerMeterSwitchesRequest{SubDevID: subDevID, Switches: nonNil(switches)})
}

// SubDevices lists the sub-devices known to the hub
func (p *PowerMeter) SubDevices(ctx context.Context) ([]SubDevice, error) {
	list, err := TypedRequest[SubDevList](ctx, p.dev, "/subDevList", struct{}{})
	if err != nil {
		return nil, err
	}
	return list.SubDevList, nil
}

// Status returns the hub's own network and firmware status
func (p *PowerMeter) Status(ctx context.Context) (*HubStatus, error) {
	status, err := TypedRequest[HubStatus](ctx, p.dev, "/getState", StateRequest{})
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// SubDevStatus returns the channel readings, faults and thresholds of one sub-device
func (p *PowerMeter) SubDevStatus(ctx context.Context, subDevID string) (*SubDevStatus, error) {
	status, err := TypedRequest[SubDevStatus](ctx, p.dev, "/getState", StateRequest{SubDevID: &subDevID})
	if err != nil {
		return nil, err
	}
	return &status, nil
}
