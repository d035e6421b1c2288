package sonoff

import (
	"context"
	"encoding/json"
	"fmt"
)

// LampType is the ltype discriminant of the bulb colour mode
type LampType string

const (
	LampColor LampType = "color"
	LampWhite LampType = "white"
)

// ColorMode is the active bulb colour mode: either Color or White.
// Selecting one mode does not keep the values of the other.
type ColorMode interface {
	LampType() LampType
	isColorMode()
}

// Color is an RGB colour mode
type Color struct {
	Br uint8 `json:"br"` // Brightness (1-100)
	R  uint8 `json:"r"`  // Red (1-255)
	G  uint8 `json:"g"`  // Green (1-255)
	B  uint8 `json:"b"`  // Blue (1-255)
}

// White is a colour-temperature mode
type White struct {
	Br uint8 `json:"br"` // Brightness (1-100)
	CT uint8 `json:"ct"` // Colour temperature (0-100)
}

func (Color) LampType() LampType { return LampColor }
func (Color) isColorMode()       {}
func (White) LampType() LampType { return LampWhite }
func (White) isColorMode()       {}

// encodeColorMode flattens mode into one object next to its ltype tag
func encodeColorMode(mode ColorMode) (map[string]any, error) {
	var fields []byte
	var err error
	switch m := mode.(type) {
	case Color:
		fields, err = json.Marshal(m)
	case *Color:
		if m == nil {
			return nil, NewSerializationError("nil colour mode", nil)
		}
		fields, err = json.Marshal(*m)
	case White:
		fields, err = json.Marshal(m)
	case *White:
		if m == nil {
			return nil, NewSerializationError("nil white mode", nil)
		}
		fields, err = json.Marshal(*m)
	default:
		return nil, NewSerializationError(fmt.Sprintf("unsupported colour mode %T", mode), nil)
	}
	if err != nil {
		return nil, NewSerializationError("failed to encode colour mode", err)
	}

	out := map[string]any{}
	if err := json.Unmarshal(fields, &out); err != nil {
		return nil, NewSerializationError("failed to encode colour mode", err)
	}
	out["ltype"] = mode.LampType()
	return out, nil
}

// decodeColorMode reads the mode selected by ltype. The variant's fields may
// sit next to the tag or be nested under a key named after it.
func decodeColorMode(data []byte) (ColorMode, error) {
	var head struct {
		LType LampType        `json:"ltype"`
		Color json.RawMessage `json:"color"`
		White json.RawMessage `json:"white"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, NewSerializationError("failed to decode bulb status", err)
	}

	switch head.LType {
	case LampColor:
		src := data
		if len(head.Color) > 0 {
			src = head.Color
		}
		var c Color
		if err := json.Unmarshal(src, &c); err != nil {
			return nil, NewSerializationError("failed to decode colour mode", err)
		}
		return c, nil
	case LampWhite:
		src := data
		if len(head.White) > 0 {
			src = head.White
		}
		var w White
		if err := json.Unmarshal(src, &w); err != nil {
			return nil, NewSerializationError("failed to decode white mode", err)
		}
		return w, nil
	default:
		return nil, NewSerializationError(fmt.Sprintf("unknown lamp type %q", head.LType), nil)
	}
}

// BulbRequest is the payload of /dimmable for bulbs
type BulbRequest struct {
	Mode ColorMode
}

// MarshalJSON emits the flattened tagged union
func (r BulbRequest) MarshalJSON() ([]byte, error) {
	fields, err := encodeColorMode(r.Mode)
	if err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

// UnmarshalJSON reads the flattened tagged union
func (r *BulbRequest) UnmarshalJSON(data []byte) error {
	mode, err := decodeColorMode(data)
	if err != nil {
		return err
	}
	r.Mode = mode
	return nil
}

// BulbStatus is the per-device part of a bulb's /info response
type BulbStatus struct {
	Switch SwitchState
	Mode   ColorMode
}

// MarshalJSON emits the switch state next to the flattened colour mode
func (s BulbStatus) MarshalJSON() ([]byte, error) {
	fields, err := encodeColorMode(s.Mode)
	if err != nil {
		return nil, err
	}
	fields["switch"] = s.Switch
	return json.Marshal(fields)
}

// UnmarshalJSON reads the switch state and the active colour mode
func (s *BulbStatus) UnmarshalJSON(data []byte) error {
	var head struct {
		Switch SwitchState `json:"switch"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	mode, err := decodeColorMode(data)
	if err != nil {
		return err
	}
	s.Switch = head.Switch
	s.Mode = mode
	return nil
}

// Bulb is a colour/white smart bulb (e.g. B05-BL)
type Bulb struct {
	dev Device
}

// NewBulb wraps dev as a bulb
func NewBulb(dev Device) *Bulb {
	return &Bulb{dev: dev}
}

// Device returns the handle the bulb talks through
func (b *Bulb) Device() Device { return b.dev }

// Status returns the switch state and the active colour mode
func (b *Bulb) Status(ctx context.Context) (*BulbStatus, error) {
	info, err := b.dev.Info(ctx)
	if err != nil {
		return nil, err
	}
	var status BulbStatus
	if err := info.DecodeExtra(&status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Switch reports whether the bulb is on
func (b *Bulb) Switch(ctx context.Context) (bool, error) {
	status, err := b.Status(ctx)
	if err != nil {
		return false, err
	}
	return status.Switch.On(), nil
}

// SetMode applies a colour mode; the ltype tag follows the mode's variant
func (b *Bulb) SetMode(ctx context.Context, mode ColorMode) (*Response, error) {
	return b.dev.RawRequest(ctx, "/dimmable", BulbRequest{Mode: mode})
}

// Color switches the bulb to an RGB colour
func (b *Bulb) Color(ctx context.Context, br, r, g, bl uint8) (*Response, error) {
	return b.SetMode(ctx, Color{Br: br, R: r, G: g, B: bl})
}

// White switches the bulb to white light of the given temperature
func (b *Bulb) White(ctx context.Context, br, ct uint8) (*Response, error) {
	return b.SetMode(ctx, White{Br: br, CT: ct})
}

// Dim sets the brightness in white mode at full colour temperature.
// The current colour is not kept.
func (b *Bulb) Dim(ctx context.Context, brightness uint8) (*Response, error) {
	return b.White(ctx, brightness, 100)
}
