package sonoff

import (
	"fmt"
	"strings"
)

// Kind names a device variant
type Kind string

const (
	KindSwitch     Kind = "switch"
	KindBulb       Kind = "bulb"
	KindDimmer     Kind = "dimmer"
	KindRelay      Kind = "relay"
	KindPowerMeter Kind = "powermeter"
)

// Kinds lists every supported variant
var Kinds = []Kind{KindSwitch, KindBulb, KindDimmer, KindRelay, KindPowerMeter}

// ParseKind parses a variant name. The empty string is accepted and means unknown.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return "", nil
	}
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown device kind %q", s)
}

// Switchable wraps dev in the variant of kind when that variant has a
// single binary switch.
func (k Kind) Switchable(dev Device) (Switchable, bool) {
	switch k {
	case KindSwitch:
		return NewSwitch(dev), true
	case KindBulb:
		return NewBulb(dev), true
	case KindDimmer:
		return NewDimmer(dev), true
	}
	return nil, false
}

var (
	_ Switchable = (*Switch)(nil)
	_ Switchable = (*Bulb)(nil)
	_ Switchable = (*Dimmer)(nil)
	_ Dimmable   = (*Bulb)(nil)
	_ Dimmable   = (*Dimmer)(nil)
)
