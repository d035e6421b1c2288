package sonoff

import "context"

// Dimmable is implemented by devices with continuous brightness control.
// Brightness runs 0-100 and is not validated here; the device rejects
// out-of-range values.
type Dimmable interface {
	Dim(ctx context.Context, brightness uint8) (*Response, error)
}
