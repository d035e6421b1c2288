// Package sonoff implements the LAN control protocol of Sonoff DIY-mode devices.
//
// Devices in DIY mode serve a JSON-over-HTTP API under <address>/zeroconf.
// Every request is wrapped in a {deviceId, data} envelope and every response
// in a {seq, error, data} envelope. Device is the handle for one physical
// device and owns the round trip; the variants (Switch, Bulb, Dimmer, Relay,
// PowerMeter) build their operations on top of it.
//
// # Capabilities
//
// Behaviour shared by unrelated device kinds is expressed as small interfaces
// instead of a common base type:
//   - Switchable: devices with one binary switch. On, Off, Toggle, SetSwitch
//     and SetStartup are package functions that work on any Switchable.
//   - Dimmable: devices with continuous brightness.
//
// # Usage Example
//
//	dev := sonoff.NewDevice("192.168.1.50:8081")
//	bulb := sonoff.NewBulb(dev)
//
//	if _, err := sonoff.Toggle(ctx, bulb); err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := bulb.Color(ctx, 80, 255, 120, 1); err != nil {
//	    log.Fatal(err)
//	}
//
// # Error Handling
//
// Failures are *DeviceError values classified by ErrorType: transport
// (non-2xx status or connection failure), serialization (JSON shape
// mismatch, including ErrMalformedResponse), empty response data and invalid
// command. The error code inside a response envelope is not treated as a
// failure; callers that need it use Response.Err. Nothing is retried.
//
// # Concurrency
//
// Each operation performs one synchronous round trip, Toggle two (a read and
// then a write, not atomic). Device values are immutable and safe to copy.
package sonoff
