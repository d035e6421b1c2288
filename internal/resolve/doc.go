// Package resolve turns the device reference given on the command line into
// a sonoff.Device.
//
// A reference is tried, in order, as:
//   - an alias from the config registry, which also supplies the deviceId and kind
//   - an mDNS instance, written "mdns:<deviceid>" or "eWeLink_<deviceid>",
//     looked up by name under _ewelink._tcp.local.
//   - a URL or host[:port]; a bare host gets port 8081
//
// Only the named instance is queried over mDNS. The package never browses the
// network for devices.
package resolve
