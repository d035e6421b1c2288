// Package simulator emulates a single DIY-mode device on the local network.
//
// A Simulator is an http.Handler serving the /zeroconf API for one device
// kind. It keeps the device state in memory, answers with the same
// {seq, error, data} envelope the firmware uses, and records every request so
// tests can assert on payloads and call counts:
//
//	sim := simulator.New(sonoff.KindBulb)
//	srv := httptest.NewServer(sim)
//	defer srv.Close()
//
//	bulb := sonoff.NewBulb(sonoff.NewDevice(srv.URL))
//	_, _ = bulb.Dim(ctx, 40)
//	fmt.Println(sim.Count("/dimmable")) // 1
//
// Result codes follow the firmware: requests a kind does not support are
// answered with HTTP 200 and error 400, out-of-range parameters with 422 and
// an unknown deviceId or sub-device with 404. Unknown paths get a plain HTTP
// 404 and bodies that are not an envelope an HTTP 400.
//
// Advertise publishes the simulator over mDNS as eWeLink_<deviceid> so it can
// be addressed like a real device.
package simulator
