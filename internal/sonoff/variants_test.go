package sonoff_test

import (
	"context"
	"testing"

	"github.com/muurk/sonoffctl/internal/simulator"
	"github.com/muurk/sonoffctl/internal/sonoff"
)

func TestToggle(t *testing.T) {
	tests := []struct {
		name    string
		kind    sonoff.Kind
		initial sonoff.SwitchState
		want    string
	}{
		{"switch off to on", sonoff.KindSwitch, sonoff.SwitchOff, `{"switch":"on"}`},
		{"switch on to off", sonoff.KindSwitch, sonoff.SwitchOn, `{"switch":"off"}`},
		{"bulb", sonoff.KindBulb, sonoff.SwitchOff, `{"switch":"on"}`},
		{"dimmer", sonoff.KindDimmer, sonoff.SwitchOn, `{"switch":"off"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, dev := startSimulator(t, tt.kind, simulator.WithSwitch(tt.initial))
			s, ok := tt.kind.Switchable(dev)
			if !ok {
				t.Fatalf("%s is not switchable", tt.kind)
			}

			if _, err := sonoff.Toggle(context.Background(), s); err != nil {
				t.Fatalf("Toggle() error = %v", err)
			}

			if got := sim.Count("/info"); got != 1 {
				t.Errorf("/info calls = %d, want 1", got)
			}
			got := payloads(sim, "/switch")
			if len(got) != 1 {
				t.Fatalf("/switch calls = %d, want 1", len(got))
			}
			if got[0] != tt.want {
				t.Errorf("/switch payload = %s, want %s", got[0], tt.want)
			}
			if len(sim.Requests()) != 2 {
				t.Errorf("total requests = %d, want 2", len(sim.Requests()))
			}

			on, err := s.Switch(context.Background())
			if err != nil {
				t.Fatalf("Switch() error = %v", err)
			}
			if on == (tt.initial == sonoff.SwitchOn) {
				t.Errorf("Switch() = %v after toggle from %s", on, tt.initial)
			}
		})
	}
}

func TestToggle_ReadFailureSkipsWrite(t *testing.T) {
	sim, dev := startSimulator(t, sonoff.KindSwitch, simulator.WithDeviceID("a"))
	s := sonoff.NewSwitch(dev.WithID("b"))

	_, err := sonoff.Toggle(context.Background(), s)
	if !sonoff.IsEmptyResponseData(err) {
		t.Fatalf("Toggle() error = %v, want empty response data", err)
	}
	if got := sim.Count("/switch"); got != 0 {
		t.Errorf("/switch calls = %d, want 0", got)
	}
}

func TestOnOff(t *testing.T) {
	sim, dev := startSimulator(t, sonoff.KindSwitch)
	s := sonoff.NewSwitch(dev)
	ctx := context.Background()

	if _, err := sonoff.On(ctx, s); err != nil {
		t.Fatalf("On() error = %v", err)
	}
	if _, err := sonoff.Off(ctx, s); err != nil {
		t.Fatalf("Off() error = %v", err)
	}
	got := payloads(sim, "/switch")
	want := []string{`{"switch":"on"}`, `{"switch":"off"}`}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("/switch payloads = %v, want %v", got, want)
	}
	if sim.Count("/info") != 0 {
		t.Error("On/Off must not query state")
	}
}

func TestSwitch_StatusStartupPulse(t *testing.T) {
	sim, dev := startSimulator(t, sonoff.KindSwitch)
	s := sonoff.NewSwitch(dev)
	ctx := context.Background()

	if _, err := sonoff.SetStartup(ctx, s, sonoff.StartupStay); err != nil {
		t.Fatalf("SetStartup() error = %v", err)
	}
	if _, err := s.Pulse(ctx, 1500); err != nil {
		t.Fatalf("Pulse() error = %v", err)
	}
	if _, err := s.Pulse(ctx, 0); err != nil {
		t.Fatalf("Pulse(0) error = %v", err)
	}
	got := payloads(sim, "/pulse")
	if got[0] != `{"pulse":"on","pulseWidth":1500}` || got[1] != `{"pulse":"off","pulseWidth":0}` {
		t.Errorf("/pulse payloads = %v", got)
	}

	status, err := s.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.Startup != sonoff.StartupStay || status.Pulse != sonoff.SwitchOff {
		t.Errorf("Status() = %+v", status)
	}
}

func TestBulb_ModeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		set  func(context.Context, *sonoff.Bulb) error
		want sonoff.ColorMode
	}{
		{
			name: "color",
			set: func(ctx context.Context, b *sonoff.Bulb) error {
				_, err := b.Color(ctx, 50, 255, 10, 1)
				return err
			},
			want: sonoff.Color{Br: 50, R: 255, G: 10, B: 1},
		},
		{
			name: "white",
			set: func(ctx context.Context, b *sonoff.Bulb) error {
				_, err := b.White(ctx, 30, 100)
				return err
			},
			want: sonoff.White{Br: 30, CT: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, dev := startSimulator(t, sonoff.KindBulb, simulator.WithColorMode(sonoff.White{Br: 1, CT: 0}))
			bulb := sonoff.NewBulb(dev)
			ctx := context.Background()

			if err := tt.set(ctx, bulb); err != nil {
				t.Fatalf("set error = %v", err)
			}
			status, err := bulb.Status(ctx)
			if err != nil {
				t.Fatalf("Status() error = %v", err)
			}
			if status.Mode != tt.want {
				t.Errorf("Mode = %#v, want %#v", status.Mode, tt.want)
			}
		})
	}
}

func TestBulb_DimForcesWhite(t *testing.T) {
	sim, dev := startSimulator(t, sonoff.KindBulb, simulator.WithColorMode(sonoff.Color{Br: 80, R: 255, G: 1, B: 1}))
	bulb := sonoff.NewBulb(dev)
	ctx := context.Background()

	if _, err := bulb.Dim(ctx, 40); err != nil {
		t.Fatalf("Dim() error = %v", err)
	}
	got := payloads(sim, "/dimmable")
	if len(got) != 1 || got[0] != `{"br":40,"ct":100,"ltype":"white"}` {
		t.Errorf("/dimmable payloads = %v", got)
	}

	status, err := bulb.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.Mode != (sonoff.White{Br: 40, CT: 100}) {
		t.Errorf("Mode = %#v, want white br=40 ct=100", status.Mode)
	}
}

func TestBulb_StartupRejectedByDevice(t *testing.T) {
	_, dev := startSimulator(t, sonoff.KindBulb)
	resp, err := sonoff.SetStartup(context.Background(), sonoff.NewBulb(dev), sonoff.StartupOff)
	if err != nil {
		t.Fatalf("SetStartup() error = %v", err)
	}
	if resp.Error == 0 {
		t.Error("bulb accepted a startup state")
	}
}

func TestDimmer_Dim(t *testing.T) {
	sim, dev := startSimulator(t, sonoff.KindDimmer, simulator.WithSwitch(sonoff.SwitchOff))
	dimmer := sonoff.NewDimmer(dev)
	ctx := context.Background()

	var d sonoff.Dimmable = dimmer
	resp, err := d.Dim(ctx, 70)
	if err != nil {
		t.Fatalf("Dim() error = %v", err)
	}
	if resp.Error != 0 {
		t.Errorf("Dim() device error = %d", resp.Error)
	}
	if got := payloads(sim, "/dimmable"); len(got) != 1 || got[0] != `{"switch":"on","brightness":70}` {
		t.Errorf("/dimmable payloads = %v", got)
	}

	status, err := dimmer.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.Switch != sonoff.SwitchOn || status.Brightness != 70 {
		t.Errorf("Status() = %+v, want on at 70", status)
	}
}

func TestRelay_PartialUpdate(t *testing.T) {
	sim, dev := startSimulator(t, sonoff.KindRelay)
	relay := sonoff.NewRelay(dev)
	ctx := context.Background()

	_, err := relay.SetSwitches(ctx, []sonoff.OutletSwitch{{Outlet: 1, Switch: sonoff.SwitchOn}})
	if err != nil {
		t.Fatalf("SetSwitches() error = %v", err)
	}
	if got := payloads(sim, "/switches"); got[0] != `{"switches":[{"outlet":1,"switch":"on"}]}` {
		t.Errorf("/switches payload = %s", got[0])
	}

	status, err := relay.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	for _, o := range status.Switches {
		want := sonoff.SwitchOff
		if o.Outlet == 1 {
			want = sonoff.SwitchOn
		}
		if o.Switch != want {
			t.Errorf("outlet %d = %s, want %s", o.Outlet, o.Switch, want)
		}
	}
	if o, ok := status.Outlet(1); !ok || o.Switch != sonoff.SwitchOn {
		t.Errorf("Outlet(1) = %+v, %v", o, ok)
	}
}

func TestRelay_StartupsAndPulses(t *testing.T) {
	sim, dev := startSimulator(t, sonoff.KindRelay)
	relay := sonoff.NewRelay(dev)
	ctx := context.Background()

	if _, err := relay.SetStartups(ctx, []sonoff.OutletStartup{{Outlet: 2, Startup: sonoff.StartupStay}}); err != nil {
		t.Fatalf("SetStartups() error = %v", err)
	}
	if got := payloads(sim, "/startups"); got[0] != `{"configure":[{"outlet":2,"startup":"stay"}]}` {
		t.Errorf("/startups payload = %s", got[0])
	}

	pulse := sonoff.OutletPulse{Outlet: 0, Pulse: sonoff.SwitchOn, Switch: sonoff.SwitchOn, Width: 1000}
	if _, err := relay.SetPulses(ctx, []sonoff.OutletPulse{pulse}); err != nil {
		t.Fatalf("SetPulses() error = %v", err)
	}

	status, err := relay.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.Configure[2].Startup != sonoff.StartupStay || status.Configure[1].Startup != sonoff.StartupOff {
		t.Errorf("Configure = %+v", status.Configure)
	}
	if status.Pulses[0] != pulse {
		t.Errorf("Pulses[0] = %+v, want %+v", status.Pulses[0], pulse)
	}
}

func TestPowerMeter(t *testing.T) {
	var status sonoff.SubDevStatus
	status.FWVersion = "1.0.1"
	status.Readings[0].Current = 120
	sim, dev := startSimulator(t, sonoff.KindPowerMeter, simulator.WithSubDevice("a1b2", 7, status))
	meter := sonoff.NewPowerMeter(dev)
	ctx := context.Background()

	subs, err := meter.SubDevices(ctx)
	if err != nil {
		t.Fatalf("SubDevices() error = %v", err)
	}
	if len(subs) != 1 || subs[0].SubDevID != "a1b2" {
		t.Errorf("SubDevices() = %+v", subs)
	}

	hub, err := meter.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if hub.DeviceID != sim.DeviceID() {
		t.Errorf("hub DeviceID = %q, want %q", hub.DeviceID, sim.DeviceID())
	}
	if got := payloads(sim, "/getState"); got[0] != `{}` {
		t.Errorf("hub /getState payload = %s, want {}", got[0])
	}

	if _, err := meter.SetSwitches(ctx, "a1b2", []sonoff.OutletSwitch{{Outlet: 3, Switch: sonoff.SwitchOn}}); err != nil {
		t.Fatalf("SetSwitches() error = %v", err)
	}

	sub, err := meter.SubDevStatus(ctx, "a1b2")
	if err != nil {
		t.Fatalf("SubDevStatus() error = %v", err)
	}
	if sub.Readings[0].Current != 120 {
		t.Errorf("Readings[0].Current = %d, want 120", sub.Readings[0].Current)
	}
	if len(sub.Switches) != 1 || sub.Switches[0] != (sonoff.OutletSwitch{Outlet: 3, Switch: sonoff.SwitchOn}) {
		t.Errorf("Switches = %+v", sub.Switches)
	}

	if _, err := meter.SubDevStatus(ctx, "missing"); !sonoff.IsEmptyResponseData(err) {
		t.Errorf("SubDevStatus(missing) error = %v, want empty response data", err)
	}
}

func TestPowerMeter_EmptySubDevIDIsSent(t *testing.T) {
	sim, dev := startSimulator(t, sonoff.KindPowerMeter, simulator.WithSubDevice("a1b2", 7, sonoff.SubDevStatus{}))

	_, err := sonoff.NewPowerMeter(dev).SubDevStatus(context.Background(), "")
	if err == nil {
		t.Fatal("SubDevStatus(\"\") succeeded, want an error")
	}
	if got := payloads(sim, "/getState"); len(got) != 1 || got[0] != `{"subDevId":""}` {
		t.Errorf("/getState payloads = %v, want [{\"subDevId\":\"\"}]", got)
	}
}

func TestOutletEndpoints_EmptyListKeepsKey(t *testing.T) {
	sim, dev := startSimulator(t, sonoff.KindRelay)
	relay := sonoff.NewRelay(dev)
	ctx := context.Background()

	if _, err := relay.SetSwitches(ctx, nil); err != nil {
		t.Fatalf("SetSwitches(nil) error = %v", err)
	}
	if _, err := relay.SetStartups(ctx, []sonoff.OutletStartup{}); err != nil {
		t.Fatalf("SetStartups() error = %v", err)
	}
	if _, err := relay.SetPulses(ctx, nil); err != nil {
		t.Fatalf("SetPulses(nil) error = %v", err)
	}

	tests := []struct {
		path string
		want string
	}{
		{"/switches", `{"switches":[]}`},
		{"/startups", `{"configure":[]}`},
		{"/pulses", `{"pulses":[]}`},
	}
	for _, tt := range tests {
		got := payloads(sim, tt.path)
		if len(got) != 1 || got[0] != tt.want {
			t.Errorf("%s payloads = %v, want [%s]", tt.path, got, tt.want)
		}
	}
}
