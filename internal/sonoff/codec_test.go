package sonoff

import (
	"encoding/json"
	"testing"
)

func TestBulbRequest_Marshal(t *testing.T) {
	tests := []struct {
		name string
		mode ColorMode
		want string
	}{
		{"color", Color{Br: 50, R: 255, G: 10, B: 1}, `{"b":1,"br":50,"g":10,"ltype":"color","r":255}`},
		{"white", White{Br: 30, CT: 100}, `{"br":30,"ct":100,"ltype":"white"}`},
		{"pointer", &White{Br: 1, CT: 0}, `{"br":1,"ct":0,"ltype":"white"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(BulbRequest{Mode: tt.mode})
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBulbRequest_MarshalNilMode(t *testing.T) {
	if _, err := json.Marshal(BulbRequest{}); err == nil {
		t.Error("Marshal() with nil mode succeeded, want error")
	}
}

func TestBulbRequest_MarshalNilPointerMode(t *testing.T) {
	for _, mode := range []ColorMode{(*Color)(nil), (*White)(nil)} {
		_, err := json.Marshal(BulbRequest{Mode: mode})
		if !IsSerializationError(err) {
			t.Errorf("Marshal(%T) error = %v, want serialization error", mode, err)
		}
	}
}

func TestBulbStatus_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		data string
		want ColorMode
	}{
		{"flat color", `{"switch":"on","ltype":"color","br":20,"r":1,"g":2,"b":3}`, Color{Br: 20, R: 1, G: 2, B: 3}},
		{"flat white", `{"switch":"on","ltype":"white","br":40,"ct":0}`, White{Br: 40, CT: 0}},
		{"nested color", `{"switch":"on","ltype":"color","color":{"br":5,"r":9,"g":8,"b":7}}`, Color{Br: 5, R: 9, G: 8, B: 7}},
		{"nested white", `{"switch":"on","ltype":"white","white":{"br":60,"ct":25}}`, White{Br: 60, CT: 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got BulbStatus
			if err := json.Unmarshal([]byte(tt.data), &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if got.Mode != tt.want {
				t.Errorf("Mode = %#v, want %#v", got.Mode, tt.want)
			}
			if got.Switch != SwitchOn {
				t.Errorf("Switch = %q, want on", got.Switch)
			}
		})
	}
}

func TestBulbStatus_UnknownLampType(t *testing.T) {
	var got BulbStatus
	err := json.Unmarshal([]byte(`{"switch":"on","ltype":"scene","br":1}`), &got)
	if !IsSerializationError(err) {
		t.Errorf("Unmarshal() error = %v, want serialization error", err)
	}
}

func TestInfo_Unmarshal(t *testing.T) {
	data := `{"deviceid":"1000abc","ssid":"home","signalStrength":-60,"switch":"on","startup":"stay","pulse":"off","pulseWidth":500}`

	var info Info
	if err := json.Unmarshal([]byte(data), &info); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if info.DeviceID != "1000abc" {
		t.Errorf("DeviceID = %q, want 1000abc", info.DeviceID)
	}
	if info.SSID == nil || *info.SSID != "home" {
		t.Errorf("SSID = %v, want home", info.SSID)
	}
	if info.BSSID != nil {
		t.Errorf("BSSID = %v, want nil", *info.BSSID)
	}

	var status SwitchStatus
	if err := info.DecodeExtra(&status); err != nil {
		t.Fatalf("DecodeExtra() error = %v", err)
	}
	want := SwitchStatus{Switch: SwitchOn, Startup: StartupStay, Pulse: SwitchOff, PulseWidth: 500}
	if status != want {
		t.Errorf("status = %+v, want %+v", status, want)
	}

	fields := info.Fields()
	if fields[0] != [2]string{"deviceid", "1000abc"} {
		t.Errorf("Fields()[0] = %v", fields[0])
	}
	if fields[2] != [2]string{"bssid", ""} {
		t.Errorf("Fields()[2] = %v, want empty bssid", fields[2])
	}
}

func TestSubDevStatus_ChannelFields(t *testing.T) {
	data := `{
		"fwVersion": "1.0.1",
		"switches": [{"outlet":0,"switch":"on"},{"outlet":1,"switch":"off"}],
		"faultState": {"subDevCom":0,"cse7761Com":[1,1,0,1]},
		"threshold": {"actPow":{"min":10,"max":500000},"voltage":{"min":10,"max":26400},"current":{"min":10,"max":2000}},
		"overload_00": {"minAP":{"en":0,"val":10},"maxAP":{"en":1,"val":400000},"minV":{"en":0,"val":10},"maxV":{"en":0,"val":26400},"maxC":{"en":0,"val":2000},"delayTime":10},
		"current_01": 512,
		"voltage_01": 23012,
		"actPow_03": 1200
	}`

	var got SubDevStatus
	if err := json.Unmarshal([]byte(data), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.FWVersion != "1.0.1" || len(got.Switches) != 2 {
		t.Errorf("named fields = %+v", got)
	}
	if got.Overloads[0].MaxAP != (OverloadValue{En: 1, Val: 400000}) {
		t.Errorf("Overloads[0].MaxAP = %+v", got.Overloads[0].MaxAP)
	}
	if got.Overloads[0].DelayTime != 10 {
		t.Errorf("Overloads[0].DelayTime = %d, want 10", got.Overloads[0].DelayTime)
	}
	if got.Readings[1].Current != 512 || got.Readings[1].Voltage != 23012 {
		t.Errorf("Readings[1] = %+v", got.Readings[1])
	}
	if got.Readings[3].ActPow != 1200 {
		t.Errorf("Readings[3].ActPow = %d, want 1200", got.Readings[3].ActPow)
	}
	if !got.FaultState.ChannelOK(0) || got.FaultState.ChannelOK(2) || got.FaultState.ChannelOK(7) {
		t.Errorf("ChannelOK mismatch for cse7761Com %v", got.FaultState.CSE7761Com)
	}

	raw, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(raw, &flat); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if string(flat["voltage_01"]) != "23012" {
		t.Errorf("voltage_01 = %s, want 23012", flat["voltage_01"])
	}
}

func TestParseStates(t *testing.T) {
	if s, err := ParseSwitchState("ON"); err != nil || s != SwitchOn {
		t.Errorf("ParseSwitchState(ON) = %q, %v", s, err)
	}
	if _, err := ParseSwitchState("maybe"); !IsInvalidCommand(err) {
		t.Errorf("ParseSwitchState(maybe) error = %v, want invalid command", err)
	}
	if s, err := ParseStartupState("stay"); err != nil || s != StartupStay {
		t.Errorf("ParseStartupState(stay) = %q, %v", s, err)
	}
	if _, err := ParseStartupState("later"); !IsInvalidCommand(err) {
		t.Errorf("ParseStartupState(later) error = %v, want invalid command", err)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"bulb", KindBulb, false},
		{" Relay ", KindRelay, false},
		{"", "", false},
		{"toaster", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseKind(%q) = %q, %v, want %q (err %v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
	if _, ok := KindRelay.Switchable(NewDevice("h")); ok {
		t.Error("KindRelay.Switchable() ok = true, want false")
	}
	if _, ok := KindDimmer.Switchable(NewDevice("h")); !ok {
		t.Error("KindDimmer.Switchable() ok = false, want true")
	}
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"192.168.1.50:8081", "http://192.168.1.50:8081"},
		{"http://192.168.1.50:8081/", "http://192.168.1.50:8081"},
		{"https://sonoff.lan", "https://sonoff.lan"},
	}
	for _, tt := range tests {
		if got := NormalizeAddress(tt.in); got != tt.want {
			t.Errorf("NormalizeAddress(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := NewDevice("h:1").URL("/info"); got != "http://h:1/zeroconf/info" {
		t.Errorf("URL() = %q", got)
	}
}
