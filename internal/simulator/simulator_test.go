package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/muurk/sonoffctl/internal/sonoff"
)

func post(t *testing.T, sim *Simulator, path string, body string) (*httptest.ResponseRecorder, *sonoff.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/zeroconf"+path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	sim.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		return rec, nil
	}
	resp, err := sonoff.DecodeResponse(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("DecodeResponse() error = %v", err)
	}
	return rec, resp
}

func TestServeHTTP_Status(t *testing.T) {
	sim := New(sonoff.KindSwitch)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown path", http.MethodPost, "/zeroconf/reboot", `{}`, http.StatusNotFound},
		{"outside prefix", http.MethodPost, "/info", `{}`, http.StatusNotFound},
		{"wrong method", http.MethodGet, "/zeroconf/info", ``, http.StatusMethodNotAllowed},
		{"bad envelope", http.MethodPost, "/zeroconf/info", `not json`, http.StatusBadRequest},
		{"ok", http.MethodPost, "/zeroconf/info", `{"deviceId":"","data":{}}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			sim.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestServeHTTP_SeqIncrements(t *testing.T) {
	sim := New(sonoff.KindSwitch)
	_, first := post(t, sim, "/info", `{"deviceId":"","data":{}}`)
	_, second := post(t, sim, "/info", `{"deviceId":"","data":{}}`)
	if second.Seq != first.Seq+1 {
		t.Errorf("seq = %d after %d, want %d", second.Seq, first.Seq, first.Seq+1)
	}
}

func TestServeHTTP_DeviceIDMismatch(t *testing.T) {
	sim := New(sonoff.KindSwitch, WithDeviceID("abc"))
	_, resp := post(t, sim, "/info", `{"deviceId":"other","data":{}}`)
	if resp.Error != CodeUnknownDevice {
		t.Errorf("error = %d, want %d", resp.Error, CodeUnknownDevice)
	}
	if resp.HasData() {
		t.Error("response carried data for an unknown device")
	}
}

func TestUnsupportedOperation(t *testing.T) {
	tests := []struct {
		kind sonoff.Kind
		path string
		body string
	}{
		{sonoff.KindBulb, "/startup", `{"startup":"on"}`},
		{sonoff.KindBulb, "/pulse", `{"pulse":"on","pulseWidth":500}`},
		{sonoff.KindSwitch, "/dimmable", `{"switch":"on","brightness":10}`},
		{sonoff.KindSwitch, "/switches", `{"switches":[{"outlet":0,"switch":"on"}]}`},
		{sonoff.KindRelay, "/switch", `{"switch":"on"}`},
		{sonoff.KindDimmer, "/subDevList", `{}`},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+tt.path, func(t *testing.T) {
			sim := New(tt.kind)
			rec, resp := post(t, sim, tt.path, `{"deviceId":"","data":`+tt.body+`}`)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
			}
			if resp.Error != CodeBadRequest {
				t.Errorf("error = %d, want %d", resp.Error, CodeBadRequest)
			}
		})
	}
}

func TestInfo_KindSpecificFields(t *testing.T) {
	tests := []struct {
		kind sonoff.Kind
		keys []string
	}{
		{sonoff.KindSwitch, []string{"switch", "startup", "pulse", "pulseWidth"}},
		{sonoff.KindBulb, []string{"switch", "ltype", "br", "ct"}},
		{sonoff.KindDimmer, []string{"switch", "brightness", "brightmin", "brightmax"}},
		{sonoff.KindRelay, []string{"switches", "configure", "pulses"}},
		{sonoff.KindPowerMeter, []string{"deviceid", "fwVersion"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			sim := New(tt.kind)
			_, resp := post(t, sim, "/info", `{"deviceId":"","data":{}}`)
			var data map[string]json.RawMessage
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			for _, key := range append(tt.keys, "deviceid", "ssid") {
				if _, ok := data[key]; !ok {
					t.Errorf("info missing %q", key)
				}
			}
		})
	}
}

func TestRelay_PartialUpdate(t *testing.T) {
	sim := New(sonoff.KindRelay)
	_, resp := post(t, sim, "/switches", `{"deviceId":"","data":{"switches":[{"outlet":2,"switch":"on"}]}}`)
	if resp.Error != CodeOK {
		t.Fatalf("error = %d, want 0", resp.Error)
	}

	got := sim.Outlets()
	if len(got) != DefaultOutletCount {
		t.Fatalf("len(Outlets()) = %d, want %d", len(got), DefaultOutletCount)
	}
	for _, o := range got {
		want := sonoff.SwitchOff
		if o.Outlet == 2 {
			want = sonoff.SwitchOn
		}
		if o.Switch != want {
			t.Errorf("outlet %d = %s, want %s", o.Outlet, o.Switch, want)
		}
	}
}

func TestRelay_UnknownOutletRejected(t *testing.T) {
	sim := New(sonoff.KindRelay, WithOutlets(sonoff.OutletSwitch{Outlet: 0, Switch: sonoff.SwitchOff}))
	_, resp := post(t, sim, "/switches", `{"deviceId":"","data":{"switches":[{"outlet":0,"switch":"on"},{"outlet":3,"switch":"on"}]}}`)
	if resp.Error != CodeInvalidParams {
		t.Errorf("error = %d, want %d", resp.Error, CodeInvalidParams)
	}
	if got := sim.Outlets()[0].Switch; got != sonoff.SwitchOff {
		t.Errorf("outlet 0 = %s, want off (request must be all or nothing)", got)
	}
}

func TestDimmable_Validation(t *testing.T) {
	tests := []struct {
		name string
		kind sonoff.Kind
		body string
		want int
	}{
		{"bulb white", sonoff.KindBulb, `{"ltype":"white","br":50,"ct":100}`, CodeOK},
		{"bulb colour", sonoff.KindBulb, `{"ltype":"color","br":50,"r":255,"g":1,"b":1}`, CodeOK},
		{"bulb brightness zero", sonoff.KindBulb, `{"ltype":"white","br":0,"ct":100}`, CodeInvalidParams},
		{"bulb ct too high", sonoff.KindBulb, `{"ltype":"white","br":10,"ct":101}`, CodeInvalidParams},
		{"bulb unknown ltype", sonoff.KindBulb, `{"ltype":"scene","br":10}`, CodeInvalidParams},
		{"dimmer", sonoff.KindDimmer, `{"switch":"on","brightness":80}`, CodeOK},
		{"dimmer too bright", sonoff.KindDimmer, `{"switch":"on","brightness":120}`, CodeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := New(tt.kind)
			_, resp := post(t, sim, "/dimmable", `{"deviceId":"","data":`+tt.body+`}`)
			if resp.Error != tt.want {
				t.Errorf("error = %d, want %d", resp.Error, tt.want)
			}
		})
	}
}

func TestOTAFlash_RequiresUnlock(t *testing.T) {
	sim := New(sonoff.KindSwitch)
	body := `{"deviceId":"","data":{"downloadUrl":"http://192.168.1.2/fw.bin","sha256sum":"` +
		"0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef" + `"}}`

	_, resp := post(t, sim, "/ota_flash", body)
	if resp.Error != CodeOTALocked {
		t.Errorf("error before unlock = %d, want %d", resp.Error, CodeOTALocked)
	}

	post(t, sim, "/ota_unlock", `{"deviceId":"","data":{}}`)
	_, resp = post(t, sim, "/ota_flash", body)
	if resp.Error != CodeOK {
		t.Errorf("error after unlock = %d, want 0", resp.Error)
	}
}

func TestPowerMeter(t *testing.T) {
	status := sonoff.SubDevStatus{
		FWVersion: "1.0.1",
		Switches:  []sonoff.OutletSwitch{{Outlet: 0, Switch: sonoff.SwitchOff}},
	}
	status.Readings[1].Voltage = 23012
	sim := New(sonoff.KindPowerMeter, WithSubDevice("sub1", 7, status))

	_, resp := post(t, sim, "/subDevList", `{"deviceId":"","data":{}}`)
	var list sonoff.SubDevList
	if err := json.Unmarshal(resp.Data, &list); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(list.SubDevList) != 1 || list.SubDevList[0].SubDevID != "sub1" || list.SubDevList[0].Type != 7 {
		t.Errorf("subDevList = %+v, want [{sub1 7}]", list.SubDevList)
	}

	_, resp = post(t, sim, "/switches", `{"deviceId":"","data":{"subDevId":"sub1","switches":[{"outlet":1,"switch":"on"}]}}`)
	if resp.Error != CodeOK {
		t.Fatalf("switches error = %d, want 0", resp.Error)
	}

	_, resp = post(t, sim, "/getState", `{"deviceId":"","data":{"subDevId":"sub1"}}`)
	var got sonoff.SubDevStatus
	if err := json.Unmarshal(resp.Data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(got.Switches) != 2 {
		t.Errorf("len(Switches) = %d, want 2", len(got.Switches))
	}
	if got.Readings[1].Voltage != 23012 {
		t.Errorf("Readings[1].Voltage = %d, want 23012", got.Readings[1].Voltage)
	}

	_, resp = post(t, sim, "/getState", `{"deviceId":"","data":{"subDevId":"nope"}}`)
	if resp.Error != CodeUnknownDevice {
		t.Errorf("unknown sub-device error = %d, want %d", resp.Error, CodeUnknownDevice)
	}

	_, resp = post(t, sim, "/getState", `{"deviceId":"","data":{"subDevId":""}}`)
	if resp.Error != CodeUnknownDevice || resp.HasData() {
		t.Errorf("empty sub-device id: error = %d, data = %s; want %d and no data", resp.Error, resp.Data, CodeUnknownDevice)
	}

	_, resp = post(t, sim, "/getState", `{"deviceId":"","data":{}}`)
	var hub sonoff.HubStatus
	if err := json.Unmarshal(resp.Data, &hub); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if hub.DeviceID != sim.DeviceID() {
		t.Errorf("hub deviceid = %q, want %q", hub.DeviceID, sim.DeviceID())
	}
}

func TestRequests_Recorded(t *testing.T) {
	sim := New(sonoff.KindSwitch)
	post(t, sim, "/switch", `{"deviceId":"","data":{"switch":"on"}}`)
	post(t, sim, "/info", `{"deviceId":"","data":{}}`)

	reqs := sim.Requests()
	if len(reqs) != 2 {
		t.Fatalf("len(Requests()) = %d, want 2", len(reqs))
	}
	if reqs[0].Path != "/switch" || string(reqs[0].Payload) != `{"switch":"on"}` {
		t.Errorf("Requests()[0] = %s %s, want /switch {\"switch\":\"on\"}", reqs[0].Path, reqs[0].Payload)
	}
	if sim.Count("/info") != 1 {
		t.Errorf("Count(/info) = %d, want 1", sim.Count("/info"))
	}
}

func TestTXT(t *testing.T) {
	sim := New(sonoff.KindBulb, WithDeviceID("1000abc"))
	txt := strings.Join(sim.TXT(), " ")
	for _, want := range []string{"id=1000abc", "type=diy_light"} {
		if !strings.Contains(txt, want) {
			t.Errorf("TXT() = %q, missing %q", txt, want)
		}
	}
}

func TestServer_ListenServeShutdown(t *testing.T) {
	sim := New(sonoff.KindDimmer)
	srv := NewServer(&Config{Host: "127.0.0.1", Port: 0}, sim)
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()

	dimmer := sonoff.NewDimmer(sonoff.NewDevice(srv.Addr().String()))
	if _, err := dimmer.Dim(context.Background(), 20); err != nil {
		t.Fatalf("Dim() error = %v", err)
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("Serve() error = %v", err)
	}
	if sim.Count("/dimmable") != 1 {
		t.Errorf("Count(/dimmable) = %d, want 1", sim.Count("/dimmable"))
	}
}
