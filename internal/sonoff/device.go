package sonoff

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/muurk/sonoffctl/internal/logging"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// DefaultPort is the port DIY-mode devices serve the LAN API on
	DefaultPort = 8081

	// basePath prefixes every endpoint of the LAN API
	basePath = "/zeroconf"
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

var defaultClient Doer = &http.Client{Timeout: DefaultTimeout}

// Device identifies one physical device: its protocol-level id and the base
// URL of its LAN endpoint. Device is a value; copies share nothing mutable.
type Device struct {
	// ID is sent as deviceId in every request. Empty is valid for local,
	// unauthenticated control.
	ID string

	// Address is the base URL (e.g. "http://192.168.1.50:8081")
	Address string

	client Doer
}

// NewDevice creates a device handle for address with an empty id.
// A bare host or host:port is given the http scheme.
func NewDevice(address string) Device {
	return Device{Address: NormalizeAddress(address)}
}

// NormalizeAddress adds the http scheme when missing and trims trailing slashes
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	return strings.TrimRight(address, "/")
}

// WithID returns a copy of the handle using id as deviceId
func (d Device) WithID(id string) Device {
	d.ID = id
	return d
}

// WithClient returns a copy of the handle sending requests through client
func (d Device) WithClient(client Doer) Device {
	d.client = client
	return d
}

func (d Device) httpClient() Doer {
	if d.client == nil {
		return defaultClient
	}
	return d.client
}

// URL returns the full endpoint URL for path
func (d Device) URL(path string) string {
	return d.Address + basePath + path
}

// RawRequest sends payload to path and returns the decoded response envelope.
// A non-2xx status fails with a transport error before the body is decoded.
// The envelope's error code is not inspected.
func (d Device) RawRequest(ctx context.Context, path string, payload any) (*Response, error) {
	body, err := EncodeRequest(d.ID, payload)
	if err != nil {
		return nil, err
	}

	url := d.URL(path)
	logging.LogExchange("request", url, 0, body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, NewTransportError("failed to create request", err, d.Address)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient().Do(req)
	if err != nil {
		return nil, NewTransportError("request failed", err, d.Address)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.LogExchange("response", url, resp.StatusCode, nil)
		return nil, NewHTTPStatusError(resp.StatusCode, d.Address)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError("failed to read response body", err, d.Address)
	}
	logging.LogExchange("response", url, resp.StatusCode, respBody)

	return DecodeResponse(respBody)
}

// TypedRequest sends payload to path and decodes the response data into T.
// It fails with an empty data error when the envelope carries no data.
func TypedRequest[T any](ctx context.Context, d Device, path string, payload any) (T, error) {
	var out T

	resp, err := d.RawRequest(ctx, path, payload)
	if err != nil {
		return out, err
	}
	if !resp.HasData() {
		return out, NewEmptyDataError(path)
	}
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return out, NewSerializationError("failed to decode response data from "+path, err)
	}
	return out, nil
}

// Info queries the information common to every device kind
func (d Device) Info(ctx context.Context) (*Info, error) {
	info, err := TypedRequest[Info](ctx, d, "/info", struct{}{})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// SetWiFi points the device at a different access point
func (d Device) SetWiFi(ctx context.Context, ssid, password string) (*Response, error) {
	return d.RawRequest(ctx, "/wifi", WiFiRequest{SSID: ssid, Password: password})
}

// UnlockOTA enables over-the-air updates on the device
func (d Device) UnlockOTA(ctx context.Context) (*Response, error) {
	return d.RawRequest(ctx, "/ota_unlock", struct{}{})
}

// FlashOTA asks the device to download and flash a firmware image
func (d Device) FlashOTA(ctx context.Context, downloadURL, sha256sum string) (*Response, error) {
	return d.RawRequest(ctx, "/ota_flash", OTAFlashRequest{DownloadURL: downloadURL, SHA256Sum: sha256sum})
}
