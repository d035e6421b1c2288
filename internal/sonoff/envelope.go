package sonoff

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Request is the outer envelope of every request sent to a device
type Request struct {
	DeviceID string          `json:"deviceId"`
	Data     json.RawMessage `json:"data"`
}

// Response is the outer envelope of every device response.
//
// Error is the device-reported result code. It is parsed but not acted on:
// a request with a non-zero code still returns successfully. Callers that
// care about command-level failures call Err.
type Response struct {
	Seq   uint32          `json:"seq"`
	Error int             `json:"error"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// HasData reports whether the response carried a data value.
// A JSON null counts as absent.
func (r *Response) HasData() bool {
	return len(r.Data) > 0 && !bytes.Equal(bytes.TrimSpace(r.Data), []byte("null"))
}

// Err returns a device error when the envelope reports a non-zero error code
func (r *Response) Err() error {
	if r.Error == 0 {
		return nil
	}
	return &DeviceError{
		Type:    ErrTypeDevice,
		Message: fmt.Sprintf("device reported error code %d (seq %d)", r.Error, r.Seq),
		Code:    r.Error,
	}
}

// EncodeRequest wraps payload in a request envelope addressed to deviceID
func EncodeRequest(deviceID string, payload any) ([]byte, error) {
	if payload == nil {
		payload = struct{}{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, NewSerializationError("failed to encode request payload", err)
	}

	body, err := json.Marshal(Request{DeviceID: deviceID, Data: data})
	if err != nil {
		return nil, NewSerializationError("failed to encode request envelope", err)
	}
	return body, nil
}

// rawResponse keeps seq and error as pointers so a missing field can be told
// apart from a zero value.
type rawResponse struct {
	Seq   *uint32         `json:"seq"`
	Error *int            `json:"error"`
	Data  json.RawMessage `json:"data"`
}

// DecodeResponse parses a response envelope. Bodies that are not JSON, or JSON
// that is not an envelope object, fail with ErrMalformedResponse.
func DecodeResponse(body []byte) (*Response, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, NewSerializationError("response is not a JSON object", ErrMalformedResponse)
	}

	var raw rawResponse
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, NewSerializationError("failed to decode response envelope", fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}
	if raw.Seq == nil || raw.Error == nil {
		return nil, NewSerializationError("response envelope is missing seq or error", ErrMalformedResponse)
	}

	return &Response{Seq: *raw.Seq, Error: *raw.Error, Data: raw.Data}, nil
}
