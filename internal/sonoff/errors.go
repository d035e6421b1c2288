package sonoff

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeTransport indicates an HTTP-level failure (non-2xx status, connection failure)
	ErrTypeTransport ErrorType = iota
	// ErrTypeSerialization indicates a request or response body that does not match the expected JSON shape
	ErrTypeSerialization
	// ErrTypeEmptyData indicates a decoded envelope without the data a typed call required
	ErrTypeEmptyData
	// ErrTypeInvalidCommand indicates a command rejected before any network call
	ErrTypeInvalidCommand
	// ErrTypeDevice indicates a non-zero error code reported inside the response envelope.
	// Only produced by Response.Err; no request path raises it on its own.
	ErrTypeDevice
)

// NetworkErrorSubtype provides more specific transport error classification
type NetworkErrorSubtype int

const (
	NetworkErrorNone NetworkErrorSubtype = iota
	NetworkErrorGeneral
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
)

// ErrMalformedResponse is wrapped by serialization errors raised while decoding
// a response envelope.
var ErrMalformedResponse = errors.New("malformed response envelope")

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeTransport:
		return "Transport Error"
	case ErrTypeSerialization:
		return "Serialization Error"
	case ErrTypeEmptyData:
		return "Empty Response Data"
	case ErrTypeInvalidCommand:
		return "Invalid Command"
	case ErrTypeDevice:
		return "Device Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// DeviceError represents an error that occurred while talking to a device
type DeviceError struct {
	Type           ErrorType           // Category of error
	Message        string              // Human-readable error message
	StatusCode     int                 // HTTP status code (transport errors only)
	Code           int                 // Envelope error code (device errors only)
	Err            error               // Underlying error (if any)
	NetworkSubtype NetworkErrorSubtype // More specific transport error type
	Address        string              // Device address (for context)
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes a connection-level error and returns a transport
// error with the most specific subtype it can find.
func ClassifyNetworkError(err error, address string) *DeviceError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) {
		return &DeviceError{
			Type:           ErrTypeTransport,
			Message:        "request timed out",
			Err:            err,
			NetworkSubtype: NetworkErrorTimeout,
			Address:        address,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &DeviceError{
			Type:           ErrTypeTransport,
			Message:        fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:            err,
			NetworkSubtype: NetworkErrorDNS,
			Address:        address,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return &DeviceError{
				Type:           ErrTypeTransport,
				Message:        "device refused connection",
				Err:            err,
				NetworkSubtype: NetworkErrorConnectionRefused,
				Address:        address,
			}
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return &DeviceError{
				Type:           ErrTypeTransport,
				Message:        "host unreachable",
				Err:            err,
				NetworkSubtype: NetworkErrorHostUnreachable,
				Address:        address,
			}
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			return &DeviceError{
				Type:           ErrTypeTransport,
				Message:        "network unreachable",
				Err:            err,
				NetworkSubtype: NetworkErrorNetworkUnreachable,
				Address:        address,
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return ClassifyNetworkError(urlErr.Err, address)
	}

	return &DeviceError{
		Type:           ErrTypeTransport,
		Message:        "network error occurred",
		Err:            err,
		NetworkSubtype: NetworkErrorGeneral,
		Address:        address,
	}
}

// NewTransportError creates a connection-level transport error with automatic classification
func NewTransportError(message string, err error, address string) *DeviceError {
	classified := ClassifyNetworkError(err, address)
	if classified == nil {
		return &DeviceError{Type: ErrTypeTransport, Message: message, Address: address}
	}
	classified.Message = message + ": " + classified.Message
	return classified
}

// NewHTTPStatusError creates a transport error for a non-2xx HTTP status
func NewHTTPStatusError(statusCode int, address string) *DeviceError {
	return &DeviceError{
		Type:       ErrTypeTransport,
		Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
		StatusCode: statusCode,
		Address:    address,
	}
}

// NewSerializationError creates a serialization error
func NewSerializationError(message string, err error) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeSerialization,
		Message: message,
		Err:     err,
	}
}

// NewEmptyDataError creates an empty response data error
func NewEmptyDataError(path string) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeEmptyData,
		Message: fmt.Sprintf("response to %s carried no data", path),
	}
}

// NewInvalidCommandError creates an invalid command error
func NewInvalidCommandError(message string) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeInvalidCommand,
		Message: message,
	}
}

func asDeviceError(err error) (*DeviceError, bool) {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr, true
	}
	return nil, false
}

func isType(err error, t ErrorType) bool {
	devErr, ok := asDeviceError(err)
	return ok && devErr.Type == t
}

// IsTransportError checks if an error is a transport error
func IsTransportError(err error) bool { return isType(err, ErrTypeTransport) }

// IsSerializationError checks if an error is a serialization error
func IsSerializationError(err error) bool { return isType(err, ErrTypeSerialization) }

// IsEmptyResponseData checks if an error reports a missing data field
func IsEmptyResponseData(err error) bool { return isType(err, ErrTypeEmptyData) }

// IsInvalidCommand checks if an error is an invalid command error
func IsInvalidCommand(err error) bool { return isType(err, ErrTypeInvalidCommand) }

// IsDeviceError checks if an error carries a device-reported error code
func IsDeviceError(err error) bool { return isType(err, ErrTypeDevice) }

// TroubleshootingHint returns user-friendly troubleshooting advice for an error
func TroubleshootingHint(err error) []string {
	devErr, ok := asDeviceError(err)
	if !ok {
		return nil
	}

	switch devErr.Type {
	case ErrTypeTransport:
		switch devErr.NetworkSubtype {
		case NetworkErrorTimeout:
			return []string{
				"Check that the device is powered on",
				"Verify the device is on the same network",
				"Move closer to the access point to improve signal strength",
			}
		case NetworkErrorConnectionRefused:
			return []string{
				"Ensure the device is in DIY mode (LAN control enabled)",
				"Verify the port number (DIY mode uses 8081)",
			}
		case NetworkErrorDNS:
			return []string{
				"Use the IP address instead of the hostname",
				"Check your network DNS settings",
			}
		case NetworkErrorHostUnreachable, NetworkErrorNetworkUnreachable:
			return []string{
				"Verify the device address is correct",
				"Check that you're on the same network as the device",
			}
		}
		if devErr.StatusCode >= 500 {
			return []string{
				"The device firmware rejected the request",
				"Check that the command matches the device type",
				"Try rebooting the device",
			}
		}
		if devErr.StatusCode != 0 {
			return []string{"Check the command parameters"}
		}
		return []string{
			"Check your network connection",
			"Verify the device is powered on",
		}

	case ErrTypeSerialization:
		return []string{
			"The device answered with an unexpected payload",
			"Check that the command matches the device type",
			"Compare the firmware version with a supported one",
		}

	case ErrTypeEmptyData:
		return []string{
			"The device accepted the request but returned no status",
			"Check that the device type supports this query",
		}

	case ErrTypeInvalidCommand:
		return []string{"Run with --help to list the available sub-commands"}

	case ErrTypeDevice:
		return []string{
			"The device rejected the command (bulbs do not support startup state)",
		}
	}

	return nil
}

// ShortMessage returns a concise, user-friendly error message
func ShortMessage(err error) string {
	devErr, ok := asDeviceError(err)
	if !ok {
		return err.Error()
	}

	switch devErr.Type {
	case ErrTypeTransport:
		switch devErr.NetworkSubtype {
		case NetworkErrorTimeout:
			return "Device not responding (timeout)"
		case NetworkErrorConnectionRefused:
			return "Device refused connection - is DIY mode enabled?"
		case NetworkErrorDNS:
			return "Cannot resolve device hostname"
		case NetworkErrorHostUnreachable:
			return "Device unreachable - check network connection"
		case NetworkErrorNetworkUnreachable:
			return "Network unreachable - check WiFi connection"
		}
		if devErr.StatusCode != 0 {
			return fmt.Sprintf("Device error (HTTP %d)", devErr.StatusCode)
		}
		return "Network error - check connection"
	case ErrTypeSerialization:
		return "Failed to parse device response"
	case ErrTypeEmptyData:
		return "Device returned no data"
	case ErrTypeDevice:
		return fmt.Sprintf("Device reported error %d", devErr.Code)
	default:
		return strings.TrimSpace(devErr.Message)
	}
}
