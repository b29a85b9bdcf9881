package transport

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"

	"github.com/muurk/opensprinkler/internal/urls"
)

// ErrorType represents the category of a transport failure
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error (reset, unreachable, etc.)
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the request timed out
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the controller refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
	// ErrTypeHTTP indicates a non-2xx HTTP status
	ErrTypeHTTP
	// ErrTypeParse indicates the response body could not be decoded
	ErrTypeParse
)

// NetworkErrorSubtype provides more specific network error classification
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is returned by HTTP for every failed round trip. The sprinkler
// client passes it through to callers untouched.
type Error struct {
	Type           ErrorType           // Category of error
	Message        string              // Human-readable error message
	StatusCode     int                 // HTTP status code (if applicable)
	Path           string              // Request path, e.g. "/jc"
	Err            error               // Underlying error (if any)
	NetworkSubtype NetworkErrorSubtype // More specific network error type
}

// Error implements the error interface
func (e *Error) Error() string {
	prefix := e.Type.String()
	if e.Path != "" {
		prefix += " " + e.Path
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes a client.Do failure and returns a typed error
func ClassifyNetworkError(err error) *Error {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) {
		return &Error{
			Type:           ErrTypeTimeout,
			Message:        "request timed out",
			Err:            err,
			NetworkSubtype: NetworkErrorTimeout,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{
			Type:           ErrTypeDNS,
			Message:        fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:            err,
			NetworkSubtype: NetworkErrorDNS,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return &Error{
				Type:           ErrTypeConnectionRefused,
				Message:        "controller refused connection",
				Err:            err,
				NetworkSubtype: NetworkErrorConnectionRefused,
			}
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return &Error{
				Type:           ErrTypeNetwork,
				Message:        "host unreachable",
				Err:            err,
				NetworkSubtype: NetworkErrorHostUnreachable,
			}
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			return &Error{
				Type:           ErrTypeNetwork,
				Message:        "network unreachable",
				Err:            err,
				NetworkSubtype: NetworkErrorNetworkUnreachable,
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != err {
		return ClassifyNetworkError(urlErr.Err)
	}

	return &Error{
		Type:           ErrTypeNetwork,
		Message:        "network error occurred",
		Err:            err,
		NetworkSubtype: NetworkErrorGeneral,
	}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message string, err error) *Error {
	classified := ClassifyNetworkError(err)
	if classified == nil {
		return &Error{Type: ErrTypeNetwork, Message: message}
	}
	classified.Message = message
	return classified
}

// NewHTTPError creates an error for a non-2xx response
func NewHTTPError(statusCode int, message string) *Error {
	return &Error{
		Type:       ErrTypeHTTP,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewParseError creates a body decoding error
func NewParseError(message string, err error) *Error {
	return &Error{
		Type:    ErrTypeParse,
		Message: message,
		Err:     err,
	}
}

func asError(err error) (*Error, bool) {
	var tErr *Error
	if errors.As(err, &tErr) {
		return tErr, true
	}
	return nil, false
}

// IsNetworkError checks if an error is a network error (including timeout, connection refused, DNS)
func IsNetworkError(err error) bool {
	tErr, ok := asError(err)
	if !ok {
		return false
	}
	switch tErr.Type {
	case ErrTypeNetwork, ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeDNS:
		return true
	}
	return false
}

// IsTimeout checks if an error is a request timeout
func IsTimeout(err error) bool {
	tErr, ok := asError(err)
	return ok && tErr.Type == ErrTypeTimeout
}

// IsHTTPError checks if an error is a non-2xx HTTP status
func IsHTTPError(err error) bool {
	tErr, ok := asError(err)
	return ok && tErr.Type == ErrTypeHTTP
}

// IsParseError checks if an error is a body decoding failure
func IsParseError(err error) bool {
	tErr, ok := asError(err)
	return ok && tErr.Type == ErrTypeParse
}

// TroubleshootingHint returns user-facing advice for a transport error
func TroubleshootingHint(err error) []string {
	tErr, ok := asError(err)
	if !ok {
		return nil
	}

	switch tErr.Type {
	case ErrTypeTimeout:
		return []string{
			"Check that the controller is powered on",
			"Verify the controller and this computer share a network",
			"Try a longer --timeout",
		}
	case ErrTypeConnectionRefused:
		return []string{
			"Verify the HTTP port (default is 80; check the hp0/hp1 options)",
			"The controller may be rebooting - wait a few seconds and retry",
		}
	case ErrTypeDNS:
		return []string{
			"Use the IP address instead of the hostname",
			"Run 'opensprinkler-cfg scan' to locate controllers via mDNS",
		}
	case ErrTypeNetwork:
		switch tErr.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			return []string{
				"Verify the controller IP address is correct",
				"Check the controller's Wi-Fi or Ethernet link",
			}
		case NetworkErrorNetworkUnreachable:
			return []string{
				"Check this computer's network connection",
			}
		}
		return []string{
			"Check your network connection",
			"Verify the controller is powered on",
		}
	case ErrTypeHTTP:
		if tErr.StatusCode == 404 {
			return []string{
				"The firmware does not serve " + tErr.Path,
				"Check the firmware version: " + urls.FirmwareReleases,
			}
		}
		return []string{
			fmt.Sprintf("The controller answered HTTP %d", tErr.StatusCode),
			"Try rebooting the controller",
		}
	case ErrTypeParse:
		return []string{
			"The response was not the JSON this client expects",
			"See the API reference for your firmware: " + urls.APIDocumentation,
		}
	}
	return nil
}

// ShortMessage returns a concise, user-friendly error message
func ShortMessage(err error) string {
	tErr, ok := asError(err)
	if !ok {
		return err.Error()
	}

	switch tErr.Type {
	case ErrTypeTimeout:
		return "Controller not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Controller refused connection"
	case ErrTypeDNS:
		return "Cannot resolve controller hostname"
	case ErrTypeNetwork:
		switch tErr.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			return "Controller unreachable - check network connection"
		case NetworkErrorNetworkUnreachable:
			return "Network unreachable"
		default:
			return "Network error - check connection"
		}
	case ErrTypeHTTP:
		return fmt.Sprintf("Controller error (HTTP %d)", tErr.StatusCode)
	case ErrTypeParse:
		return "Failed to parse controller response"
	default:
		return strings.TrimSpace(tErr.Message)
	}
}
