package tfe

import "fmt"

// URLError is returned when a request URL cannot be built.
type URLError struct {
	Raw string
	Err error
}

func (e *URLError) Error() string {
	return fmt.Sprintf("invalid url '%s': %v", e.Raw, e.Err)
}

func (e *URLError) Unwrap() error {
	return e.Err
}

// TransportError is returned when a request fails to complete or the API answers with a
// non-2xx status. StatusCode is zero when no response was received.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s: request failed with status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when a response body does not have the expected JSON shape.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
