package domain

import (
	"errors"
	"fmt"
)

// ErrCityNotFound reports that the weather provider does not know the city.
// The dialog layer treats it as user input to correct, not as a failure.
var ErrCityNotFound = errors.New("city not found")

// ProviderError wraps upstream weather provider failures: transport errors,
// 5xx responses, and malformed payloads.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("weather provider: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Code is picked up by handler summary logging.
func (e *ProviderError) Code() string { return "PROVIDER_ERROR" }
