package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is the root of every configuration error.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNoProviders is returned when no compute provider is available. There is no fallback.
	ErrNoProviders = ConfigError{Param: "Devices", Expected: ">= 1", Given: "0"}
)

// ConfigError is returned for parameters that can never succeed. It is surfaced
// synchronously and never retried.
type ConfigError struct {
	Param    string
	Expected string
	Given    string
}

func (err ConfigError) Error() string {
	return fmt.Sprintf("invalid `%v`; expected: %v, given: %v", err.Param, err.Expected, err.Given)
}

func (err ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// DeviceError wraps a failure of a single dispatch on one compute provider.
type DeviceError struct {
	ProviderID uint
	Err        error
}

func (err *DeviceError) Error() string {
	return fmt.Sprintf("device %d: dispatch failed: %v", err.ProviderID, err.Err)
}

func (err *DeviceError) Unwrap() error {
	return err.Err
}

// PersistenceError is returned when the result cache could not be read or written.
// It is never fatal: the in-memory cache stays authoritative.
type PersistenceError struct {
	Path string
	Err  error
}

func (err *PersistenceError) Error() string {
	return fmt.Sprintf("result cache %v: %v", err.Path, err.Err)
}

func (err *PersistenceError) Unwrap() error {
	return err.Err
}
