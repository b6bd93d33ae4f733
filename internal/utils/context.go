// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys,
// HTTP response writing, HTTP client initialization, JWT token generation
// and validation, and UUID generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// DeviceCtxKey is the key used to store the authenticated device name in the
// context of a folder server request.
//
// Example of writing a value to the context:
//
//	ctx := context.WithValue(ctx, utils.DeviceCtxKey, "laptop")
var DeviceCtxKey = contextKey("device")

// TraceIDCtxKey is the key under which the request trace id is stored.
var TraceIDCtxKey = contextKey("traceID")

// GetDeviceFromContext retrieves the authenticated device name from the
// context. ok is false when the value is missing or not a string.
func GetDeviceFromContext(ctx context.Context) (string, bool) {
	device, ok := ctx.Value(DeviceCtxKey).(string)
	return device, ok
}

// GetTraceIDFromContext retrieves the request trace id from the context.
func GetTraceIDFromContext(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(TraceIDCtxKey).(string)
	return traceID, ok
}
