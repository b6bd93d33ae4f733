// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"context"
	"testing"
)

func TestContextKeyString(t *testing.T) {
	key := contextKey("testKey")
	if key.String() != "testKey" {
		t.Errorf("expected 'testKey', got '%s'", key.String())
	}
}

func TestDeviceCtxKey(t *testing.T) {
	if DeviceCtxKey.String() != "device" {
		t.Errorf("expected 'device', got '%s'", DeviceCtxKey.String())
	}
}

func TestGetDeviceFromContext_Success(t *testing.T) {
	ctx := context.WithValue(context.Background(), DeviceCtxKey, "laptop")

	device, ok := GetDeviceFromContext(ctx)

	if !ok {
		t.Fatal("expected ok=true, got false")
	}
	if device != "laptop" {
		t.Errorf("expected device=laptop, got %s", device)
	}
}

func TestGetDeviceFromContext_Missing(t *testing.T) {
	device, ok := GetDeviceFromContext(context.Background())

	if ok {
		t.Error("expected ok=false for missing key, got true")
	}
	if device != "" {
		t.Errorf("expected empty device, got %s", device)
	}
}

func TestGetDeviceFromContext_WrongType(t *testing.T) {
	// int64 instead of string
	ctx := context.WithValue(context.Background(), DeviceCtxKey, int64(42))

	if _, ok := GetDeviceFromContext(ctx); ok {
		t.Error("expected ok=false for wrong type, got true")
	}
}

func TestGetTraceIDFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDCtxKey, "trace-1")

	traceID, ok := GetTraceIDFromContext(ctx)
	if !ok || traceID != "trace-1" {
		t.Errorf("expected trace-1, got %q (ok=%v)", traceID, ok)
	}
}
