// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the notes client runtime.
//
// It wires the terminal UI, client services and the background loops
// (periodic sync job and sync folder watcher) into a single process
// lifecycle.
package client
