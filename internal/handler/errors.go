// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package handler

import "errors"

// errNoHandlersAreCreated is returned by NewHandlers when the server
// configuration has no HTTP address. The folder server cannot start without a
// transport, so this is fatal at startup.
var errNoHandlersAreCreated = errors.New("no handlers are created")
