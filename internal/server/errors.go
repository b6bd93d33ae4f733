// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import (
	"errors"
	"fmt"
)

var (
	errNoServersAreCreated = errors.New("no servers are created")

	errNoHTTPHandler = fmt.Errorf("%w: folder handler is missing", errNoServersAreCreated)
	errNoAddress     = fmt.Errorf("%w: listen address is empty", errNoServersAreCreated)
)
