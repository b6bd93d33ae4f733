// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// passwordAlias is the name the command line documents for the sync
// password. It fills App.SyncPassword when APP_SYNC_PASSWORD is unset.
const passwordAlias = "NOTESYNC_SYNC_PASSWORD"

// parseEnv fills cfg from the process environment through the `env` and
// `envPrefix` tags of [StructuredConfig].
func parseEnv(cfg *StructuredConfig) error {
	vars := env.ToMap(os.Environ())
	if v := vars[passwordAlias]; v != "" && vars["APP_SYNC_PASSWORD"] == "" {
		vars["APP_SYNC_PASSWORD"] = v
	}

	if err := env.ParseWithOptions(cfg, env.Options{Environment: vars}); err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}
	return nil
}
