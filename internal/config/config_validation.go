// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron"
)

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DSN == "" || strings.Contains(cfg.Storage.DSN, ":memory:") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Sync.DebounceWindow <= 0 || cfg.Sync.RemoteTimeout <= 0 {
		return ErrInvalidSyncConfigs
	}

	if cfg.Sync.Schedule != "" {
		if _, err := cron.Parse(cfg.Sync.Schedule); err != nil {
			return fmt.Errorf("%w: schedule %q: %v", ErrInvalidSyncConfigs, cfg.Sync.Schedule, err)
		}
	}

	return nil
}

func (cfg *ServerConfig) validate() error {
	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout <= 0 {
		return ErrInvalidServerConfigs
	}

	if cfg.Server.RootDir == "" {
		return ErrInvalidServerConfigs
	}

	if cfg.Server.TokenSignKey != "" && cfg.Server.TokenIssuer == "" {
		return ErrInvalidAppConfigs
	}

	return nil
}
