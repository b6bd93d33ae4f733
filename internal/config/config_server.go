// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "fmt"

// ServerConfig is the folder server view of [StructuredConfig].
type ServerConfig struct {
	App    App
	Server Server
}

// GetServerConfig builds and validates the folder server configuration.
func GetServerConfig(flagCfg *StructuredConfig) (*ServerConfig, error) {
	cfg, err := GetStructuredConfig(flagCfg)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := &ServerConfig{
		App:    cfg.App,
		Server: cfg.Server,
	}

	return serverCfg, serverCfg.validate()
}
