// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for freecom.
//
// Supports TOML, YAML and JSON configuration files, with sensible defaults,
// environment variable overrides (including a .env file) and validation.
//
// # Key Types
//
//   - Config: main configuration structure
//   - WidgetConfig: presentation settings (main color, company name, logo)
//   - APIConfig: GraphQL endpoint, token, timeouts and rate limits
//   - IdentityConfig: where the customer identity is persisted
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (FREECOM_*), including ./.env
//   - ~/.freecom/config.toml
//   - ~/.freecom/config.yaml
//   - ~/.freecom/config.json
//   - Built-in defaults
//
// FREECOM_HOME relocates ~/.freecom.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Widget.CompanyName)
package config
