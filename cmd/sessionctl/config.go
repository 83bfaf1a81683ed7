// Copyright (c) 2024-present RTCSync, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/rtcsync/sessionkit/logger"
	"github.com/rtcsync/sessionkit/session"
	"github.com/rtcsync/sessionkit/transport/ws"
)

type Config struct {
	Transport TransportConfig `toml:"transport"`
	Call      CallConfig      `toml:"call"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Store     StoreConfig     `toml:"store"`
	Logger    logger.Config   `toml:"logger"`
}

type TransportConfig struct {
	// URL is the WebSocket URL of the signaling service.
	URL string `toml:"url"`
	// AuthToken authenticates the connection.
	AuthToken string `toml:"auth_token"`
}

type CallConfig struct {
	// Channel is the name of the channel to join.
	Channel string `toml:"channel"`
	// Token is an optional channel join token.
	Token string `toml:"token"`
	// ID is the participant identifier to join with. Zero lets the
	// transport assign one.
	ID uint32 `toml:"id"`
	// Role is the initial role, either "audience" or "broadcaster".
	Role string `toml:"role"`
	// Video enables local video publishing after joining.
	Video bool `toml:"video"`
}

type MetricsConfig struct {
	// ListenAddress is where prometheus metrics are served. Empty disables
	// the listener.
	ListenAddress string `toml:"listen_address"`
}

type StoreConfig struct {
	// DataSource is the path of the stats archive. Empty disables archiving.
	DataSource string `toml:"data_source"`
}

func (c Config) IsValid() error {
	if err := (ws.ClientConfig{URL: c.Transport.URL, AuthToken: c.Transport.AuthToken}).IsValid(); err != nil {
		return err
	}
	if c.Call.Channel == "" {
		return fmt.Errorf("invalid Channel value: should not be empty")
	}
	if _, err := session.ParseRole(c.Call.Role); err != nil {
		return err
	}
	return c.Logger.IsValid()
}

func (c *Config) SetDefaults() {
	if c.Call.Role == "" {
		c.Call.Role = "audience"
	}
	if c.Logger == (logger.Config{}) {
		c.Logger = logger.Config{
			EnableConsole: true,
			ConsoleLevel:  "info",
		}
	}
}

// loadConfig reads the config file and returns a new Config. Values in the
// file are overridden by any corresponding environment variables.
func loadConfig(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config file: %w", err)
	}
	if err := envconfig.Process("sessionctl", &cfg); err != nil {
		return cfg, err
	}
	cfg.SetDefaults()
	return cfg, nil
}
