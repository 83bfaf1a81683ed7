// Copyright (c) 2024-present RTCSync, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package ws

import (
	"fmt"
	"strings"
)

type ClientConfig struct {
	// URL specifies the WebSocket URL of the signaling service to connect
	// to. Should start with either `ws://` or `wss://`.
	URL string
	// AuthToken specifies the token used to authenticate the connection.
	AuthToken string
	// ConnID specifies the id of the connection to be used in case of
	// reconnection. Should be left empty on initial connect.
	ConnID string
}

func (c ClientConfig) IsValid() error {
	if c.URL == "" {
		return fmt.Errorf("invalid URL value: should not be empty")
	}

	if !strings.HasPrefix(c.URL, "ws://") && !strings.HasPrefix(c.URL, "wss://") {
		return fmt.Errorf(`invalid URL value: should start with "ws://" or "wss://"`)
	}

	if c.ConnID != "" && len(c.ConnID) != 26 {
		return fmt.Errorf("invalid ConnID value: should be 26 characters long")
	}

	return nil
}
