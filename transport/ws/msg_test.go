// Copyright (c) 2024-present RTCSync, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package ws

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rtcsync/sessionkit/session"
)

func TestMessageCodec(t *testing.T) {
	t.Run("join", func(t *testing.T) {
		msg := NewMessage(MessageTypeJoin, JoinData{
			Channel: "calls-room",
			Token:   "secret",
			ID:      42,
		})
		data, err := msg.Pack()
		require.NoError(t, err)

		var decoded Message
		require.NoError(t, decoded.Unpack(data))
		require.Equal(t, MessageTypeJoin, decoded.Type)
		require.Equal(t, JoinData{Channel: "calls-room", Token: "secret", ID: 42}, decoded.Data)
	})

	t.Run("leave has no payload", func(t *testing.T) {
		data, err := NewMessage(MessageTypeLeave, nil).Pack()
		require.NoError(t, err)

		var decoded Message
		require.NoError(t, decoded.Unpack(data))
		require.Equal(t, MessageTypeLeave, decoded.Type)
		require.Nil(t, decoded.Data)
	})

	t.Run("joined", func(t *testing.T) {
		data, err := NewMessage(MessageTypeJoined, JoinedData{
			Channel:   "calls-room",
			ID:        42,
			ElapsedMs: 120,
		}).Pack()
		require.NoError(t, err)

		var decoded Message
		require.NoError(t, decoded.Unpack(data))
		require.Equal(t, JoinedData{Channel: "calls-room", ID: 42, ElapsedMs: 120}, decoded.Data)
	})

	t.Run("video stats", func(t *testing.T) {
		data, err := NewMessage(MessageTypeVideoStats, session.VideoStats{
			ID:        7,
			Width:     1280,
			Height:    720,
			FrameRate: 30,
		}).Pack()
		require.NoError(t, err)

		var decoded Message
		require.NoError(t, decoded.Unpack(data))
		require.Equal(t, session.VideoStats{ID: 7, Width: 1280, Height: 720, FrameRate: 30}, decoded.Data)
	})

	t.Run("unknown type is tolerated", func(t *testing.T) {
		data, err := NewMessage("reaction", map[string]string{"emoji": "wave"}).Pack()
		require.NoError(t, err)

		var decoded Message
		require.NoError(t, decoded.Unpack(data))
		require.Equal(t, "reaction", decoded.Type)
		require.NotNil(t, decoded.Data)
	})
}

func TestEventFromMessage(t *testing.T) {
	t.Run("joined", func(t *testing.T) {
		ev := eventFromMessage(Message{Type: MessageTypeJoined, Data: JoinedData{Channel: "calls-room", ID: 42}})
		require.Equal(t, session.LocalJoinedEvent{Channel: "calls-room", ID: 42}, ev)
	})

	t.Run("peer joined", func(t *testing.T) {
		ev := eventFromMessage(Message{Type: MessageTypePeerJoined, Data: PeerJoinedData{ID: 7, ElapsedMs: 10}})
		require.Equal(t, session.PeerJoinedEvent{ID: 7, ElapsedMs: 10}, ev)
	})

	t.Run("peer left", func(t *testing.T) {
		ev := eventFromMessage(Message{Type: MessageTypePeerLeft, Data: PeerLeftData{ID: 7, Reason: 1}})
		require.Equal(t, session.PeerLeftEvent{ID: 7, Reason: 1}, ev)
	})

	t.Run("video state", func(t *testing.T) {
		ev := eventFromMessage(Message{Type: MessageTypeVideoState, Data: VideoStateData{ID: 7, State: 1}})
		require.Equal(t, session.VideoStateChangedEvent{ID: 7, State: session.VideoStateStarting}, ev)
	})

	t.Run("video stats", func(t *testing.T) {
		stats := session.VideoStats{ID: 7, Width: 640, Height: 360, FrameRate: 15}
		ev := eventFromMessage(Message{Type: MessageTypeVideoStats, Data: stats})
		require.Equal(t, session.VideoStatsEvent{Stats: stats}, ev)
	})

	t.Run("unknown payload maps to no event", func(t *testing.T) {
		require.Nil(t, eventFromMessage(Message{Type: "reaction", Data: map[string]string{}}))
	})
}

func TestClientConfigIsValid(t *testing.T) {
	t.Run("empty URL", func(t *testing.T) {
		err := ClientConfig{}.IsValid()
		require.Error(t, err)
		require.Equal(t, "invalid URL value: should not be empty", err.Error())
	})

	t.Run("invalid scheme", func(t *testing.T) {
		err := ClientConfig{URL: "http://host"}.IsValid()
		require.Error(t, err)
	})

	t.Run("invalid ConnID", func(t *testing.T) {
		err := ClientConfig{URL: "ws://host", ConnID: "short"}.IsValid()
		require.Error(t, err)
	})

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, ClientConfig{URL: "wss://host/signal"}.IsValid())
	})
}
