// Copyright (c) 2024-present RTCSync, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package ws

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/rtcsync/sessionkit/session"
)

// Message is the wire unit exchanged with the signaling service, a type tag
// followed by a type-specific payload.
type Message struct {
	Type string      `msgpack:"type"`
	Data interface{} `msgpack:"data,omitempty"`
}

const (
	// Client to server.
	MessageTypeJoin  = "join"
	MessageTypeLeave = "leave"
	MessageTypeRole  = "role"
	MessageTypeVideo = "video"

	// Server to client.
	MessageTypeJoined     = "joined"
	MessageTypePeerJoined = "peer_joined"
	MessageTypePeerLeft   = "peer_left"
	MessageTypeVideoState = "video_state"
	MessageTypeVideoStats = "video_stats"
	MessageTypeLeaveStats = "leave_stats"
)

type JoinData struct {
	Channel string `msgpack:"channel"`
	Token   string `msgpack:"token,omitempty"`
	ID      uint32 `msgpack:"id,omitempty"`
	Info    string `msgpack:"info,omitempty"`
}

type RoleData struct {
	Role string `msgpack:"role"`
}

type VideoData struct {
	Enabled bool `msgpack:"enabled"`
}

type JoinedData struct {
	Channel   string `msgpack:"channel"`
	ID        uint32 `msgpack:"id"`
	ElapsedMs int64  `msgpack:"elapsedMs"`
}

type PeerJoinedData struct {
	ID        uint32 `msgpack:"id"`
	ElapsedMs int64  `msgpack:"elapsedMs"`
}

type PeerLeftData struct {
	ID     uint32 `msgpack:"id"`
	Reason int    `msgpack:"reason"`
}

type VideoStateData struct {
	ID        uint32 `msgpack:"id"`
	State     int    `msgpack:"state"`
	Reason    int    `msgpack:"reason"`
	ElapsedMs int64  `msgpack:"elapsedMs"`
}

func NewMessage(msgType string, data interface{}) *Message {
	return &Message{
		Type: msgType,
		Data: data,
	}
}

var _ msgpack.CustomEncoder = (*Message)(nil)

func (m *Message) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeMulti(m.Type, m.Data)
}

var _ msgpack.CustomDecoder = (*Message)(nil)

func (m *Message) DecodeMsgpack(dec *msgpack.Decoder) error {
	msgType, err := dec.DecodeString()
	if err != nil {
		return fmt.Errorf("failed to decode msg.Type: %w", err)
	}
	m.Type = msgType

	switch m.Type {
	case MessageTypeJoin:
		var data JoinData
		if err := dec.Decode(&data); err != nil {
			return fmt.Errorf("failed to decode JoinData: %w", err)
		}
		m.Data = data
	case MessageTypeRole:
		var data RoleData
		if err := dec.Decode(&data); err != nil {
			return fmt.Errorf("failed to decode RoleData: %w", err)
		}
		m.Data = data
	case MessageTypeVideo:
		var data VideoData
		if err := dec.Decode(&data); err != nil {
			return fmt.Errorf("failed to decode VideoData: %w", err)
		}
		m.Data = data
	case MessageTypeJoined:
		var data JoinedData
		if err := dec.Decode(&data); err != nil {
			return fmt.Errorf("failed to decode JoinedData: %w", err)
		}
		m.Data = data
	case MessageTypePeerJoined:
		var data PeerJoinedData
		if err := dec.Decode(&data); err != nil {
			return fmt.Errorf("failed to decode PeerJoinedData: %w", err)
		}
		m.Data = data
	case MessageTypePeerLeft:
		var data PeerLeftData
		if err := dec.Decode(&data); err != nil {
			return fmt.Errorf("failed to decode PeerLeftData: %w", err)
		}
		m.Data = data
	case MessageTypeVideoState:
		var data VideoStateData
		if err := dec.Decode(&data); err != nil {
			return fmt.Errorf("failed to decode VideoStateData: %w", err)
		}
		m.Data = data
	case MessageTypeVideoStats:
		var data session.VideoStats
		if err := dec.Decode(&data); err != nil {
			return fmt.Errorf("failed to decode VideoStats: %w", err)
		}
		m.Data = data
	case MessageTypeLeaveStats:
		var data session.TransportStats
		if err := dec.Decode(&data); err != nil {
			return fmt.Errorf("failed to decode TransportStats: %w", err)
		}
		m.Data = data
	default:
		data, err := dec.DecodeInterface()
		if err != nil {
			return fmt.Errorf("failed to decode msg.Data: %w", err)
		}
		m.Data = data
	}

	return nil
}

func (m *Message) Pack() ([]byte, error) {
	return msgpack.Marshal(&m)
}

func (m *Message) Unpack(data []byte) error {
	return msgpack.Unmarshal(data, &m)
}

// eventFromMessage translates a server message into a session event. Returns
// nil for message types that don't map to one.
func eventFromMessage(msg Message) session.Event {
	switch data := msg.Data.(type) {
	case JoinedData:
		return session.LocalJoinedEvent{
			Channel:   data.Channel,
			ID:        session.ID(data.ID),
			ElapsedMs: data.ElapsedMs,
		}
	case PeerJoinedData:
		return session.PeerJoinedEvent{
			ID:        session.ID(data.ID),
			ElapsedMs: data.ElapsedMs,
		}
	case PeerLeftData:
		return session.PeerLeftEvent{
			ID:     session.ID(data.ID),
			Reason: data.Reason,
		}
	case VideoStateData:
		return session.VideoStateChangedEvent{
			ID:        session.ID(data.ID),
			State:     session.VideoState(data.State),
			Reason:    data.Reason,
			ElapsedMs: data.ElapsedMs,
		}
	case session.VideoStats:
		return session.VideoStatsEvent{
			Stats: data,
		}
	default:
		return nil
	}
}
