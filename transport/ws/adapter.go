// Copyright (c) 2024-present RTCSync, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package ws

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mattermost/mattermost/server/public/shared/mlog"

	"github.com/rtcsync/sessionkit/random"
	"github.com/rtcsync/sessionkit/session"
)

const (
	sendChSize   = 64
	eventsChSize = 256

	writeWaitTime    = 10 * time.Second
	connMaxReadBytes = 1024 * 1024 // 1MB
)

const (
	connOpen int32 = iota
	connClosing
	connClosed
)

// Command result codes. Anything negative is a failure, matching the
// contract of session.TransportAdapter.
const (
	CodeOK           = 0
	CodeSendFailed   = -1
	CodeEncodeFailed = -2
	CodeConnClosed   = -3
)

// Adapter is a session.TransportAdapter speaking msgpack over WebSocket to a
// signaling service. Incoming wire messages are translated into session
// events and delivered on a single channel; commands are encoded and queued
// on a writer goroutine.
var _ session.TransportAdapter = (*Adapter)(nil)

type Adapter struct {
	cfg    ClientConfig
	log    mlog.LoggerIFace
	connID string

	conn     *websocket.Conn
	sendCh   chan []byte
	eventsCh chan session.Event

	onLeaveStats func(session.TransportStats)

	connState int32
	destroyed int32
	closeCh   chan struct{}
	wg        sync.WaitGroup

	mut sync.Mutex
}

type Option func(a *Adapter) error

func WithLogger(log mlog.LoggerIFace) Option {
	return func(a *Adapter) error {
		a.log = log
		return nil
	}
}

// NewAdapter dials the configured signaling service and starts the reader
// and writer goroutines.
func NewAdapter(cfg ClientConfig, opts ...Option) (*Adapter, error) {
	if err := cfg.IsValid(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	a := &Adapter{
		cfg:      cfg,
		sendCh:   make(chan []byte, sendChSize),
		eventsCh: make(chan session.Event, eventsChSize),
		closeCh:  make(chan struct{}),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if a.log == nil {
		log, err := mlog.NewLogger()
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		a.log = log
	}

	header := http.Header{
		"Authorization": []string{"Bearer " + cfg.AuthToken},
	}

	conn, _, err := websocket.DefaultDialer.Dial(cfg.URL, header)
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}
	a.conn = conn

	a.connID = cfg.ConnID
	if a.connID == "" {
		a.connID = random.NewID()
	}

	a.wg.Add(2)
	go a.connReader()
	go a.connWriter()

	return a, nil
}

func (a *Adapter) connReader() {
	// The state must flip before the events channel closes: consumers treat
	// the close as the end of the stream and may issue commands right after.
	defer func() {
		atomic.StoreInt32(&a.connState, connClosed)
		close(a.eventsCh)
		a.wg.Done()
	}()

	a.conn.SetReadLimit(connMaxReadBytes)

	for {
		_, data, err := a.conn.ReadMessage()
		if err != nil {
			if atomic.LoadInt32(&a.connState) == connOpen {
				a.log.Error("ws: failed to read message", mlog.Err(err), mlog.String("connID", a.connID))
			}
			return
		}

		var msg Message
		if err := msg.Unpack(data); err != nil {
			a.log.Error("ws: failed to unpack message", mlog.Err(err), mlog.String("connID", a.connID))
			continue
		}

		a.handleMsg(msg)
	}
}

func (a *Adapter) handleMsg(msg Message) {
	if msg.Type == MessageTypeLeaveStats {
		stats, ok := msg.Data.(session.TransportStats)
		if !ok {
			a.log.Error("ws: unexpected leave stats payload", mlog.String("connID", a.connID))
			return
		}
		a.mut.Lock()
		onStats := a.onLeaveStats
		a.onLeaveStats = nil
		a.mut.Unlock()
		if onStats != nil {
			onStats(stats)
		}
		return
	}

	ev := eventFromMessage(msg)
	if ev == nil {
		// Unknown message types are tolerated, the protocol evolves
		// independently of this client.
		a.log.Debug("ws: ignoring message", mlog.String("type", msg.Type), mlog.String("connID", a.connID))
		return
	}

	select {
	case a.eventsCh <- ev:
	case <-a.closeCh:
	}
}

func (a *Adapter) connWriter() {
	defer a.wg.Done()

	for {
		select {
		case data := <-a.sendCh:
			if err := a.conn.SetWriteDeadline(time.Now().Add(writeWaitTime)); err != nil {
				a.log.Error("ws: failed to set write deadline", mlog.Err(err), mlog.String("connID", a.connID))
			}
			if err := a.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				a.log.Error("ws: failed to write message", mlog.Err(err), mlog.String("connID", a.connID))
			}
		case <-a.closeCh:
			return
		}
	}
}

func (a *Adapter) send(msgType string, data interface{}) int {
	if atomic.LoadInt32(&a.connState) != connOpen {
		return CodeConnClosed
	}

	packed, err := NewMessage(msgType, data).Pack()
	if err != nil {
		a.log.Error("ws: failed to pack message", mlog.Err(err), mlog.String("type", msgType))
		return CodeEncodeFailed
	}

	select {
	case a.sendCh <- packed:
		return CodeOK
	default:
		a.log.Error("ws: failed to send message: channel is full", mlog.String("type", msgType))
		return CodeSendFailed
	}
}

func (a *Adapter) Join(channel, token string, id session.ID, info string) int {
	return a.send(MessageTypeJoin, JoinData{
		Channel: channel,
		Token:   token,
		ID:      uint32(id),
		Info:    info,
	})
}

func (a *Adapter) Leave(onStats func(session.TransportStats)) int {
	a.mut.Lock()
	a.onLeaveStats = onStats
	a.mut.Unlock()

	return a.send(MessageTypeLeave, nil)
}

func (a *Adapter) SetRole(role session.Role) int {
	return a.send(MessageTypeRole, RoleData{
		Role: role.String(),
	})
}

func (a *Adapter) EnableVideo(enabled bool) int {
	return a.send(MessageTypeVideo, VideoData{
		Enabled: enabled,
	})
}

func (a *Adapter) Events() <-chan session.Event {
	return a.eventsCh
}

// Destroy closes the underlying connection and stops both goroutines. It
// tears down on the first call no matter the connection state, so a remote
// disconnect beforehand does not turn teardown into an error. The events
// channel is closed once the reader exits; no events are delivered
// afterwards.
func (a *Adapter) Destroy() error {
	if !atomic.CompareAndSwapInt32(&a.destroyed, 0, 1) {
		return fmt.Errorf("adapter is already destroyed")
	}

	// Suppresses the reader's error log if it's still running.
	atomic.CompareAndSwapInt32(&a.connState, connOpen, connClosing)

	close(a.closeCh)
	err := a.conn.Close()
	a.wg.Wait()

	if err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	return nil
}
