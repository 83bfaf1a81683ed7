// Copyright (c) 2024-present RTCSync, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/mattermost/mattermost/server/public/shared/mlog"
)

const (
	stateIdle int32 = iota
	stateJoining
	stateJoined
	stateLeaving
)

func stateString(st int32) string {
	switch st {
	case stateIdle:
		return "idle"
	case stateJoining:
		return "joining"
	case stateJoined:
		return "joined"
	case stateLeaving:
		return "leaving"
	default:
		return "unknown"
	}
}

// Session reconciles asynchronous transport events into a single consistent
// view of who is in the channel, what role the local participant holds and
// whose video streams are active. It owns the sole handle to the transport
// adapter and sequences command issuance against event consumption.
type Session struct {
	log     mlog.LoggerIFace
	metrics Metrics

	adapter TransportAdapter

	membership *membershipTracker
	video      *videoTracker
	roles      *roleManager

	state    int32
	gen      uint64
	channel  string
	joinedAt time.Time
	stats    SessionStats

	onTransportStats func(TransportStats)

	subscribers map[string]chan StateChange
	subMut      sync.RWMutex

	dropLogLimiter *rate.Limiter

	closed  int32
	closeCh chan struct{}
	doneCh  chan struct{}

	mut sync.RWMutex
}

type Option func(s *Session) error

func WithLogger(log mlog.LoggerIFace) Option {
	return func(s *Session) error {
		s.log = log
		return nil
	}
}

func WithMetrics(m Metrics) Option {
	return func(s *Session) error {
		s.metrics = m
		return nil
	}
}

// WithTransportStatsHandler registers a handler for the transport's own
// counters, delivered asynchronously after a leave completes.
func WithTransportStatsHandler(h func(TransportStats)) Option {
	return func(s *Session) error {
		s.onTransportStats = h
		return nil
	}
}

// New initializes and returns a new Session bound to the given adapter and
// starts its dispatch loop.
func New(adapter TransportAdapter, opts ...Option) (*Session, error) {
	if adapter == nil {
		return nil, fmt.Errorf("adapter should not be nil")
	}

	s := &Session{
		adapter:        adapter,
		membership:     newMembershipTracker(),
		video:          newVideoTracker(),
		roles:          newRoleManager(adapter),
		subscribers:    make(map[string]chan StateChange),
		dropLogLimiter: rate.NewLimiter(1, 4),
		closeCh:        make(chan struct{}),
		doneCh:         make(chan struct{}),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if s.log == nil {
		log, err := mlog.NewLogger()
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		s.log = log
	}

	if s.metrics == nil {
		s.metrics = nullMetrics{}
	}

	go s.dispatchLoop()

	return s, nil
}

// JoinChannel asks the transport to join the given channel. Valid only while
// idle; calling it in any other state returns ErrAlreadyJoined with no state
// change. A zero id requests transport-side identifier assignment. A nil
// error means the command was accepted, not that the join has completed: the
// session transitions to joined once the local join event arrives.
func (s *Session) JoinChannel(channel, token string, id ID) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrSessionClosed
	}
	if channel == "" {
		return fmt.Errorf("invalid channel value: should not be empty")
	}

	s.mut.Lock()
	if s.state != stateIdle {
		s.mut.Unlock()
		return fmt.Errorf("%w: state is %q", ErrAlreadyJoined, stateString(s.state))
	}
	s.state = stateJoining
	atomic.AddUint64(&s.gen, 1)
	s.channel = channel
	s.joinedAt = time.Time{}
	s.stats = SessionStats{Channel: channel}
	s.mut.Unlock()

	s.metrics.IncStateTransitions("joining")
	s.log.Debug("session: joining channel", mlog.String("channel", channel), mlog.Uint("id", uint32(id)))

	// The command is issued without holding the dispatch mutex: the adapter
	// may deliver events synchronously as part of command completion.
	if code := s.adapter.Join(channel, token, id, ""); code < 0 {
		s.mut.Lock()
		s.state = stateIdle
		s.channel = ""
		atomic.AddUint64(&s.gen, 1)
		s.mut.Unlock()
		s.metrics.IncStateTransitions("idle")
		return newAdapterError("join", code)
	}

	return nil
}

// LeaveChannel leaves the current channel, clears all tracked state and, if
// destroy is set, tears the transport down. Valid only while joined; calling
// it while idle returns ErrNotJoined with no state change. Returns the
// session's counters for the terminated cycle.
func (s *Session) LeaveChannel(destroy bool) (SessionStats, error) {
	s.mut.Lock()
	if s.state != stateJoined {
		st := s.state
		s.mut.Unlock()
		return SessionStats{}, fmt.Errorf("%w: state is %q", ErrNotJoined, stateString(st))
	}
	s.state = stateLeaving
	s.mut.Unlock()

	s.metrics.IncStateTransitions("leaving")

	if code := s.adapter.Leave(s.onTransportStats); code < 0 {
		s.mut.Lock()
		s.state = stateJoined
		s.mut.Unlock()
		s.metrics.IncStateTransitions("joined")
		return SessionStats{}, newAdapterError("leave", code)
	}

	s.mut.Lock()
	// Bumping the generation guarantees no event queued for the terminated
	// cycle can revive the cleared state.
	atomic.AddUint64(&s.gen, 1)
	stats := s.stats
	if !s.joinedAt.IsZero() {
		stats.Duration = time.Since(s.joinedAt)
	}
	s.membership.reset()
	s.video.reset()
	s.state = stateIdle
	s.channel = ""
	s.mut.Unlock()

	s.metrics.SetMembers(0)
	s.metrics.IncStateTransitions("idle")
	s.log.Debug("session: left channel",
		mlog.String("channel", stats.Channel),
		mlog.Int("eventsApplied", stats.EventsApplied))

	s.notify(StateChange{Type: ChangeReset})

	if destroy {
		if err := s.adapter.Destroy(); err != nil {
			return stats, fmt.Errorf("failed to destroy adapter: %w", err)
		}
		<-s.doneCh
	}

	return stats, nil
}

// SetRole switches the local participant between publishing and receive-only
// modes. The transport command fires regardless of lifecycle state; once
// joined, the local identifier is added to or removed from membership to
// match. Repeating the current role re-issues the command but has no
// application-visible side effects.
func (s *Session) SetRole(role Role) error {
	if !role.IsValid() {
		return fmt.Errorf("invalid role value %d", int32(role))
	}

	if err := s.roles.issue(role); err != nil {
		return err
	}

	s.mut.Lock()
	prev := s.roles.store(role)
	if prev == role {
		s.mut.Unlock()
		return nil
	}

	var memberChange *StateChange
	localID := s.membership.localID
	if s.state == stateJoined {
		if role == RoleBroadcaster {
			if s.membership.addLocal() {
				memberChange = &StateChange{Type: ChangeMemberAdded, ID: localID}
			}
		} else {
			if s.membership.removeLocal() {
				memberChange = &StateChange{Type: ChangeMemberRemoved, ID: localID}
			}
		}
	}
	members := s.membership.size()
	s.mut.Unlock()

	s.metrics.SetMembers(float64(members))
	s.log.Debug("session: role changed", mlog.String("role", role.String()))

	s.notify(StateChange{Type: ChangeRole, Role: role})
	if memberChange != nil {
		s.notify(*memberChange)
	}

	return nil
}

// EnableVideo toggles local video publishing on the transport.
func (s *Session) EnableVideo(enabled bool) error {
	if code := s.adapter.EnableVideo(enabled); code < 0 {
		return newAdapterError("enableVideo", code)
	}
	return nil
}

// Close stops the dispatch loop and closes all subscriber channels. It does
// not leave the channel nor destroy the transport; use LeaveChannel for an
// orderly teardown.
func (s *Session) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return errors.New("session is already closed")
	}

	close(s.closeCh)
	<-s.doneCh

	s.subMut.Lock()
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
	s.subMut.Unlock()

	return nil
}

// LocalID returns the resolved local participant identifier, zero while
// unresolved.
func (s *Session) LocalID() ID {
	s.mut.RLock()
	defer s.mut.RUnlock()
	return s.membership.localID
}

// Role returns the current local role.
func (s *Session) Role() Role {
	s.mut.RLock()
	defer s.mut.RUnlock()
	return s.roles.role
}

// Channel returns the name of the channel currently joined or being joined,
// empty while idle.
func (s *Session) Channel() string {
	s.mut.RLock()
	defer s.mut.RUnlock()
	return s.channel
}

// Members returns a sorted snapshot of the current membership set.
func (s *Session) Members() []ID {
	s.mut.RLock()
	defer s.mut.RUnlock()
	return s.membership.snapshot()
}

// VideoEnabled returns a sorted snapshot of the identifiers with an active
// video stream. Entries are not guaranteed to be members: stream events and
// membership events may race.
func (s *Session) VideoEnabled() []ID {
	s.mut.RLock()
	defer s.mut.RUnlock()
	return s.video.enabledSnapshot()
}

// ActivePublishers returns the identifiers that are both members and have an
// active video stream.
func (s *Session) ActivePublishers() []ID {
	s.mut.RLock()
	defer s.mut.RUnlock()

	ids := make([]ID, 0)
	for _, id := range s.video.enabledSnapshot() {
		if s.membership.isMember(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// VideoStats returns a copy of the per-participant video stats map.
func (s *Session) VideoStats() map[ID]VideoStats {
	s.mut.RLock()
	defer s.mut.RUnlock()
	return s.video.statsSnapshot()
}

// VideoStatsFor returns the latest stats snapshot for the given identifier.
func (s *Session) VideoStatsFor(id ID) (VideoStats, bool) {
	s.mut.RLock()
	defer s.mut.RUnlock()
	return s.video.statsFor(id)
}
