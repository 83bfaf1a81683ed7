// Copyright (c) 2024-present RTCSync, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeAdapter is an in-memory TransportAdapter recording issued commands and
// letting tests deliver events on demand.
type fakeAdapter struct {
	eventsCh chan Event

	joinCode  int
	leaveCode int
	roleCode  int
	videoCode int

	joinCalls  []string
	leaveCalls int
	roleCalls  []Role
	videoCalls []bool

	onStats   func(TransportStats)
	destroyed bool

	mut sync.Mutex
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		eventsCh: make(chan Event, 64),
	}
}

func (a *fakeAdapter) Join(channel, _ string, _ ID, _ string) int {
	a.mut.Lock()
	defer a.mut.Unlock()
	a.joinCalls = append(a.joinCalls, channel)
	return a.joinCode
}

func (a *fakeAdapter) Leave(onStats func(TransportStats)) int {
	a.mut.Lock()
	defer a.mut.Unlock()
	a.leaveCalls++
	a.onStats = onStats
	return a.leaveCode
}

func (a *fakeAdapter) SetRole(role Role) int {
	a.mut.Lock()
	defer a.mut.Unlock()
	a.roleCalls = append(a.roleCalls, role)
	return a.roleCode
}

func (a *fakeAdapter) EnableVideo(enabled bool) int {
	a.mut.Lock()
	defer a.mut.Unlock()
	a.videoCalls = append(a.videoCalls, enabled)
	return a.videoCode
}

func (a *fakeAdapter) Events() <-chan Event {
	return a.eventsCh
}

func (a *fakeAdapter) Destroy() error {
	a.mut.Lock()
	defer a.mut.Unlock()
	if a.destroyed {
		return nil
	}
	a.destroyed = true
	close(a.eventsCh)
	return nil
}

func (a *fakeAdapter) numRoleCalls() int {
	a.mut.Lock()
	defer a.mut.Unlock()
	return len(a.roleCalls)
}

type testHelper struct {
	adapter   *fakeAdapter
	session   *Session
	changesCh <-chan StateChange
	subID     string
}

func setupTestHelper(t *testing.T) *testHelper {
	t.Helper()

	th := &testHelper{
		adapter: newFakeAdapter(),
	}

	var err error
	th.session, err = New(th.adapter)
	require.NoError(t, err)
	require.NotNil(t, th.session)

	th.subID, th.changesCh, err = th.session.Subscribe()
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = th.session.Close()
	})

	return th
}

// sendEvent delivers an event through the fake transport.
func (th *testHelper) sendEvent(t *testing.T, ev Event) {
	t.Helper()
	select {
	case th.adapter.eventsCh <- ev:
	case <-time.After(time.Second):
		require.Fail(t, "timed out sending event")
	}
}

// waitForChange blocks until a change of the given type is published.
func (th *testHelper) waitForChange(t *testing.T, changeType ChangeType) StateChange {
	t.Helper()
	for {
		select {
		case change, ok := <-th.changesCh:
			require.True(t, ok, "changes channel was closed")
			if change.Type == changeType {
				return change
			}
		case <-time.After(2 * time.Second):
			require.Fail(t, "timed out waiting for change", "type=%s", changeType)
			return StateChange{}
		}
	}
}

// join drives the session into the joined state with the given resolved id.
func (th *testHelper) join(t *testing.T, channel string, id ID) {
	t.Helper()
	require.NoError(t, th.session.JoinChannel(channel, "", 0))
	th.sendEvent(t, LocalJoinedEvent{Channel: channel, ID: id})
	th.waitForChange(t, ChangeJoined)
}
