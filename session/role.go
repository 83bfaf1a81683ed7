// Copyright (c) 2024-present RTCSync, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package session

// roleManager owns the local session role. The set-role command is driven
// through the adapter immediately on change, in any lifecycle state;
// membership reconciliation is done by the session under its dispatch mutex.
type roleManager struct {
	adapter TransportAdapter
	role    Role
}

func newRoleManager(adapter TransportAdapter) *roleManager {
	return &roleManager{
		adapter: adapter,
		role:    RoleAudience,
	}
}

// issue forwards the set-role command to the transport. Called without
// holding the dispatch mutex.
func (m *roleManager) issue(role Role) error {
	if code := m.adapter.SetRole(role); code < 0 {
		return newAdapterError("setRole", code)
	}
	return nil
}

// store records the new role and returns the previous one.
func (m *roleManager) store(role Role) Role {
	prev := m.role
	m.role = role
	return prev
}
