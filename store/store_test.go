// Copyright (c) 2024-present RTCSync, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) Store {
	t.Helper()

	s, err := New(t.TempDir() + "/archive")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s
}

func TestStoreSet(t *testing.T) {
	s := setupStore(t)

	t.Run("empty key", func(t *testing.T) {
		require.ErrorIs(t, s.Set("", "value"), ErrEmptyKey)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, s.Set("session_stats/calls-room/2024-01-01T00:00:00Z", `{"peakMembers":2}`))
		value, err := s.Get("session_stats/calls-room/2024-01-01T00:00:00Z")
		require.NoError(t, err)
		require.Equal(t, `{"peakMembers":2}`, value)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Set("key", "one"))
		require.NoError(t, s.Set("key", "two"))
		value, err := s.Get("key")
		require.NoError(t, err)
		require.Equal(t, "two", value)
	})
}

func TestStoreGet(t *testing.T) {
	s := setupStore(t)

	t.Run("empty key", func(t *testing.T) {
		_, err := s.Get("")
		require.ErrorIs(t, err, ErrEmptyKey)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := s.Get("missing")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStoreDelete(t *testing.T) {
	s := setupStore(t)

	t.Run("empty key", func(t *testing.T) {
		require.ErrorIs(t, s.Delete(""), ErrEmptyKey)
	})

	t.Run("missing key", func(t *testing.T) {
		require.ErrorIs(t, s.Delete("missing"), ErrNotFound)
	})

	t.Run("deleted keys are gone", func(t *testing.T) {
		require.NoError(t, s.Set("key", "value"))
		require.NoError(t, s.Delete("key"))
		_, err := s.Get("key")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStoreKeys(t *testing.T) {
	s := setupStore(t)

	for i := 0; i < 4; i++ {
		require.NoError(t, s.Set(fmt.Sprintf("session_stats/calls-room/%d", i), "{}"))
	}
	require.NoError(t, s.Set("transport_stats/calls-room/0", "{}"))

	keys, err := s.Keys("session_stats/")
	require.NoError(t, err)
	require.Len(t, keys, 4)

	keys, err = s.Keys("transport_stats/")
	require.NoError(t, err)
	require.Len(t, keys, 1)

	keys, err = s.Keys("missing/")
	require.NoError(t, err)
	require.Empty(t, keys)
}
