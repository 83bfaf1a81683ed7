// Copyright (c) 2024-present RTCSync, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"git.mills.io/prologic/bitcask"
)

type bitcaskStore struct {
	db  *bitcask.Bitcask
	mut sync.RWMutex
}

func newBitcaskStore(path string) (*bitcaskStore, error) {
	db, err := bitcask.Open(path,
		bitcask.WithDirFileModeBeforeUmask(0700),
		bitcask.WithFileFileModeBeforeUmask(0600))
	if err != nil {
		return nil, err
	}

	return &bitcaskStore{
		db: db,
	}, nil
}

func (s *bitcaskStore) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mut.Lock()
	defer s.mut.Unlock()

	if err := s.db.Put([]byte(key), []byte(value)); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}

	if err := s.db.Sync(); err != nil {
		return fmt.Errorf("failed to sync db: %w", err)
	}

	return nil
}

func (s *bitcaskStore) Get(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	s.mut.RLock()
	defer s.mut.RUnlock()

	value, err := s.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, bitcask.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get key: %w", err)
	}

	return string(value), nil
}

func (s *bitcaskStore) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mut.Lock()
	defer s.mut.Unlock()

	if !s.db.Has([]byte(key)) {
		return ErrNotFound
	}

	if err := s.db.Delete([]byte(key)); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}

	return nil
}

func (s *bitcaskStore) Keys(prefix string) ([]string, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()

	var keys []string
	for key := range s.db.Keys() {
		if strings.HasPrefix(string(key), prefix) {
			keys = append(keys, string(key))
		}
	}

	return keys, nil
}

func (s *bitcaskStore) Close() error {
	s.mut.Lock()
	defer s.mut.Unlock()
	return s.db.Close()
}
