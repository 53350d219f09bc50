// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package profilecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/pathwise/internal/logging"
	"github.com/tomtom215/pathwise/internal/personalize"
)

// BadgerStore persists profiles on local disk so a restart keeps the cache
// warm. Expiry uses badger's native entry TTL.
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

// NewBadgerStore opens (or creates) a store at path.
func NewBadgerStore(path string, ttl time.Duration) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	return openBadger(opts, ttl)
}

// newInMemoryBadgerStore is used by tests.
func newInMemoryBadgerStore(ttl time.Duration) (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return openBadger(opts, ttl)
}

func openBadger(opts badger.Options, ttl time.Duration) (*BadgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}
	logging.Info().Str("path", opts.Dir).Dur("ttl", ttl).Msg("Profile cache opened")
	return &BadgerStore{db: db, ttl: ttl}, nil
}

func (s *BadgerStore) Get(_ context.Context, learnerID string) (*personalize.LearningStyle, bool, error) {
	var style personalize.LearningStyle
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(Key(learnerID)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &style)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read profile %s: %w", learnerID, err)
	}
	return &style, true, nil
}

func (s *BadgerStore) Set(_ context.Context, learnerID string, style *personalize.LearningStyle) error {
	data, err := json.Marshal(style)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(Key(learnerID)), data).WithTTL(s.ttl))
	})
	if err != nil {
		return fmt.Errorf("write profile %s: %w", learnerID, err)
	}
	return nil
}

func (s *BadgerStore) Delete(_ context.Context, learnerID string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(Key(learnerID)))
	})
	if err != nil {
		return fmt.Errorf("delete profile %s: %w", learnerID, err)
	}
	return nil
}

func (s *BadgerStore) Name() string { return "badger" }

// Close runs one value-log GC pass and closes the database.
func (s *BadgerStore) Close() error {
	if err := s.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrGCInMemoryMode) {
		logging.Debug().Err(err).Msg("Profile cache value log GC skipped")
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	return nil
}
