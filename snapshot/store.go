// Copyright 2025 IslandDAO
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package snapshot stores raw ledger account bytes locally so the power
// pipeline recomputes from a stable snapshot without touching the
// network. Fetching and persistence live here, entirely outside the
// decode and aggregation core.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Gintonik/islanddao-governance-platform-sub004/vsr"
	badger "github.com/dgraph-io/badger/v4"
	"github.com/gagliardetto/solana-go"
)

// ErrStoreClosed is returned for operations on a closed store
var ErrStoreClosed = errors.New("snapshot store is closed")

// Store is a badger-backed snapshot of raw account bytes keyed by
// account address. Uses an in-memory database if dataDir is empty,
// useful for testing.
type Store struct {
	db      *badger.DB
	logger  *slog.Logger
	dataDir string
	closed  bool
	mu      sync.RWMutex
}

// New opens (or creates) a snapshot store in dataDir
func New(dataDir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	opts := badger.DefaultOptions(dataDir).
		WithLogger(newBadgerLogger(logger))
	if dataDir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	return &Store{
		db:      db,
		logger:  logger,
		dataDir: dataDir,
	}, nil
}

// Put stores one account's raw bytes, replacing any previous snapshot of
// the same address.
func (s *Store) Put(address solana.PublicKey, data []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(address.Bytes(), data)
	})
}

// ForEach calls fn for every snapshotted account. Iteration order is
// unspecified; the pipeline does not depend on it. Returning an error
// from fn stops iteration.
func (s *Store) ForEach(fn func(vsr.RawAccount) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			if len(key) != solana.PublicKeyLength {
				return fmt.Errorf(
					"snapshot store contains malformed key of length %d",
					len(key),
				)
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("failed to read snapshot value: %w", err)
			}
			acct := vsr.RawAccount{
				Address: solana.PublicKeyFromBytes(key),
				Data:    value,
			}
			if err := fn(acct); err != nil {
				return err
			}
		}
		return nil
	})
}

// Len returns the number of snapshotted accounts
func (s *Store) Len() (int, error) {
	count := 0
	err := s.ForEach(func(vsr.RawAccount) error {
		count++
		return nil
	})
	return count, err
}

// Close closes the underlying database. Safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// badgerLogger adapts badger's logger interface to slog
type badgerLogger struct {
	logger *slog.Logger
}

func newBadgerLogger(logger *slog.Logger) *badgerLogger {
	return &badgerLogger{
		logger: logger.With("component", "snapshot"),
	}
}

func (b *badgerLogger) Errorf(format string, args ...any) {
	b.logger.Error(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Warningf(format string, args ...any) {
	b.logger.Warn(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Infof(format string, args ...any) {
	b.logger.Debug(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Debugf(format string, args ...any) {
	b.logger.Debug(fmt.Sprintf(format, args...))
}
