// Copyright 2026 IslandDAO
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

// Package store persists per-wallet governance power results. It is the
// downstream collaborator of the pipeline; the computation core has no
// knowledge of this storage format.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Gintonik/islanddao-governance-platform-sub004/power"
	"github.com/gagliardetto/solana-go"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// ErrWalletNotFound is returned when no persisted result exists for a wallet
var ErrWalletNotFound = errors.New("wallet not found")

// GovernancePower is the persisted per-wallet power row
type GovernancePower struct {
	ID             uint   `gorm:"primaryKey"`
	Wallet         string `gorm:"uniqueIndex;size:44"`
	NativePower    float64
	DelegatedPower float64
	TotalPower     float64
	ComputedAt     time.Time
}

// ResultStoreSqlite is a SQLite-based persistence layer for governance
// power results. Uses an in-memory database if dataDir is empty, useful
// for testing.
type ResultStoreSqlite struct {
	db      *gorm.DB
	logger  *slog.Logger
	dataDir string
}

// New creates a SQLite result store
func New(dataDir string, logger *slog.Logger) (*ResultStoreSqlite, error) {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	var resultDb *gorm.DB
	var err error
	if dataDir == "" {
		// cache=shared allows multiple connections to share the same in-memory database
		resultDb, err = gorm.Open(
			sqlite.Open("file::memory:?cache=shared"),
			&gorm.Config{
				Logger:                 gormlogger.Discard,
				SkipDefaultTransaction: true,
			},
		)
		if err != nil {
			return nil, err
		}
	} else {
		// Make sure that we can read data dir, and create if it doesn't exist
		if _, err := os.Stat(dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(dataDir, fs.ModePerm); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		dbPath := filepath.Join(dataDir, "results.sqlite")
		connOpts := "_pragma=journal_mode(WAL)&_pragma=sync(OFF)"
		resultDb, err = gorm.Open(
			sqlite.Open(fmt.Sprintf("file:%s?%s", dbPath, connOpts)),
			&gorm.Config{
				Logger:                 gormlogger.Discard,
				SkipDefaultTransaction: true,
			},
		)
		if err != nil {
			return nil, err
		}
	}
	s := &ResultStoreSqlite{
		db:      resultDb,
		logger:  logger,
		dataDir: dataDir,
	}
	if err := s.db.AutoMigrate(&GovernancePower{}); err != nil {
		return s, err
	}
	return s, nil
}

// SaveResult upserts one wallet's power result, keyed by wallet address.
// Implements the pipeline's ResultSink.
func (s *ResultStoreSqlite) SaveResult(
	ctx context.Context,
	result *power.GovernancePowerResult,
) error {
	row := GovernancePower{
		Wallet:         result.Wallet.String(),
		NativePower:    result.NativePower,
		DelegatedPower: result.DelegatedPower,
		TotalPower:     result.TotalPower,
		ComputedAt:     time.Now().UTC(),
	}
	ret := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "wallet"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"native_power",
				"delegated_power",
				"total_power",
				"computed_at",
			}),
		}).
		Create(&row)
	if ret.Error != nil {
		return fmt.Errorf(
			"failed to save result for wallet %s: %w",
			result.Wallet,
			ret.Error,
		)
	}
	return nil
}

// GetResult returns the persisted power row for one wallet
func (s *ResultStoreSqlite) GetResult(
	ctx context.Context,
	wallet solana.PublicKey,
) (*GovernancePower, error) {
	var row GovernancePower
	ret := s.db.WithContext(ctx).
		Where("wallet = ?", wallet.String()).
		First(&row)
	if ret.Error != nil {
		if errors.Is(ret.Error, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, ret.Error
	}
	return &row, nil
}

// GetLeaderboard returns the top wallets by total power
func (s *ResultStoreSqlite) GetLeaderboard(
	ctx context.Context,
	limit int,
) ([]GovernancePower, error) {
	var rows []GovernancePower
	ret := s.db.WithContext(ctx).
		Order("total_power DESC").
		Limit(limit).
		Find(&rows)
	if ret.Error != nil {
		return nil, ret.Error
	}
	return rows, nil
}

// Close closes the underlying database connection
func (s *ResultStoreSqlite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
