/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package common

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ad-token-ledger/internal/accounting"
	"ad-token-ledger/internal/api"
	"ad-token-ledger/internal/catalog"
	"ad-token-ledger/internal/config"
	"ad-token-ledger/internal/database"
	"ad-token-ledger/internal/formance"
	"ad-token-ledger/internal/memstore"
	"ad-token-ledger/internal/models"
	"ad-token-ledger/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	Store     store.AccountStore
	DbService *database.Service
	Journal   *formance.Service
	Accounts  *accounting.Service
	Ledger    *api.LedgerService
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices wires the account store, plan catalog, optional Formance
// journal and accounting service from cfg
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	services := &Services{}

	switch cfg.Store.Backend {
	case config.BackendMemory:
		zap.L().Warn("Using in-memory store; balances are lost on exit")
		services.Store = memstore.New()
	default:
		dbService, err := database.NewService(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		services.DbService = dbService
		services.Store = dbService
	}

	plans, err := catalog.LoadFile(cfg.Accounting.PlansFile)
	if err != nil {
		services.Close()
		return nil, fmt.Errorf("failed to load plan catalog: %w", err)
	}

	opts := []accounting.Option{accounting.WithBillingCycle(cfg.Accounting.BillingCycle)}

	if cfg.Formance.Enabled() {
		zap.L().Info("Connecting to Formance ledger", zap.String("ledger", cfg.Formance.LedgerName))
		journal, err := formance.NewService(ctx, cfg.Formance)
		switch {
		case err == nil:
			services.Journal = journal
			opts = append(opts, accounting.WithJournal(journal))
		case cfg.Formance.Required:
			services.Close()
			return nil, fmt.Errorf("failed to connect to Formance: %w", err)
		default:
			zap.L().Warn("Formance unavailable, continuing without journal mirror", zap.Error(err))
		}
	}

	services.Accounts = accounting.NewService(services.Store, plans, opts...)
	services.Ledger = api.NewLedgerService(services.Store, services.Accounts)

	zap.L().Info("Services initialized",
		zap.String("store_backend", cfg.Store.Backend),
		zap.Int("plans", len(plans.List())),
		zap.Bool("journal", services.Journal != nil))
	return services, nil
}

// InitializeDatabaseOnly initializes just the SQLite store, for tools that
// never touch the accounting service
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return dbService, nil
}

func (cs *Services) Close() {
	if cs.Journal != nil {
		cs.Journal.Close()
	}
	if cs.Store != nil {
		cs.Store.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
