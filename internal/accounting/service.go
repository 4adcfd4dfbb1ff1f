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

package accounting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ad-token-ledger/internal/catalog"
	"ad-token-ledger/internal/ledger"
	"ad-token-ledger/internal/models"
	"ad-token-ledger/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBillingCycle is the nominal subscription period.
const DefaultBillingCycle = 30 * 24 * time.Hour

var (
	ErrNoSubscription    = errors.New("no subscription for user")
	ErrInvalidTransition = errors.New("invalid campaign order status transition")

	ErrInsufficientTokens = ledger.ErrInsufficientTokens
	ErrInvalidArgument    = ledger.ErrInvalidArgument
	ErrPlanNotFound       = catalog.ErrPlanNotFound
)

// Journal mirrors token movements into an external double-entry ledger.
// Mirror failures never fail the accounting operation.
type Journal interface {
	Post(ctx context.Context, posting models.JournalPosting) error
}

// Service is the token accounting façade. Mutations are serialized per user
// and persisted with optimistic locking.
type Service struct {
	store   store.AccountStore
	catalog *catalog.Catalog
	journal Journal
	now     func() time.Time
	newId   func() string
	cycle   time.Duration
	locks   *keyedMutex
}

// NewService creates a Service. Panics if the store or catalog is nil.
func NewService(accounts store.AccountStore, plans *catalog.Catalog, opts ...Option) *Service {
	if accounts == nil {
		panic("accounting: AccountStore is required")
	}
	if plans == nil {
		panic("accounting: Catalog is required")
	}

	s := &Service{
		store:   accounts,
		catalog: plans,
		now:     time.Now,
		newId:   func() string { return uuid.New().String() },
		cycle:   DefaultBillingCycle,
		locks:   newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the plan catalog the service prices against
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// loadAccount returns the stored account or ErrNoSubscription
func (s *Service) loadAccount(ctx context.Context, userId string) (*models.Account, error) {
	acct, err := s.store.GetAccount(ctx, userId)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoSubscription, userId)
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return acct, nil
}

// mirror posts to the journal when one is configured
func (s *Service) mirror(ctx context.Context, posting models.JournalPosting) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Post(ctx, posting); err != nil {
		zap.L().Warn("Failed to mirror posting to journal",
			zap.String("reference", posting.Reference),
			zap.String("kind", string(posting.Kind)),
			zap.String("user_id", posting.UserId),
			zap.Error(err))
	}
}

// keyedMutex hands out one mutex per user id
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock blocks until key is free and returns the matching unlock
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
