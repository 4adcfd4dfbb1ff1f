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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ad-token-ledger/internal/models"
	"ad-token-ledger/internal/store"

	"go.uber.org/zap"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.UserId, &a.Wallet.Id, &a.Wallet.TotalTokens, &a.Wallet.MediaTokens, &a.Wallet.CreativeTokens,
		&a.Wallet.LastUpdated, &a.Version,
		&a.Subscription.PlanId, &a.Subscription.Status,
		&a.Subscription.CurrentPeriodStart, &a.Subscription.CurrentPeriodEnd,
		&a.Subscription.TokensUsedThisCycle, &a.Subscription.TokensRemainingThisCycle,
		&a.Subscription.FreeCreativesUsed, &a.Subscription.NextBillingDate, &a.Subscription.PendingPlanChange)
	if err != nil {
		return nil, err
	}
	a.Wallet.UserId = a.UserId
	a.Subscription.UserId = a.UserId
	return &a, nil
}

// GetAccount returns the subscription and current wallet generation with its
// transactions in insertion order
func (s *Service) GetAccount(ctx context.Context, userId string) (*models.Account, error) {
	zap.L().Debug("Querying account", zap.String("user_id", userId))

	account, err := scanAccount(s.db.QueryRowContext(ctx, queryGetAccount, userId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrAccountNotFound, userId)
		}
		zap.L().Error("Failed to query account", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query account: %w", err)
	}

	account.Wallet.Transactions, err = s.getWalletTransactions(ctx, account.Wallet.Id)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccounts returns every account without transaction history
func (s *Service) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, queryListAccounts)
	if err != nil {
		zap.L().Error("Failed to query accounts", zap.Error(err))
		return nil, fmt.Errorf("unable to query accounts: %w", err)
	}
	defer closeRows(rows)

	accounts := []models.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan account row: %w", err)
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during account row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	zap.L().Debug("Retrieved accounts", zap.Int("count", len(accounts)))
	return accounts, nil
}

// SaveAccount atomically writes the account state, appends the transactions with
// their journal entries and records an optional campaign order
func (s *Service) SaveAccount(ctx context.Context, params store.SaveAccountParams) error {
	if params.Account == nil {
		return fmt.Errorf("account cannot be nil")
	}
	account := params.Account
	wallet := account.Wallet
	sub := account.Subscription

	zap.L().Debug("Saving account",
		zap.String("user_id", account.UserId),
		zap.String("wallet_id", wallet.Id),
		zap.Int64("expected_version", params.ExpectedVersion),
		zap.Bool("new_wallet", params.NewWallet),
		zap.Int("transactions", len(params.Transactions)))

	// Start database transaction for atomicity
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range params.Transactions {
		var existingId string
		err := tx.QueryRowContext(ctx, queryCheckDuplicateTransaction, t.Id).Scan(&existingId)
		if err == nil {
			zap.L().Warn("Duplicate transaction Id detected, skipping", zap.String("transaction_id", t.Id))
			return fmt.Errorf("%w: transaction %s already exists", store.ErrDuplicateTransaction, t.Id)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check for duplicate transaction: %w", err)
		}
	}

	var currentWalletId string
	var currentTotal, version int64
	err = tx.QueryRowContext(ctx, queryGetWalletVersion, account.UserId).Scan(&currentWalletId, &currentTotal, &version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if params.ExpectedVersion != 0 {
			return fmt.Errorf("account %s does not exist - %w", account.UserId, store.ErrConcurrentModification)
		}
		_, err = tx.ExecContext(ctx, queryInsertWallet, account.UserId, wallet.Id,
			wallet.TotalTokens, wallet.MediaTokens, wallet.CreativeTokens, wallet.LastUpdated)
		if err != nil {
			return fmt.Errorf("failed to create wallet: %w", err)
		}

	case err != nil:
		return fmt.Errorf("failed to get current wallet: %w", err)

	default:
		if params.ExpectedVersion == 0 {
			return fmt.Errorf("account %s already exists - %w", account.UserId, store.ErrConcurrentModification)
		}

		// Update wallet (with optimistic locking)
		result, err := tx.ExecContext(ctx, queryUpdateWallet, wallet.Id,
			wallet.TotalTokens, wallet.MediaTokens, wallet.CreativeTokens, wallet.LastUpdated,
			account.UserId, params.ExpectedVersion)
		if err != nil {
			return fmt.Errorf("failed to update wallet: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("wallet update failed - %w", store.ErrConcurrentModification)
		}

		if params.NewWallet && currentWalletId != wallet.Id && currentTotal > 0 {
			zap.L().Info("Forfeiting balance of replaced wallet",
				zap.String("user_id", account.UserId),
				zap.String("wallet_id", currentWalletId),
				zap.Int64("tokens", currentTotal))
			if err := addJournalEntries(ctx, tx, "forfeit-"+currentWalletId, forfeitEntries(account.UserId, currentTotal)); err != nil {
				return fmt.Errorf("failed to add forfeit journal entries: %w", err)
			}
		}
	}

	_, err = tx.ExecContext(ctx, queryUpsertSubscription, account.UserId, sub.PlanId, string(sub.Status),
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.TokensUsedThisCycle, sub.TokensRemainingThisCycle,
		sub.FreeCreativesUsed, sub.NextBillingDate, sub.PendingPlanChange)
	if err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}

	for _, t := range params.Transactions {
		if err := insertTransaction(ctx, tx, wallet.Id, account.UserId, t); err != nil {
			return err
		}
	}

	if params.Order != nil {
		if err := insertOrder(ctx, tx, params.Order); err != nil {
			return err
		}
	}

	// Commit transaction
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	account.Version = params.ExpectedVersion + 1

	zap.L().Info("Account saved successfully",
		zap.String("user_id", account.UserId),
		zap.String("wallet_id", wallet.Id),
		zap.Int64("total_tokens", wallet.TotalTokens),
		zap.Int64("version", account.Version))
	return nil
}
