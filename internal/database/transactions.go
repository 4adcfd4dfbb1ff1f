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
	"encoding/json"
	"fmt"

	"ad-token-ledger/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Journal account types
const (
	accountUserTokens    = "user_tokens"
	accountTokenIssuance = "token_issuance"
	accountCampaignSpend = "campaign_spend"
	accountForfeited     = "forfeited"
)

type journalEntry struct {
	accountType string
	accountId   string
	debit       int64
	credit      int64
}

// journalEntriesFor maps a wallet transaction onto double-entry rows.
// Credits: debit the user's token account, credit token issuance.
// Spends: debit campaign spend, credit the user's token account.
func journalEntriesFor(t models.TokenTransaction) []journalEntry {
	switch {
	case t.Amount > 0:
		return []journalEntry{
			{accountUserTokens, t.UserId, t.Amount, 0},
			{accountTokenIssuance, string(t.Type), 0, t.Amount},
		}
	case t.Amount < 0:
		campaign := t.CampaignId
		if campaign == "" {
			campaign = string(t.Category)
		}
		return []journalEntry{
			{accountCampaignSpend, campaign, -t.Amount, 0},
			{accountUserTokens, t.UserId, 0, -t.Amount},
		}
	}
	return nil
}

// forfeitEntries writes off the balance of a replaced wallet generation
func forfeitEntries(userId string, amount int64) []journalEntry {
	return []journalEntry{
		{accountForfeited, userId, amount, 0},
		{accountUserTokens, userId, 0, amount},
	}
}

func addJournalEntries(ctx context.Context, tx *sql.Tx, transactionId string, entries []journalEntry) error {
	for _, entry := range entries {
		entryId := uuid.New().String()
		_, err := tx.ExecContext(ctx, queryInsertJournalEntry,
			entryId, transactionId, entry.accountType, entry.accountId, entry.debit, entry.credit)
		if err != nil {
			return err
		}
	}
	return nil
}

func insertTransaction(ctx context.Context, tx *sql.Tx, walletId, userId string, t models.TokenTransaction) error {
	t.WalletId = walletId
	t.UserId = userId

	var metadata sql.NullString
	if t.Metadata != nil {
		raw, err := json.Marshal(t.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata for transaction %s: %w", t.Id, err)
		}
		metadata = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := tx.ExecContext(ctx, queryInsertTransaction,
		t.Id, t.WalletId, t.UserId, string(t.Type), string(t.Category), t.Amount, t.BalanceAfter,
		t.Description, t.CampaignId, metadata, t.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	if err := addJournalEntries(ctx, tx, t.Id, journalEntriesFor(t)); err != nil {
		return fmt.Errorf("failed to add journal entries: %w", err)
	}
	return nil
}

func scanTransaction(row rowScanner) (models.TokenTransaction, error) {
	var t models.TokenTransaction
	var metadata sql.NullString
	err := row.Scan(&t.Id, &t.WalletId, &t.UserId, &t.Type, &t.Category, &t.Amount, &t.BalanceAfter,
		&t.Description, &t.CampaignId, &metadata, &t.Timestamp)
	if err != nil {
		return t, fmt.Errorf("failed to scan transaction: %w", err)
	}

	if metadata.Valid && metadata.String != "" {
		t.Metadata = &models.TransactionMetadata{}
		if err := json.Unmarshal([]byte(metadata.String), t.Metadata); err != nil {
			return t, fmt.Errorf("failed to parse metadata of transaction %s: %w", t.Id, err)
		}
	}
	return t, nil
}

func (s *Service) queryTransactions(ctx context.Context, query string, args ...any) ([]models.TokenTransaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	defer closeRows(rows)

	transactions := []models.TokenTransaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		zap.L().Error("Error during transaction row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return transactions, nil
}

func (s *Service) getWalletTransactions(ctx context.Context, walletId string) ([]models.TokenTransaction, error) {
	return s.queryTransactions(ctx, queryGetWalletTransactions, walletId)
}

// GetTransactionHistory returns paginated history of the current wallet, most
// recent first. A non-positive limit returns everything after offset.
func (s *Service) GetTransactionHistory(ctx context.Context, userId string, limit, offset int) ([]models.TokenTransaction, error) {
	zap.L().Debug("Getting transaction history",
		zap.String("user_id", userId),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	return s.queryTransactions(ctx, queryGetTransactionHistory, userId, limit, offset)
}
