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
	"errors"
	"fmt"

	"ad-token-ledger/internal/models"
	"ad-token-ledger/internal/store"

	"go.uber.org/zap"
)

func encodeFulfillment(f *models.FulfillmentData) (sql.NullString, error) {
	if f == nil {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode fulfillment: %w", err)
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func insertOrder(ctx context.Context, tx *sql.Tx, order *models.CampaignOrder) error {
	calculation, err := json.Marshal(order.TokensSpent)
	if err != nil {
		return fmt.Errorf("failed to encode calculation: %w", err)
	}
	fulfillment, err := encodeFulfillment(order.Fulfillment)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, queryInsertOrder, order.Id, order.UserId, order.CampaignId,
		string(calculation), string(order.Status), fulfillment, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert campaign order: %w", err)
	}
	return nil
}

func scanOrder(row rowScanner) (*models.CampaignOrder, error) {
	var o models.CampaignOrder
	var calculation string
	var fulfillment sql.NullString
	err := row.Scan(&o.Id, &o.UserId, &o.CampaignId, &calculation, &o.Status, &fulfillment, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(calculation), &o.TokensSpent); err != nil {
		return nil, fmt.Errorf("failed to parse calculation of order %s: %w", o.Id, err)
	}
	if fulfillment.Valid && fulfillment.String != "" {
		o.Fulfillment = &models.FulfillmentData{}
		if err := json.Unmarshal([]byte(fulfillment.String), o.Fulfillment); err != nil {
			return nil, fmt.Errorf("failed to parse fulfillment of order %s: %w", o.Id, err)
		}
	}
	return &o, nil
}

func (s *Service) GetOrder(ctx context.Context, orderId string) (*models.CampaignOrder, error) {
	order, err := scanOrder(s.db.QueryRowContext(ctx, queryGetOrder, orderId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrOrderNotFound, orderId)
		}
		zap.L().Error("Failed to query campaign order", zap.String("order_id", orderId), zap.Error(err))
		return nil, fmt.Errorf("unable to query campaign order: %w", err)
	}
	return order, nil
}

// ListOrders returns a user's campaign orders, newest first
func (s *Service) ListOrders(ctx context.Context, userId string) ([]models.CampaignOrder, error) {
	rows, err := s.db.QueryContext(ctx, queryListOrders, userId)
	if err != nil {
		zap.L().Error("Failed to query campaign orders", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query campaign orders: %w", err)
	}
	defer closeRows(rows)

	orders := []models.CampaignOrder{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan campaign order row: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during campaign order row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating campaign order rows: %w", err)
	}
	return orders, nil
}

func (s *Service) UpdateOrder(ctx context.Context, order *models.CampaignOrder) error {
	if order == nil {
		return fmt.Errorf("order cannot be nil")
	}
	fulfillment, err := encodeFulfillment(order.Fulfillment)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, queryUpdateOrder, string(order.Status), fulfillment, order.UpdatedAt, order.Id)
	if err != nil {
		return fmt.Errorf("failed to update campaign order: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", store.ErrOrderNotFound, order.Id)
	}

	zap.L().Info("Campaign order updated",
		zap.String("order_id", order.Id),
		zap.String("status", string(order.Status)))
	return nil
}
