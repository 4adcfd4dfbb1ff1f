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

package api

import (
	"context"
	"fmt"

	"ad-token-ledger/internal/models"

	"go.uber.org/zap"
)

// GetOrders returns the user's campaign orders, newest first
func (s *LedgerService) GetOrders(ctx context.Context, userId string) ([]models.CampaignOrder, error) {
	if userId == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	orders, err := s.accounts.ListOrders(ctx, userId)
	if err != nil {
		zap.L().Error("Failed to get campaign orders", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve campaign orders")
	}
	return orders, nil
}
