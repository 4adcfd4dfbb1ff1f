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
	"fmt"

	"ad-token-ledger/internal/models"

	"go.uber.org/zap"
)

// UpdateOrderStatus moves a campaign order along
// pending -> processing -> active -> completed, or to failed from any
// non-terminal status. Fulfillment data, when given, replaces the stored report.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderId string, status models.OrderStatus, fulfillment *models.FulfillmentData) (*models.CampaignOrder, error) {
	order, err := s.store.GetOrder(ctx, orderId)
	if err != nil {
		zap.L().Error("Order update failed", zap.String("order_id", orderId), zap.Error(err))
		return nil, err
	}

	unlock := s.locks.Lock(order.UserId)
	defer unlock()

	// re-read under the user lock
	order, err = s.store.GetOrder(ctx, orderId)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(status) {
		err := fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, status)
		zap.L().Warn("Order update rejected", zap.String("order_id", orderId), zap.Error(err))
		return nil, err
	}

	previous := order.Status
	order.Status = status
	order.UpdatedAt = s.now()
	if fulfillment != nil {
		f := *fulfillment
		order.Fulfillment = &f
	}

	if err := s.store.UpdateOrder(ctx, order); err != nil {
		zap.L().Error("Order update failed", zap.String("order_id", orderId), zap.Error(err))
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	zap.L().Info("Campaign order status changed",
		zap.String("order_id", orderId),
		zap.String("campaign_id", order.CampaignId),
		zap.String("from", string(previous)),
		zap.String("to", string(status)))
	return order.Clone(), nil
}
