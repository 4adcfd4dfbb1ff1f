package accounting

import (
	"context"
	"testing"
	"time"

	"ad-token-ledger/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenewDue(t *testing.T) {
	svc, st, clock := newTestService(t)
	ctx := context.Background()
	subscribed(t, svc, "user1", "growth")
	launchCampaign(t, svc, "user1", "camp-1")

	renewed, err := svc.RenewDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, renewed)

	clock.Advance(DefaultBillingCycle)
	renewed, err = svc.RenewDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, renewed)

	acct, err := svc.GetAccount(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), acct.Subscription.CurrentPeriodStart)
	assert.Equal(t, clock.Now().Add(DefaultBillingCycle), acct.Subscription.NextBillingDate)
	assert.Zero(t, acct.Subscription.TokensUsedThisCycle)
	assert.Zero(t, acct.Subscription.FreeCreativesUsed)
	assert.Equal(t, int64(27500), acct.Wallet.TotalTokens)
	assert.Len(t, acct.Wallet.Transactions, 1)
	assertReconciles(t, svc, st, "user1")

	renewed, err = svc.RenewDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, renewed)
}

func TestRenewDue_AppliesPendingPlanChange(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	subscribed(t, svc, "user1", "starter")

	acct, err := svc.SchedulePlanChange(ctx, "user1", "pro")
	require.NoError(t, err)
	assert.Equal(t, "pro", acct.Subscription.PendingPlanChange)
	assert.Equal(t, "starter", acct.Subscription.PlanId)

	clock.Advance(DefaultBillingCycle + time.Minute)
	renewed, err := svc.RenewDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, renewed)

	acct, err = svc.GetAccount(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, "pro", acct.Subscription.PlanId)
	assert.Empty(t, acct.Subscription.PendingPlanChange)
	assert.Equal(t, int64(50000), acct.Wallet.TotalTokens)
}

func TestRenewDue_SkipsCancelled(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	subscribed(t, svc, "user1", "starter")
	subscribed(t, svc, "user2", "growth")

	acct, err := svc.CancelSubscription(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionCancelled, acct.Subscription.Status)
	assert.Equal(t, int64(15000), acct.Wallet.TotalTokens)

	_, err = svc.SchedulePlanChange(ctx, "user1", "pro")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	clock.Advance(DefaultBillingCycle)
	renewed, err := svc.RenewDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, renewed)

	acct, err = svc.GetAccount(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionCancelled, acct.Subscription.Status)
	assert.Equal(t, t0, acct.Subscription.CurrentPeriodStart)
}

func TestSchedulePlanChange_Errors(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SchedulePlanChange(ctx, "user1", "growth")
	assert.ErrorIs(t, err, ErrNoSubscription)

	subscribed(t, svc, "user1", "starter")
	_, err = svc.SchedulePlanChange(ctx, "user1", "platinum")
	assert.ErrorIs(t, err, ErrPlanNotFound)

	acct, err := svc.SchedulePlanChange(ctx, "user1", "starter")
	require.NoError(t, err)
	assert.Empty(t, acct.Subscription.PendingPlanChange)
}

func TestWithBillingCycle(t *testing.T) {
	svc, _, _ := newTestService(t, WithBillingCycle(7*24*time.Hour))

	acct := subscribed(t, svc, "user1", "starter")
	assert.Equal(t, t0.Add(7*24*time.Hour), acct.Subscription.CurrentPeriodEnd)
}
