package ledger

import (
	"testing"
	"time"

	"ad-token-ledger/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCycle(t *testing.T) {
	plan := models.SubscriptionPlan{Id: "growth", TokensIncluded: 27500}
	cycle := 30 * 24 * time.Hour

	s := NewCycle("user1", plan, testNow, cycle)

	assert.Equal(t, "growth", s.PlanId)
	assert.Equal(t, models.SubscriptionActive, s.Status)
	assert.Equal(t, int64(0), s.TokensUsedThisCycle)
	assert.Equal(t, int64(27500), s.TokensRemainingThisCycle)
	assert.Equal(t, int64(0), s.FreeCreativesUsed)
	assert.Equal(t, testNow, s.CurrentPeriodStart)
	assert.Equal(t, testNow.Add(cycle), s.CurrentPeriodEnd)
	assert.Equal(t, s.CurrentPeriodEnd, s.NextBillingDate)
	assert.Empty(t, s.PendingPlanChange)

	assert.False(t, s.IsDue(testNow))
	assert.True(t, s.IsDue(testNow.Add(cycle)))
}

func TestRecordSpend(t *testing.T) {
	s := NewCycle("user1", models.SubscriptionPlan{Id: "starter", TokensIncluded: 15000}, testNow, time.Hour)

	require.NoError(t, RecordSpend(&s, 9500, 10))
	assert.Equal(t, int64(9500), s.TokensUsedThisCycle)
	assert.Equal(t, int64(5500), s.TokensRemainingThisCycle)
	assert.Equal(t, int64(10), s.FreeCreativesUsed)
	assert.Equal(t, int64(0), FreeCreativesRemaining(s))
}

func TestRecordSpend_ClampsRemainingAtZero(t *testing.T) {
	s := NewCycle("user1", models.SubscriptionPlan{Id: "starter", TokensIncluded: 1000}, testNow, time.Hour)

	require.NoError(t, RecordSpend(&s, 1500, 0))
	assert.Equal(t, int64(1500), s.TokensUsedThisCycle)
	assert.Equal(t, int64(0), s.TokensRemainingThisCycle)

	assert.ErrorIs(t, RecordSpend(&s, -1, 0), ErrInvalidArgument)
}

func TestRecordPurchase(t *testing.T) {
	s := NewCycle("user1", models.SubscriptionPlan{Id: "starter", TokensIncluded: 15000}, testNow, time.Hour)
	require.NoError(t, RecordSpend(&s, 5000, 0))

	require.NoError(t, RecordPurchase(&s, 2000))
	assert.Equal(t, int64(12000), s.TokensRemainingThisCycle)
	assert.Equal(t, int64(5000), s.TokensUsedThisCycle)

	assert.ErrorIs(t, RecordPurchase(&s, 0), ErrInvalidArgument)
}
