package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ad-token-ledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	plans := c.List()
	require.Len(t, plans, 4)
	assert.Equal(t, []string{"starter", "growth", "pro", "enterprise"},
		[]string{plans[0].Id, plans[1].Id, plans[2].Id, plans[3].Id})

	growth, err := c.Get("growth")
	require.NoError(t, err)
	assert.Equal(t, int64(27500), growth.TokensIncluded)
	assert.True(t, growth.MonthlyFee.Equal(decimal.NewFromInt(275)))
	assert.True(t, growth.AlaCarteTokenPrice.Equal(decimal.RequireFromString("0.012")))
	assert.True(t, growth.IsPopular)

	enterprise, err := c.Get("enterprise")
	require.NoError(t, err)
	assert.True(t, enterprise.IsCustom())
	assert.False(t, growth.IsCustom())
}

func TestGet_UnknownPlan(t *testing.T) {
	_, err := Default().Get("platinum")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPlanNotFound))
}

func TestGet_ReturnsCopy(t *testing.T) {
	c := Default()

	starter, err := c.Get("starter")
	require.NoError(t, err)
	starter.Features[0] = "changed"
	starter.TokensIncluded = 1

	again, err := c.Get("starter")
	require.NoError(t, err)
	assert.Equal(t, "Perfect for single locations", again.Features[0])
	assert.Equal(t, int64(15000), again.TokensIncluded)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name  string
		plans []models.SubscriptionPlan
	}{
		{"empty", nil},
		{"missing id", []models.SubscriptionPlan{{Name: "x"}}},
		{"missing name", []models.SubscriptionPlan{{Id: "x"}}},
		{"negative tokens", []models.SubscriptionPlan{{Id: "x", Name: "X", TokensIncluded: -1}}},
		{"negative fee", []models.SubscriptionPlan{{Id: "x", Name: "X", MonthlyFee: decimal.NewFromInt(-1)}}},
		{"duplicate", []models.SubscriptionPlan{{Id: "x", Name: "X"}, {Id: "x", Name: "Y"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.plans)
			assert.Error(t, err)
		})
	}
}

const testPlansYAML = `
plans:
  - id: local
    name: Local
    monthly_fee: "99"
    tokens_included: 9900
    cost_per_token: "0.01"
    ala_carte_token_price: "0.02"
    features:
      - One location
  - id: regional
    name: Regional
    monthly_fee: "400"
    tokens_included: 40000
    cost_per_token: "0.01"
    ala_carte_token_price: "0.011"
    is_popular: true
`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testPlansYAML), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, c.List(), 2)

	local, err := c.Get("local")
	require.NoError(t, err)
	assert.Equal(t, int64(9900), local.TokensIncluded)
	assert.True(t, local.AlaCarteTokenPrice.Equal(decimal.RequireFromString("0.02")))
	assert.Equal(t, []string{"One location"}, local.Features)

	regional, err := c.Get("regional")
	require.NoError(t, err)
	assert.True(t, regional.IsPopular)

	_, err = c.Get("growth")
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestLoadFile_EmptyPathUsesDefaults(t *testing.T) {
	c, err := LoadFile("")
	require.NoError(t, err)
	assert.Len(t, c.List(), 4)
}

func TestParsePlans_InvalidAmount(t *testing.T) {
	_, err := ParsePlans([]byte("plans:\n  - id: x\n    name: X\n    monthly_fee: \"abc\"\n"))
	assert.Error(t, err)
}
