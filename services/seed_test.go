package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sipstation/bubble-tea-pos-api/models"
	"github.com/sipstation/bubble-tea-pos-api/testutil"
)

func TestSeed_FillsEmptyTables(t *testing.T) {
	db := testutil.NewTestDB(t, false)
	opts := SeedOptions{InitialManager: "Owner@SipStation.com", SampleMenu: true}

	require.NoError(t, Seed(context.Background(), db, opts, zaptest.NewLogger(t)))

	assert.Equal(t, int64(len(DefaultIngredients())), testutil.CountRows(t, db, &models.InventoryItem{}))
	assert.Equal(t, int64(len(DefaultToppings())), testutil.CountRows(t, db, &models.Topping{}))
	assert.Equal(t, int64(len(SampleMenu())), testutil.CountRows(t, db, &models.MenuItem{}))

	var manager models.Manager
	require.NoError(t, db.First(&manager).Error)
	assert.Equal(t, "owner@sipstation.com", manager.Email)
}

func TestSeed_IsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t, false)
	logger := zaptest.NewLogger(t)
	testutil.CreateIngredient(t, db, IngredientTea, "5", "1")

	require.NoError(t, Seed(context.Background(), db, SeedOptions{}, logger))
	require.NoError(t, Seed(context.Background(), db, SeedOptions{}, logger))

	assert.Equal(t, int64(1), testutil.CountRows(t, db, &models.InventoryItem{}), "non-empty tables are left alone")
	assert.Equal(t, int64(len(DefaultToppings())), testutil.CountRows(t, db, &models.Topping{}))
	assert.Zero(t, testutil.CountRows(t, db, &models.MenuItem{}))
	assert.Zero(t, testutil.CountRows(t, db, &models.Manager{}))
}

func TestDefaultIngredients_CoverDeductionModel(t *testing.T) {
	names := map[string]bool{}
	for _, row := range DefaultIngredients() {
		names[row.IngredientName] = true
	}
	for _, name := range []string{IngredientTea, IngredientMilk, IngredientSugar, IngredientIce, IngredientCups, IngredientStraw} {
		assert.True(t, names[name], name)
	}
	for _, ingredient := range testOptions().ToppingIngredient {
		assert.True(t, names[ingredient], ingredient)
	}
}
