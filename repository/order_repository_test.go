package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirphl/cleaning-orders/models"
	"github.com/amirphl/cleaning-orders/pricing"
	testingutil "github.com/amirphl/cleaning-orders/testing"
	"github.com/amirphl/cleaning-orders/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepoTest(t *testing.T) (*testingutil.TestDB, *testingutil.TestFixtures) {
	t.Helper()
	tdb, err := testingutil.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = tdb.TeardownTestDB() })
	return tdb, testingutil.NewTestFixtures(tdb)
}

func TestOrderRepository_Lookups(t *testing.T) {
	tdb, fx := setupRepoTest(t)
	repo := NewOrderRepository(tdb.DB)
	ctx := context.Background()

	q, err := pricing.NewCalculator(pricing.DefaultTable()).Quote(
		pricing.ServiceResidentialWeekly, 45, []pricing.AddOnRequest{{ID: "windows_1", Quantity: 2}})
	require.NoError(t, err)

	order, err := fx.CreateTestOrder(testingutil.WithQuote(q))
	require.NoError(t, err)

	t.Run("by tracking code", func(t *testing.T) {
		got, err := repo.ByTrackingCode(ctx, order.TrackingCode)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, order.ID, got.ID)
		require.NotNil(t, got.EstimatedPrice)
		assert.Equal(t, int64(317), *got.EstimatedPrice)

		stored := got.Quote()
		require.NotNil(t, stored)
		assert.Equal(t, pricing.Amount(317), stored.Total)
		require.Len(t, got.AdditionalServices, 1)
		assert.Equal(t, "windows_1", got.AdditionalServices[0].ID)
		assert.Equal(t, int64(78), got.AdditionalServices[0].Contribution)
	})

	t.Run("by uuid", func(t *testing.T) {
		got, err := repo.ByUUID(ctx, order.UUID.String())
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, order.TrackingCode, got.TrackingCode)
	})

	t.Run("misses return nil", func(t *testing.T) {
		got, err := repo.ByTrackingCode(ctx, "NOPE00000000")
		assert.NoError(t, err)
		assert.Nil(t, got)

		got, err = repo.ByUUID(ctx, "not-a-uuid")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestOrderRepository_Search(t *testing.T) {
	tdb, fx := setupRepoTest(t)
	repo := NewOrderRepository(tdb.DB)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err := fx.CreateTestOrder(testingutil.WithCustomer("Anna", "Nowak", "anna@example.com", "+48 600 100 200"), testingutil.WithCreatedAt(base))
	require.NoError(t, err)
	_, err = fx.CreateTestOrder(testingutil.WithCustomer("Piotr", "Wiśniewski", "piotr@firma.pl", "+48 600 300 400"),
		testingutil.WithCreatedAt(base.Add(time.Hour)), testingutil.WithStatus(models.OrderStatusInProgress))
	require.NoError(t, err)
	_, err = fx.CreateTestOrder(testingutil.WithCustomer("Ewa", "100%_Czysta", "ewa@example.com", "+48 600 500 600"),
		testingutil.WithCreatedAt(base.Add(2*time.Hour)))
	require.NoError(t, err)
	_, err = fx.CreateTestOrder(testingutil.WithCustomer("Łukasz", "Żak", "lukasz@example.pl", "+48 600 700 800"),
		testingutil.WithCreatedAt(base.Add(3*time.Hour)))
	require.NoError(t, err)

	tests := []struct {
		name     string
		filter   models.OrderFilter
		expected []string
	}{
		{"all newest first", models.OrderFilter{}, []string{"Łukasz", "Ewa", "Piotr", "Anna"}},
		{"case insensitive name", models.OrderFilter{Search: utils.ToPtr("NOWAK")}, []string{"Anna"}},
		{"email domain", models.OrderFilter{Search: utils.ToPtr("firma")}, []string{"Piotr"}},
		{"phone fragment", models.OrderFilter{Search: utils.ToPtr("500 600")}, []string{"Ewa"}},
		{"postal code matches every order", models.OrderFilter{Search: utils.ToPtr("34-300")}, []string{"Łukasz", "Ewa", "Piotr", "Anna"}},
		{"diacritic exact spelling", models.OrderFilter{Search: utils.ToPtr("Łukasz")}, []string{"Łukasz"}},
		{"diacritic lower case", models.OrderFilter{Search: utils.ToPtr("łukasz")}, []string{"Łukasz"}},
		{"diacritic upper case", models.OrderFilter{Search: utils.ToPtr("ŻAK")}, []string{"Łukasz"}},
		{"diacritic folded surname", models.OrderFilter{Search: utils.ToPtr("żak")}, []string{"Łukasz"}},
		{"diacritic inside word", models.OrderFilter{Search: utils.ToPtr("WIŚNIEW")}, []string{"Piotr"}},
		{"wildcards are literal", models.OrderFilter{Search: utils.ToPtr("%_")}, []string{"Ewa"}},
		{"status", models.OrderFilter{Status: utils.ToPtr(models.OrderStatusInProgress)}, []string{"Piotr"}},
		{
			"status and search",
			models.OrderFilter{Status: utils.ToPtr(models.OrderStatusReceived), Search: utils.ToPtr("example.com")},
			[]string{"Ewa", "Anna"},
		},
		{"no match", models.OrderFilter{Search: utils.ToPtr("zzz")}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, err := repo.ByFilter(ctx, tt.filter, "created_at DESC", 0, 0)
			require.NoError(t, err)

			names := make([]string, 0, len(orders))
			for _, o := range orders {
				names = append(names, o.FirstName)
			}
			assert.Equal(t, tt.expected, names)

			count, err := repo.Count(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.expected)), count)
		})
	}

	t.Run("pagination", func(t *testing.T) {
		orders, err := repo.ByFilter(ctx, models.OrderFilter{}, "created_at DESC", 1, 2)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "Piotr", orders[0].FirstName)
	})
}

func TestOrderRepository_UpdateAndTransaction(t *testing.T) {
	tdb, fx := setupRepoTest(t)
	repo := NewOrderRepository(tdb.DB)
	history := NewOrderStatusChangeRepository(tdb.DB)
	ctx := context.Background()

	order, err := fx.CreateTestOrder()
	require.NoError(t, err)

	t.Run("partial update", func(t *testing.T) {
		later := order.UpdatedAt.Add(time.Minute)
		err := repo.Update(ctx, order.ID, map[string]any{
			"status":      models.OrderStatusInProgress,
			"admin_notes": "klucze u sąsiada",
			"updated_at":  later,
		})
		require.NoError(t, err)

		got, err := repo.ByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusInProgress, got.Status)
		require.NotNil(t, got.AdminNotes)
		assert.Equal(t, "klucze u sąsiada", *got.AdminNotes)
		assert.True(t, got.UpdatedAt.After(order.UpdatedAt))
		assert.Equal(t, order.TrackingCode, got.TrackingCode)
	})

	t.Run("missing row", func(t *testing.T) {
		err := repo.Update(ctx, order.ID+1000, map[string]any{"status": models.OrderStatusCompleted})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("rollback keeps order and history consistent", func(t *testing.T) {
		boom := errors.New("boom")
		err := WithTransaction(ctx, tdb.DB, func(txCtx context.Context) error {
			if err := repo.Update(txCtx, order.ID, map[string]any{"status": models.OrderStatusCompleted}); err != nil {
				return err
			}
			if err := history.Save(txCtx, &models.OrderStatusChange{
				OrderID:    order.ID,
				FromStatus: models.OrderStatusInProgress,
				ToStatus:   models.OrderStatusCompleted,
			}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := repo.ByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusInProgress, got.Status)

		changes, err := history.ByOrderID(ctx, order.ID)
		require.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("commit writes history", func(t *testing.T) {
		err := WithTransaction(ctx, tdb.DB, func(txCtx context.Context) error {
			if err := repo.Update(txCtx, order.ID, map[string]any{"status": models.OrderStatusCompleted}); err != nil {
				return err
			}
			return history.Save(txCtx, &models.OrderStatusChange{
				OrderID:    order.ID,
				FromStatus: models.OrderStatusInProgress,
				ToStatus:   models.OrderStatusCompleted,
			})
		})
		require.NoError(t, err)

		changes, err := history.ByOrderID(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.Equal(t, models.OrderStatusCompleted, changes[0].ToStatus)
	})
}

func TestAdminRepository_ByUsername(t *testing.T) {
	tdb, fx := setupRepoTest(t)
	repo := NewAdminRepository(tdb.DB)
	ctx := context.Background()

	admin, err := fx.CreateTestAdmin("wlasciciel", true)
	require.NoError(t, err)

	got, err := repo.ByUsername(ctx, "wlasciciel")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, admin.UUID, got.UUID)

	got, err = repo.ByUsername(ctx, "ghost")
	assert.NoError(t, err)
	assert.Nil(t, got)
}
