package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/amirphl/cleaning-orders/app/dto"
	"github.com/amirphl/cleaning-orders/app/services"
	"github.com/amirphl/cleaning-orders/config"
	"github.com/amirphl/cleaning-orders/models"
	"github.com/amirphl/cleaning-orders/repository"
	testingutil "github.com/amirphl/cleaning-orders/testing"
	"github.com/amirphl/cleaning-orders/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestAdminOrderFlow(tdb *testingutil.TestDB, notifier services.Notifier, cfg config.OrdersConfig) *AdminOrderFlowImpl {
	if cfg.BusinessTimezone == "" {
		cfg.BusinessTimezone = "Europe/Warsaw"
	}
	flow := NewAdminOrderFlow(
		repository.NewOrderRepository(tdb.DB),
		repository.NewOrderStatusChangeRepository(tdb.DB),
		notifier,
		tdb.DB,
		cfg,
	).(*AdminOrderFlowImpl)
	flow.now = func() time.Time { return warsawNow }
	return flow
}

func TestParseFinalPrice(t *testing.T) {
	tests := []struct {
		in   string
		want *int64
	}{
		{"450", utils.ToPtr(int64(450))},
		{" 450.50 ", utils.ToPtr(int64(451))},
		{"450,49", utils.ToPtr(int64(450))},
		{"0", utils.ToPtr(int64(0))},
		{"", nil},
		{"abc", nil},
		{"-10", nil},
		{"9223372036854775807", utils.ToPtr(int64(math.MaxInt64))},
		{"9223372036854775808", nil},
		{"9223372036854775807.6", nil},
		{"99999999999999999999", nil},
		{"1e30", nil},
		{"2.5e2", utils.ToPtr(int64(250))},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFinalPrice(tt.in))
		})
	}
}

func TestAdminOrderFlow_UpdateStatus(t *testing.T) {
	tdb, fx := setupFlowDB(t)
	ctx := context.Background()
	flow := newTestAdminOrderFlow(tdb, nil, config.OrdersConfig{})

	created := time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)
	order, err := fx.CreateTestOrder(testingutil.WithCreatedAt(created))
	require.NoError(t, err)
	admin, err := fx.CreateTestAdmin("anna.admin", true)
	require.NoError(t, err)

	t.Run("completed bumps updated_at and records history", func(t *testing.T) {
		view, err := flow.UpdateStatus(ctx, order.UUID.String(), "completed", utils.ToPtr(" klient zadowolony "), admin.ID)
		require.NoError(t, err)
		assert.Equal(t, string(models.OrderStatusCompleted), view.Status)
		require.NotNil(t, view.AdminNotes)
		assert.Equal(t, "klient zadowolony", *view.AdminNotes)

		updatedAt, err := time.Parse(time.RFC3339, view.UpdatedAt)
		require.NoError(t, err)
		assert.True(t, updatedAt.After(created))
		assert.Equal(t, view.CreatedAt, created.Format(time.RFC3339))

		history, err := flow.StatusHistory(ctx, order.UUID.String())
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, string(models.OrderStatusReceived), history[0].FromStatus)
		assert.Equal(t, string(models.OrderStatusCompleted), history[0].ToStatus)
		require.NotNil(t, history[0].AdminID)
		assert.Equal(t, admin.ID, *history[0].AdminID)
	})

	t.Run("polish alias and backwards move are allowed by default", func(t *testing.T) {
		view, err := flow.UpdateStatus(ctx, order.UUID.String(), "w_trakcie", nil, admin.ID)
		require.NoError(t, err)
		assert.Equal(t, string(models.OrderStatusInProgress), view.Status)
		require.NotNil(t, view.AdminNotes, "notes are kept when not sent")
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := flow.UpdateStatus(ctx, order.UUID.String(), "cancelled", nil, admin.ID)
		assert.True(t, IsInvalidStatus(err))
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := flow.UpdateStatus(ctx, uuid.NewString(), "completed", nil, admin.ID)
		assert.True(t, IsOrderNotFound(err))
	})
}

func TestAdminOrderFlow_StrictTransitions(t *testing.T) {
	tdb, fx := setupFlowDB(t)
	ctx := context.Background()
	flow := newTestAdminOrderFlow(tdb, nil, config.OrdersConfig{StrictStatusTransitions: true})

	order, err := fx.CreateTestOrder(testingutil.WithStatus(models.OrderStatusCompleted))
	require.NoError(t, err)

	_, err = flow.UpdateStatus(ctx, order.UUID.String(), "received", nil, 0)
	assert.True(t, IsStatusTransitionNotAllowed(err))

	history, err := flow.StatusHistory(ctx, order.UUID.String())
	require.NoError(t, err)
	assert.Empty(t, history, "rejected writes leave no history")

	view, err := flow.UpdateStatus(ctx, order.UUID.String(), "completed", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderStatusCompleted), view.Status)
}

func TestAdminOrderFlow_UpdateOrder(t *testing.T) {
	tdb, fx := setupFlowDB(t)
	ctx := context.Background()
	flow := newTestAdminOrderFlow(tdb, nil, config.OrdersConfig{})

	order, err := fx.CreateTestOrder()
	require.NoError(t, err)

	view, err := flow.UpdateOrder(ctx, order.UUID.String(), &dto.AdminUpdateOrderRequest{
		AdminNotes: utils.ToPtr("oddzwonić"),
		FinalPrice: utils.ToPtr(dto.PriceInput("310,00")),
	}, 0)
	require.NoError(t, err)
	require.NotNil(t, view.FinalPrice)
	assert.Equal(t, int64(310), *view.FinalPrice)
	assert.Equal(t, string(models.OrderStatusReceived), view.Status)

	history, err := flow.StatusHistory(ctx, order.UUID.String())
	require.NoError(t, err)
	assert.Empty(t, history)

	t.Run("empty notes and bad price clear the columns", func(t *testing.T) {
		view, err := flow.UpdateOrder(ctx, order.UUID.String(), &dto.AdminUpdateOrderRequest{
			AdminNotes: utils.ToPtr(""),
			FinalPrice: utils.ToPtr(dto.PriceInput("dużo")),
		}, 0)
		require.NoError(t, err)
		assert.Nil(t, view.AdminNotes)
		assert.Nil(t, view.FinalPrice)
	})

	t.Run("set final price", func(t *testing.T) {
		view, err := flow.SetFinalPrice(ctx, order.UUID.String(), "275.5")
		require.NoError(t, err)
		require.NotNil(t, view.FinalPrice)
		assert.Equal(t, int64(276), *view.FinalPrice)
	})
}

func TestAdminOrderFlow_SendQuote(t *testing.T) {
	tdb, fx := setupFlowDB(t)
	ctx := context.Background()

	order, err := fx.CreateTestOrder()
	require.NoError(t, err)
	repo := repository.NewOrderRepository(tdb.DB)

	t.Run("unknown order has no side effects", func(t *testing.T) {
		notifier := &fakeNotifier{}
		flow := newTestAdminOrderFlow(tdb, notifier, config.OrdersConfig{})
		_, err := flow.SendQuote(ctx, uuid.NewString())
		assert.True(t, IsOrderNotFound(err))
		assert.Empty(t, notifier.quotes)
	})

	t.Run("notifier failure leaves the order unchanged", func(t *testing.T) {
		notifier := &fakeNotifier{err: errors.New("ses throttled")}
		flow := newTestAdminOrderFlow(tdb, notifier, config.OrdersConfig{})
		_, err := flow.SendQuote(ctx, order.UUID.String())
		assert.True(t, IsNotifierFailed(err))
		assert.Equal(t, "NOTIFIER_FAILED", ErrorCode(err))

		stored, err := repo.ByUUID(ctx, order.UUID.String())
		require.NoError(t, err)
		assert.Nil(t, stored.QuoteSentAt)
		assert.WithinDuration(t, order.UpdatedAt, stored.UpdatedAt, time.Millisecond)
	})

	t.Run("success stamps quote_sent_at", func(t *testing.T) {
		notifier := &fakeNotifier{}
		flow := newTestAdminOrderFlow(tdb, notifier, config.OrdersConfig{})
		resp, err := flow.SendQuote(ctx, order.UUID.String())
		require.NoError(t, err)
		assert.Equal(t, order.TrackingCode, resp.TrackingCode)
		assert.Equal(t, []string{order.TrackingCode}, notifier.quotes)

		stored, err := repo.ByUUID(ctx, order.UUID.String())
		require.NoError(t, err)
		require.NotNil(t, stored.QuoteSentAt)
		assert.WithinDuration(t, warsawNow, *stored.QuoteSentAt, time.Millisecond)
	})
}

func TestAdminOrderFlow_ListAndExport(t *testing.T) {
	tdb, fx := setupFlowDB(t)
	ctx := context.Background()
	flow := newTestAdminOrderFlow(tdb, nil, config.OrdersConfig{})

	older, err := fx.CreateTestOrder(testingutil.WithCreatedAt(time.Date(2026, time.February, 1, 8, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	newer, err := fx.CreateTestOrder(
		testingutil.WithCustomer("Ewa", "Zielinska", "ewa@example.com", "+48 500 600 700"),
		testingutil.WithStatus(models.OrderStatusCompleted),
		testingutil.WithCreatedAt(time.Date(2026, time.February, 2, 23, 30, 0, 0, time.UTC)),
	)
	require.NoError(t, err)

	t.Run("newest first", func(t *testing.T) {
		resp, err := flow.ListOrders(ctx, &dto.AdminListOrdersRequest{Status: "all"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.Total)
		require.Len(t, resp.Orders, 2)
		assert.Equal(t, newer.TrackingCode, resp.Orders[0].TrackingCode)
		assert.Equal(t, older.TrackingCode, resp.Orders[1].TrackingCode)
		assert.Equal(t, utils.DefaultOrderPageSize, resp.Pagination.Limit)
	})

	t.Run("status filter", func(t *testing.T) {
		resp, err := flow.ListOrders(ctx, &dto.AdminListOrdersRequest{Status: "zakończone"})
		require.NoError(t, err)
		require.Len(t, resp.Orders, 1)
		assert.Equal(t, newer.TrackingCode, resp.Orders[0].TrackingCode)

		_, err = flow.ListOrders(ctx, &dto.AdminListOrdersRequest{Status: "lost"})
		assert.True(t, IsInvalidStatus(err))
	})

	t.Run("search is case insensitive across columns", func(t *testing.T) {
		for _, term := range []string{"ZIELINSKA", "ewa@", "500 600", "34-300"} {
			resp, err := flow.ListOrders(ctx, &dto.AdminListOrdersRequest{Search: term})
			require.NoError(t, err)
			assert.NotZero(t, resp.Total, term)
		}
		resp, err := flow.ListOrders(ctx, &dto.AdminListOrdersRequest{Search: "kowal"})
		require.NoError(t, err)
		require.Len(t, resp.Orders, 1)
		assert.Equal(t, older.TrackingCode, resp.Orders[0].TrackingCode)
	})

	t.Run("page bounds", func(t *testing.T) {
		resp, err := flow.ListOrders(ctx, &dto.AdminListOrdersRequest{Limit: 10000, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, utils.MaxOrderPageSize, resp.Pagination.Limit)
		require.Len(t, resp.Orders, 1)
		assert.Equal(t, int64(2), resp.Total)
	})

	t.Run("csv", func(t *testing.T) {
		name, data, err := flow.ExportCSV(ctx, &dto.AdminListOrdersRequest{Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, "zlecenia_2026-03-11.csv", name)

		records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3, "export ignores the page size")
		assert.Equal(t, exportHeader, records[0])
		assert.Len(t, records[1], 11)
		assert.Equal(t, newer.TrackingCode, records[1][0])
		assert.Equal(t, "Zielinska", records[1][2])
		assert.Equal(t, "basic", records[1][6])
		assert.Equal(t, "45", records[1][7])
		assert.Equal(t, "completed", records[1][9])
		// 23:30 UTC is already the next day in Warsaw
		assert.Equal(t, "03.02.2026", records[1][10])
	})

	t.Run("xlsx", func(t *testing.T) {
		name, data, err := flow.ExportExcel(ctx, &dto.AdminListOrdersRequest{Status: "received"})
		require.NoError(t, err)
		assert.Equal(t, "zlecenia_2026-03-11.xlsx", name)

		xl, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer xl.Close()
		rows, err := xl.GetRows("Zlecenia")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, exportHeader, rows[0])
		assert.Equal(t, older.TrackingCode, rows[1][0])
	})
}
