package businessflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/amirphl/cleaning-orders/app/dto"
	"github.com/amirphl/cleaning-orders/app/services"
	"github.com/amirphl/cleaning-orders/config"
	"github.com/amirphl/cleaning-orders/models"
	"github.com/amirphl/cleaning-orders/pricing"
	"github.com/amirphl/cleaning-orders/repository"
	testingutil "github.com/amirphl/cleaning-orders/testing"
	"github.com/amirphl/cleaning-orders/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNotifier records calls and fails with err when set
type fakeNotifier struct {
	mu       sync.Mutex
	err      error
	received []string
	quotes   []string
	contacts []services.ContactMessage
}

func (n *fakeNotifier) SendOrderReceived(_ context.Context, order *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.received = append(n.received, order.TrackingCode)
	return n.err
}

func (n *fakeNotifier) SendQuoteDocument(_ context.Context, order *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.quotes = append(n.quotes, order.TrackingCode)
	return n.err
}

func (n *fakeNotifier) SendContactMessage(_ context.Context, msg services.ContactMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.contacts = append(n.contacts, msg)
	return n.err
}

func setupFlowDB(t *testing.T) (*testingutil.TestDB, *testingutil.TestFixtures) {
	t.Helper()
	tdb, err := testingutil.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = tdb.TeardownTestDB() })
	return tdb, testingutil.NewTestFixtures(tdb)
}

func newTestOrderFlow(t *testing.T, tdb *testingutil.TestDB, notifier services.Notifier, cfg config.OrdersConfig) *OrderFlowImpl {
	t.Helper()
	table := pricing.DefaultTable()
	flow := NewOrderFlow(
		repository.NewOrderRepository(tdb.DB),
		pricing.NewCalculator(table),
		NewOrderValidator(table, nil),
		notifier,
		cfg,
	)
	impl, ok := flow.(*OrderFlowImpl)
	require.True(t, ok)
	return impl
}

func futureSubmission() *dto.SubmitOrderRequest {
	req := validSubmission()
	req.PreferredDate = time.Now().AddDate(0, 0, 7).Format(utils.DateLayout)
	return req
}

func TestGenerateTrackingCode(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		code := GenerateTrackingCode()
		assert.True(t, IsTrackingCodeShape(code), code)
		assert.False(t, seen[code])
		seen[code] = true
	}
	assert.False(t, IsTrackingCodeShape("abc"))
	assert.False(t, IsTrackingCodeShape("abcdef123456"))
	assert.Equal(t, "/track/ABCDEF123456", TrackingPath("ABCDEF123456"))
}

func TestOrderFlow_SubmitAndTrack(t *testing.T) {
	tdb, _ := setupFlowDB(t)
	notifier := &fakeNotifier{}
	flow := newTestOrderFlow(t, tdb, notifier, config.OrdersConfig{})
	ctx := context.Background()

	req := futureSubmission()
	req.CleaningType = "residential_weekly"
	req.Quote = &dto.QuoteSelectionRequest{
		ServiceType: "residential_weekly",
		AddOns:      []dto.AddOnRequestDTO{{ID: "windows_1", Quantity: 2}},
	}

	resp, err := flow.Submit(ctx, req, NewClientMetadata("127.0.0.1", "test"))
	require.NoError(t, err)
	assert.True(t, IsTrackingCodeShape(resp.TrackingCode))
	assert.Equal(t, TrackingPath(resp.TrackingCode), resp.TrackingURL)
	assert.Equal(t, pricing.Amount(317), resp.EstimatedPrice)
	assert.Equal(t, string(models.OrderStatusReceived), resp.Status)

	t.Run("lookup returns the stored order", func(t *testing.T) {
		view, err := flow.LookupByTrackingCode(ctx, " "+resp.TrackingCode+" ")
		require.NoError(t, err)
		assert.Equal(t, resp.TrackingCode, view.TrackingCode)
		assert.Equal(t, "anna@example.com", view.Email)
		assert.Equal(t, string(models.CleaningTypeBasic), view.CleaningType)
		assert.Equal(t, pricing.Amount(317), view.EstimatedPrice)
		require.Len(t, view.AdditionalServices, 1)
		assert.Equal(t, int64(78), view.AdditionalServices[0].Contribution)
		require.NotNil(t, view.ServiceDetails)
		assert.Equal(t, pricing.Amount(239), view.ServiceDetails.BasePrice)
		assert.Equal(t, view.CreatedAt, view.UpdatedAt)
	})

	t.Run("lookup is case insensitive", func(t *testing.T) {
		_, err := flow.LookupByTrackingCode(ctx, strings.ToLower(resp.TrackingCode))
		require.NoError(t, err)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := flow.LookupByTrackingCode(ctx, "ZZZZZZZZZZZZ")
		assert.True(t, IsOrderNotFound(err))
	})

	t.Run("malformed code", func(t *testing.T) {
		_, err := flow.LookupByTrackingCode(ctx, "../../etc")
		assert.True(t, IsOrderNotFound(err))
	})

	assert.Empty(t, notifier.received, "confirmation email is off by default")
}

func TestOrderFlow_CalculatorSelectionDecidesStoredType(t *testing.T) {
	tdb, _ := setupFlowDB(t)
	flow := newTestOrderFlow(t, tdb, nil, config.OrdersConfig{})
	ctx := context.Background()

	req := futureSubmission()
	req.CleaningType = "biurowe"
	req.SquareMeters = "45"
	req.Quote = &dto.QuoteSelectionRequest{ServiceType: "residential_weekly"}

	resp, err := flow.Submit(ctx, req, nil)
	require.NoError(t, err)
	assert.Equal(t, pricing.Amount(239), resp.EstimatedPrice)

	view, err := flow.LookupByTrackingCode(ctx, resp.TrackingCode)
	require.NoError(t, err)
	assert.Equal(t, string(models.CleaningTypeBasic), view.CleaningType)
	require.NotNil(t, view.ServiceDetails)
	assert.Equal(t, "residential_weekly", string(view.ServiceDetails.ServiceType))
}

func TestOrderFlow_SubmitWithoutCalculator(t *testing.T) {
	tdb, _ := setupFlowDB(t)
	flow := newTestOrderFlow(t, tdb, nil, config.OrdersConfig{})
	ctx := context.Background()

	t.Run("office above the last bracket is individual", func(t *testing.T) {
		req := futureSubmission()
		req.CleaningType = "office"
		req.SquareMeters = "120"
		resp, err := flow.Submit(ctx, req, nil)
		require.NoError(t, err)
		assert.True(t, resp.EstimatedPrice.IsIndividual())

		order, err := repository.NewOrderRepository(tdb.DB).ByTrackingCode(ctx, resp.TrackingCode)
		require.NoError(t, err)
		require.NotNil(t, order)
		assert.Nil(t, order.EstimatedPrice)
		assert.Nil(t, order.Quote())
	})

	t.Run("post renovation is individual", func(t *testing.T) {
		req := futureSubmission()
		req.CleaningType = "po_remoncie"
		resp, err := flow.Submit(ctx, req, nil)
		require.NoError(t, err)
		assert.True(t, resp.EstimatedPrice.IsIndividual())
	})

	t.Run("basic uses the one-time table", func(t *testing.T) {
		req := futureSubmission()
		req.SquareMeters = "45"
		resp, err := flow.Submit(ctx, req, nil)
		require.NoError(t, err)
		assert.Equal(t, pricing.Amount(269), resp.EstimatedPrice)
	})

	t.Run("validation failure stores nothing", func(t *testing.T) {
		repo := repository.NewOrderRepository(tdb.DB)
		before, err := repo.Count(ctx, models.OrderFilter{})
		require.NoError(t, err)

		req := futureSubmission()
		req.Phone = "600100200"
		_, err = flow.Submit(ctx, req, nil)
		assert.True(t, IsValidationFailed(err))

		after, err := repo.Count(ctx, models.OrderFilter{})
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestOrderFlow_NotifyOnReceived(t *testing.T) {
	tdb, _ := setupFlowDB(t)
	ctx := context.Background()

	t.Run("enabled", func(t *testing.T) {
		notifier := &fakeNotifier{}
		flow := newTestOrderFlow(t, tdb, notifier, config.OrdersConfig{NotifyOnReceived: true})
		resp, err := flow.Submit(ctx, futureSubmission(), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{resp.TrackingCode}, notifier.received)
	})

	t.Run("delivery failure does not fail the submission", func(t *testing.T) {
		notifier := &fakeNotifier{err: errors.New("smtp down")}
		flow := newTestOrderFlow(t, tdb, notifier, config.OrdersConfig{NotifyOnReceived: true})
		resp, err := flow.Submit(ctx, futureSubmission(), nil)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.TrackingCode)
		assert.Len(t, notifier.received, 1)
	})
}

func TestOrderFlow_TrackingCodeCollision(t *testing.T) {
	tdb, fx := setupFlowDB(t)
	ctx := context.Background()

	taken, err := fx.CreateTestOrder()
	require.NoError(t, err)

	flow := newTestOrderFlow(t, tdb, nil, config.OrdersConfig{})

	t.Run("retries past a taken code", func(t *testing.T) {
		calls := 0
		flow.newTrackingCode = func() string {
			calls++
			if calls == 1 {
				return taken.TrackingCode
			}
			return "FRESHCODE001"
		}
		resp, err := flow.Submit(ctx, futureSubmission(), nil)
		require.NoError(t, err)
		assert.Equal(t, "FRESHCODE001", resp.TrackingCode)
		assert.Equal(t, 2, calls)
	})

	t.Run("gives up after repeated collisions", func(t *testing.T) {
		flow.newTrackingCode = func() string { return taken.TrackingCode }
		_, err := flow.Submit(ctx, futureSubmission(), nil)
		assert.True(t, IsTrackingCodeExhausted(err))
		assert.Equal(t, "TRACKING_CODE_EXHAUSTED", ErrorCode(err))
	})
}

func TestOrderFlow_CalculateQuote(t *testing.T) {
	tdb, _ := setupFlowDB(t)
	flow := newTestOrderFlow(t, tdb, nil, config.OrdersConfig{})
	ctx := context.Background()

	t.Run("weekly with windows", func(t *testing.T) {
		resp, err := flow.CalculateQuote(ctx, &dto.QuoteRequest{
			ServiceType: "residential_weekly",
			Area:        45,
			AddOns:      []dto.AddOnRequestDTO{{ID: "windows_1", Quantity: 2}},
		})
		require.NoError(t, err)
		assert.Equal(t, pricing.Amount(239), resp.BasePrice)
		assert.Equal(t, pricing.Amount(317), resp.TotalPrice)
		assert.False(t, resp.IsIndividual)
	})

	t.Run("unknown service type falls back to the basic table", func(t *testing.T) {
		resp, err := flow.CalculateQuote(ctx, &dto.QuoteRequest{ServiceType: "spa", Area: 45})
		require.NoError(t, err)
		assert.Equal(t, pricing.Amount(269), resp.TotalPrice)
	})

	t.Run("unknown add-on", func(t *testing.T) {
		_, err := flow.CalculateQuote(ctx, &dto.QuoteRequest{
			ServiceType: "office",
			Area:        40,
			AddOns:      []dto.AddOnRequestDTO{{ID: "sauna", Quantity: 1}},
		})
		assert.True(t, IsUnknownAddOn(err))
	})

	t.Run("catalog lists the injected table", func(t *testing.T) {
		cat, err := flow.Catalog(ctx)
		require.NoError(t, err)
		assert.Len(t, cat.Services, len(pricing.DefaultTable().Services()))
		assert.Len(t, cat.AddOns, len(pricing.DefaultTable().AddOns()))
	})
}
