package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/models"
	"fundledger/internal/pagination"
	"fundledger/internal/portfolio"
)

func setupPortfolioRouter(handler *PortfolioHandler) *gin.Engine {
	r := gin.New()
	r.GET("/portfolio", handler.GetDashboard)
	r.POST("/portfolio/snapshots", handler.RecordSnapshot)
	r.GET("/portfolio/snapshots", handler.GetSnapshots)
	return r
}

func TestPortfolioHandler_GetDashboard(t *testing.T) {
	t.Run("returns_200_with_dashboard", func(t *testing.T) {
		svc := &mockPortfolioService{
			getDashboardFn: func(_ context.Context) (*portfolio.Dashboard, error) {
				return &portfolio.Dashboard{
					Metrics: portfolio.Metrics{TotalValue: 11000, CashBalance: 5000, InvestedValue: 6000, PnLUSD: 1000},
					OpenPositions: []portfolio.OpenPosition{
						{Asset: "BTC", QuantityHeld: 0.1, TotalCost: 5000, LivePrice: 60000, MarketValue: 6000},
					},
					ClientOwnership: []portfolio.ClientOwnership{
						{ProfileID: testClientID, Name: "Alice", OwnershipPercentage: 100, EquityValue: 11000},
					},
				}, nil
			},
		}
		r := setupPortfolioRouter(NewPortfolioHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/portfolio", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		metrics := result["metrics"].(map[string]interface{})
		if metrics["total_value"].(float64) != 11000 {
			t.Errorf("expected total_value=11000, got %v", metrics["total_value"])
		}
		positions := result["open_positions"].([]interface{})
		if len(positions) != 1 {
			t.Fatalf("expected 1 position, got %d", len(positions))
		}
		if positions[0].(map[string]interface{})["asset"] != "BTC" {
			t.Errorf("expected BTC position, got %v", positions[0])
		}
		owners := result["client_ownership"].([]interface{})
		if owners[0].(map[string]interface{})["ownership_percentage"].(float64) != 100 {
			t.Errorf("expected 100%% ownership, got %v", owners[0])
		}
	})

	t.Run("returns_503_when_ledger_unavailable", func(t *testing.T) {
		svc := &mockPortfolioService{
			getDashboardFn: func(_ context.Context) (*portfolio.Dashboard, error) {
				return nil, apperrors.Wrap(apperrors.ErrLedgerUnavailable, fmt.Errorf("connection refused"))
			},
		}
		r := setupPortfolioRouter(NewPortfolioHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/portfolio", "")

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "LEDGER_UNAVAILABLE")
	})

	t.Run("returns_409_when_superseded", func(t *testing.T) {
		svc := &mockPortfolioService{
			getDashboardFn: func(_ context.Context) (*portfolio.Dashboard, error) {
				return nil, apperrors.ErrRefreshSuperseded
			},
		}
		r := setupPortfolioRouter(NewPortfolioHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/portfolio", "")

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "REFRESH_SUPERSEDED")
	})
}

func TestPortfolioHandler_RecordSnapshot(t *testing.T) {
	t.Run("returns_201_with_explicit_time", func(t *testing.T) {
		var captured time.Time
		svc := &mockPortfolioService{
			recordSnapshotFn: func(_ context.Context, recordedAt time.Time) (*models.PortfolioSnapshot, error) {
				captured = recordedAt
				return &models.PortfolioSnapshot{ID: "snap-1", RecordedAt: recordedAt, TotalValue: decimal.NewFromInt(11000)}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupPortfolioRouter(NewPortfolioHandler(svc, audit))

		rec := doRequest(r, "POST", "/portfolio/snapshots", `{"recorded_at":"2025-03-05T12:00:00Z"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !captured.Equal(time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)) {
			t.Errorf("expected recorded_at to be passed through, got %v", captured)
		}
		if len(audit.entries) != 1 || audit.entries[0].action != "RECORD_SNAPSHOT" {
			t.Errorf("expected one RECORD_SNAPSHOT audit entry, got %+v", audit.entries)
		}
	})

	t.Run("returns_201_without_body", func(t *testing.T) {
		var captured time.Time
		svc := &mockPortfolioService{
			recordSnapshotFn: func(_ context.Context, recordedAt time.Time) (*models.PortfolioSnapshot, error) {
				captured = recordedAt
				return &models.PortfolioSnapshot{ID: "snap-2"}, nil
			},
		}
		r := setupPortfolioRouter(NewPortfolioHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/portfolio/snapshots", "")

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !captured.IsZero() {
			t.Errorf("expected zero time so the service uses now, got %v", captured)
		}
	})

	t.Run("returns_400_invalid_time", func(t *testing.T) {
		r := setupPortfolioRouter(NewPortfolioHandler(&mockPortfolioService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/portfolio/snapshots", `{"recorded_at":"noon"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestPortfolioHandler_GetSnapshots(t *testing.T) {
	t.Run("returns_200_with_data", func(t *testing.T) {
		svc := &mockPortfolioService{
			getSnapshotsFn: func(_, _ time.Time, _ pagination.PageRequest) (*pagination.PageResponse[models.PortfolioSnapshot], error) {
				resp := pagination.NewPageResponse([]models.PortfolioSnapshot{
					{ID: "snap-1", TotalValue: decimal.NewFromInt(11000)},
				}, 1, 20, 1)
				return &resp, nil
			},
		}
		r := setupPortfolioRouter(NewPortfolioHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/portfolio/snapshots?from_date=2025-01-01&to_date=2025-12-31", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		data := result["data"].([]interface{})
		if len(data) != 1 {
			t.Fatalf("expected 1 snapshot, got %d", len(data))
		}
		if data[0].(map[string]interface{})["total_value"] != "11000" {
			t.Errorf("expected total_value=11000, got %v", data[0])
		}
	})

	t.Run("returns_400_missing_from_date", func(t *testing.T) {
		r := setupPortfolioRouter(NewPortfolioHandler(&mockPortfolioService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/portfolio/snapshots?to_date=2025-12-31", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns_400_missing_to_date", func(t *testing.T) {
		r := setupPortfolioRouter(NewPortfolioHandler(&mockPortfolioService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/portfolio/snapshots?from_date=2025-01-01", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("passes_range_and_pagination_to_service", func(t *testing.T) {
		var capturedFrom, capturedTo time.Time
		var capturedPage pagination.PageRequest
		svc := &mockPortfolioService{
			getSnapshotsFn: func(from, to time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.PortfolioSnapshot], error) {
				capturedFrom, capturedTo, capturedPage = from, to, page
				resp := pagination.NewPageResponse([]models.PortfolioSnapshot{}, 2, 5, 0)
				return &resp, nil
			},
		}
		r := setupPortfolioRouter(NewPortfolioHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/portfolio/snapshots?from_date=2025-01-01&to_date=2025-02-01T00:00:00Z&page=2&page_size=5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !capturedFrom.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) || !capturedTo.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected range %v - %v", capturedFrom, capturedTo)
		}
		if capturedPage.Page != 2 || capturedPage.PageSize != 5 {
			t.Errorf("expected page=2 page_size=5, got %+v", capturedPage)
		}
	})

	t.Run("returns_400_page_size_over_limit", func(t *testing.T) {
		r := setupPortfolioRouter(NewPortfolioHandler(&mockPortfolioService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/portfolio/snapshots?from_date=2025-01-01&to_date=2025-12-31&page_size=500", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}
