package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bondmonitor/internal/models"
	"bondmonitor/internal/monitor"
	"bondmonitor/internal/repository"
)

func TestStatusHandlerGetStatus(t *testing.T) {
	store := repository.NewMemoryHoldingStore()
	store.Add(context.Background(), models.Holding{BondCode: "123456", EntryPrice: 115.2})

	state := &mockMonitorState{
		status: monitor.EngineStatus{
			StartedAt:    time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
			Cycles:       42,
			WatchedPairs: 7,
			InSession:    true,
		},
	}

	h := NewStatusHandler(state, store)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	h.GetStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Cycles != 42 || resp.WatchedPairs != 7 || !resp.InSession {
		t.Errorf("unexpected status: %+v", resp)
	}
	if resp.OpenHoldings != 1 {
		t.Errorf("OpenHoldings: expected 1, got %d", resp.OpenHoldings)
	}
}

func TestOpportunityHandlerLimit(t *testing.T) {
	state := &mockMonitorState{
		recent: []models.Opportunity{
			{BondCode: "110001"},
			{BondCode: "110002"},
			{BondCode: "123456"},
		},
	}

	h := NewOpportunityHandler(state)

	req := httptest.NewRequest(http.MethodGet, "/opportunities?limit=2", nil)
	rec := httptest.NewRecorder()
	h.GetOpportunities(rec, req)

	var resp GetOpportunitiesResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("expected 2 opportunities, got %d", resp.Total)
	}
	// limit отдаёт новейшие
	if resp.Opportunities[0].BondCode != "110002" || resp.Opportunities[1].BondCode != "123456" {
		t.Errorf("limit must keep the newest entries, got %+v", resp.Opportunities)
	}
}

func TestWatchlistHandler(t *testing.T) {
	state := &mockMonitorState{
		watchlist: []models.WatchedPair{
			{BondCode: "110001", StockCode: "600001"},
			{BondCode: "123456", StockCode: "688001"},
		},
	}

	h := NewWatchlistHandler(state)

	req := httptest.NewRequest(http.MethodGet, "/watchlist", nil)
	rec := httptest.NewRecorder()
	h.GetWatchlist(rec, req)

	var resp GetWatchlistResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 || len(resp.Pairs) != 2 {
		t.Errorf("unexpected watchlist response: %+v", resp)
	}
}
