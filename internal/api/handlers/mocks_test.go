package handlers

import (
	"context"
	"time"

	"bondmonitor/internal/models"
	"bondmonitor/internal/monitor"
)

// ============================================================
// Моки зависимостей handlers
// ============================================================

type mockMonitorState struct {
	status    monitor.EngineStatus
	recent    []models.Opportunity
	watchlist []models.WatchedPair
}

func (m *mockMonitorState) Status() monitor.EngineStatus      { return m.status }
func (m *mockMonitorState) Recent() []models.Opportunity      { return m.recent }
func (m *mockMonitorState) Watchlist() []models.WatchedPair   { return m.watchlist }

type mockNotificationStore struct {
	recent  []models.Notification
	byTypes []models.Notification

	gotTypes []string
	gotLimit int

	deleted   int64
	gotCutoff time.Time

	err error
}

func (m *mockNotificationStore) GetRecent(ctx context.Context, limit int) ([]models.Notification, error) {
	m.gotLimit = limit
	return m.recent, m.err
}

func (m *mockNotificationStore) GetByTypes(ctx context.Context, types []string, limit int) ([]models.Notification, error) {
	m.gotTypes = types
	m.gotLimit = limit
	return m.byTypes, m.err
}

func (m *mockNotificationStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.gotCutoff = cutoff
	return m.deleted, m.err
}
