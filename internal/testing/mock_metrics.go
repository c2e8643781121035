package testing

import (
	"context"

	"pkdindustries/toolshack/internal/metrics"
)

// MockMetrics implements metrics.Source with canned rows per view.
type MockMetrics struct {
	Services   []metrics.Row
	Regions    []metrics.Row
	Daily      []metrics.DailyRow
	ServiceErr error
	RegionErr  error
	DailyErr   error
}

var _ metrics.Source = (*MockMetrics)(nil)

func (m *MockMetrics) ServiceCosts(ctx context.Context, days int) ([]metrics.Row, error) {
	return m.Services, m.ServiceErr
}

func (m *MockMetrics) RegionCosts(ctx context.Context, days int) ([]metrics.Row, error) {
	return m.Regions, m.RegionErr
}

func (m *MockMetrics) DailyCosts(ctx context.Context, days int) ([]metrics.DailyRow, error) {
	return m.Daily, m.DailyErr
}
