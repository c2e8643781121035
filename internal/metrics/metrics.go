// Package metrics is the cost-data collaborator: time-ranged, grouped
// aggregation queries returning dimension/amount rows.
package metrics

import "context"

// Row is one aggregated cost datum for a dimension (service or region).
type Row struct {
	Dimension string
	Amount    float64
}

// DailyRow is one day's cost for a service.
type DailyRow struct {
	Date    string
	Service string
	Amount  float64
}

// Source provides the three grouped views the report pipeline draws from.
type Source interface {
	ServiceCosts(ctx context.Context, days int) ([]Row, error)
	RegionCosts(ctx context.Context, days int) ([]Row, error)
	DailyCosts(ctx context.Context, days int) ([]DailyRow, error)
}
