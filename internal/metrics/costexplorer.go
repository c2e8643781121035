package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"go.uber.org/zap"
)

// CostExplorerSource queries AWS Cost Explorer for unblended costs.
type CostExplorerSource struct {
	client *costexplorer.Client
	logger *zap.SugaredLogger
}

var _ Source = (*CostExplorerSource)(nil)

func NewCostExplorerSource(ctx context.Context) (*CostExplorerSource, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &CostExplorerSource{
		client: costexplorer.NewFromConfig(cfg),
		logger: zap.S(),
	}, nil
}

func (c *CostExplorerSource) ServiceCosts(ctx context.Context, days int) ([]Row, error) {
	return c.grouped(ctx, days, "SERVICE")
}

func (c *CostExplorerSource) RegionCosts(ctx context.Context, days int) ([]Row, error) {
	return c.grouped(ctx, days, "REGION")
}

// grouped runs a monthly-granularity query over the window and sums
// amounts per dimension, preserving first-seen order.
func (c *CostExplorerSource) grouped(ctx context.Context, days int, dimension string) ([]Row, error) {
	out, err := c.client.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod:  window(days),
		Granularity: cetypes.GranularityMonthly,
		Metrics:     []string{"UnblendedCost"},
		GroupBy: []cetypes.GroupDefinition{{
			Type: cetypes.GroupDefinitionTypeDimension,
			Key:  aws.String(dimension),
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("cost explorer %s query: %w", dimension, err)
	}

	totals := make(map[string]float64)
	var order []string
	for _, rbt := range out.ResultsByTime {
		for _, group := range rbt.Groups {
			if len(group.Keys) == 0 {
				continue
			}
			key := group.Keys[0]
			if _, seen := totals[key]; !seen {
				order = append(order, key)
			}
			totals[key] += amount(group.Metrics)
		}
	}

	rows := make([]Row, 0, len(order))
	for _, key := range order {
		rows = append(rows, Row{Dimension: key, Amount: totals[key]})
	}
	c.logger.Debugw("cost_rows", "dimension", dimension, "rows", len(rows))
	return rows, nil
}

func (c *CostExplorerSource) DailyCosts(ctx context.Context, days int) ([]DailyRow, error) {
	out, err := c.client.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod:  window(days),
		Granularity: cetypes.GranularityDaily,
		Metrics:     []string{"UnblendedCost"},
		GroupBy: []cetypes.GroupDefinition{{
			Type: cetypes.GroupDefinitionTypeDimension,
			Key:  aws.String("SERVICE"),
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("cost explorer daily query: %w", err)
	}

	var rows []DailyRow
	for _, rbt := range out.ResultsByTime {
		date := ""
		if rbt.TimePeriod != nil && rbt.TimePeriod.Start != nil {
			date = *rbt.TimePeriod.Start
		}
		for _, group := range rbt.Groups {
			if len(group.Keys) == 0 {
				continue
			}
			rows = append(rows, DailyRow{
				Date:    date,
				Service: group.Keys[0],
				Amount:  amount(group.Metrics),
			})
		}
	}
	return rows, nil
}

func window(days int) *cetypes.DateInterval {
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	return &cetypes.DateInterval{
		Start: aws.String(start.Format("2006-01-02")),
		End:   aws.String(end.Format("2006-01-02")),
	}
}

func amount(m map[string]cetypes.MetricValue) float64 {
	mv, ok := m["UnblendedCost"]
	if !ok || mv.Amount == nil {
		return 0
	}
	v, err := strconv.ParseFloat(*mv.Amount, 64)
	if err != nil {
		return 0
	}
	return v
}
