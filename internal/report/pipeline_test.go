package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pkdindustries/toolshack/internal/config"
	"pkdindustries/toolshack/internal/metrics"
	"pkdindustries/toolshack/internal/storage"
	mocktest "pkdindustries/toolshack/internal/testing"
)

func testMetrics() *mocktest.MockMetrics {
	return &mocktest.MockMetrics{
		Services: []metrics.Row{
			{Dimension: "Amazon EC2", Amount: 120.50},
			{Dimension: "Amazon S3", Amount: 42.10},
		},
		Regions: []metrics.Row{
			{Dimension: "us-east-1", Amount: 150.00},
			{Dimension: "eu-west-1", Amount: 12.60},
		},
		Daily: []metrics.DailyRow{
			{Date: "2026-08-01", Service: "Amazon EC2", Amount: 4.10},
			{Date: "2026-08-02", Service: "Amazon EC2", Amount: 4.30},
		},
	}
}

func testPipeline(t *testing.T, cfg *config.Configuration, model *mocktest.MockModel, source *mocktest.MockMetrics) (*Pipeline, *storage.MemoryUploader) {
	t.Helper()
	uploader := storage.NewMemoryUploader()
	pipeline, err := NewPipeline(cfg, model, source, uploader, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return pipeline, uploader
}

func TestTransitionTableValid(t *testing.T) {
	if err := validateTransitions(); err != nil {
		t.Fatalf("transition table invalid: %v", err)
	}

	// every stage must be reachable from the start, counting both
	// branches out of generate_insight
	reached := map[Stage]bool{StageServiceCost: true}
	frontier := []Stage{StageServiceCost}
	for len(frontier) > 0 {
		stage := frontier[0]
		frontier = frontier[1:]
		var successors []Stage
		if stage == StageGenerateInsight {
			successors = []Stage{StageEnd, StageReflect}
		} else if next, ok := transitions[stage]; ok {
			successors = []Stage{next}
		}
		for _, next := range successors {
			if !reached[next] {
				reached[next] = true
				frontier = append(frontier, next)
			}
		}
	}
	for stage := range stageNames {
		if !reached[stage] {
			t.Errorf("stage %s unreachable from start", stage)
		}
	}
}

func TestRunReportSingleIteration(t *testing.T) {
	cfg := mocktest.DefaultTestConfig()
	cfg.Report.MaxIteration = 0

	model := mocktest.NewMockModel(
		mocktest.AssistantText("EC2 dominates service spend."),
		mocktest.AssistantText("us-east-1 carries most of the cost."),
		mocktest.AssistantText("Daily spend is flat."),
		mocktest.AssistantText("Spend is concentrated in EC2 in us-east-1."),
	)
	pipeline, uploader := testPipeline(t, cfg, model, testMetrics())

	var updates []string
	report, err := pipeline.RunReport(context.Background(), func(s string) {
		updates = append(updates, s)
	})
	if err != nil {
		t.Fatalf("RunReport: %v", err)
	}

	if !strings.Contains(report, "# AWS Usage Report") {
		t.Errorf("report missing header: %q", report)
	}
	if !strings.Contains(report, "Spend is concentrated in EC2 in us-east-1.") {
		t.Errorf("report missing insight body: %q", report)
	}
	for _, section := range []string{
		"## AWS service usage analysis",
		"## AWS region usage analysis",
		"## AWS daily usage analysis",
	} {
		if !strings.Contains(report, section) {
			t.Errorf("report missing section %q", section)
		}
	}
	if got := model.Calls(); got != 4 {
		t.Errorf("model calls = %d, want 4 (three captions, one insight)", got)
	}

	last := updates[len(updates)-1]
	want := "[status]\nstart -> service_cost -> region_cost -> daily_cost -> generate_insight -> end"
	if last != want {
		t.Errorf("final status = %q, want %q", last, want)
	}
	for _, update := range updates[:len(updates)-1] {
		if !strings.HasSuffix(update, "...") {
			t.Errorf("in-flight status missing ellipsis: %q", update)
		}
	}

	// three charts, one steps doc, one report doc
	if uploader.Len() != 5 {
		t.Errorf("uploaded artifacts = %d, want 5", uploader.Len())
	}
}

func TestRunReportReflectCycle(t *testing.T) {
	cfg := mocktest.DefaultTestConfig()
	cfg.Report.MaxIteration = 1

	model := mocktest.NewMockModel(
		mocktest.AssistantText("caption one"),
		mocktest.AssistantText("caption two"),
		mocktest.AssistantText("caption three"),
		mocktest.AssistantText("First draft insight."),
		mocktest.AssistantText(`{"reflection":{"missing":"no savings plan data","advisable":"check RI coverage","superfluous":"none"},"search_queries":["aws savings plans"]}`),
		mocktest.AssistantText("Savings plans would cut EC2 cost by 30%."),
		mocktest.AssistantText("Second draft insight with savings analysis."),
	)
	pipeline, _ := testPipeline(t, cfg, model, testMetrics())

	var updates []string
	report, err := pipeline.RunReport(context.Background(), func(s string) {
		updates = append(updates, s)
	})
	if err != nil {
		t.Fatalf("RunReport: %v", err)
	}

	if !strings.Contains(report, "Second draft insight with savings analysis.") {
		t.Errorf("final report should carry the second draft: %q", report)
	}
	if strings.Contains(report, "First draft insight.") {
		t.Errorf("final report should not carry the first draft: %q", report)
	}

	last := updates[len(updates)-1]
	for _, label := range []string{"generate_insight -> reflect_context -> research -> generate_insight -> end"} {
		if !strings.Contains(last, label) {
			t.Errorf("status trail %q missing %q", last, label)
		}
	}

	// the second insight request must see the research answer
	insightReq := model.Requests[len(model.Requests)-1]
	human := insightReq.Messages[len(insightReq.Messages)-1].Content
	if !strings.Contains(human, "Savings plans would cut EC2 cost by 30%.") {
		t.Errorf("second insight prompt missing research context:\n%s", human)
	}

	// the research seed carries the reflection and the first draft
	var researchSeed string
	for _, req := range model.Requests {
		last := req.Messages[len(req.Messages)-1].Content
		if strings.Contains(last, "<reflection>") {
			researchSeed = last
		}
	}
	if !strings.Contains(researchSeed, "no savings plan data") {
		t.Errorf("research seed missing critique: %q", researchSeed)
	}
	if !strings.Contains(researchSeed, "First draft insight.") {
		t.Errorf("research seed missing draft: %q", researchSeed)
	}
}

func TestRunReportMetricStageFailureNonFatal(t *testing.T) {
	cfg := mocktest.DefaultTestConfig()
	cfg.Report.MaxIteration = 0

	source := testMetrics()
	source.ServiceErr = errors.New("cost explorer throttled")

	model := mocktest.NewMockModel(
		mocktest.AssistantText("caption region"),
		mocktest.AssistantText("caption daily"),
		mocktest.AssistantText("Insight without service data."),
	)
	pipeline, _ := testPipeline(t, cfg, model, source)

	report, err := pipeline.RunReport(context.Background(), nil)
	if err != nil {
		t.Fatalf("metric stage failure should not abort the run: %v", err)
	}
	if strings.Contains(report, "## AWS service usage analysis") {
		t.Errorf("failed stage should contribute nothing: %q", report)
	}
	if !strings.Contains(report, "## AWS region usage analysis") {
		t.Errorf("surviving stages should still contribute: %q", report)
	}
}

func TestRunReportInsightFailureFatal(t *testing.T) {
	cfg := mocktest.DefaultTestConfig()
	cfg.Report.MaxIteration = 0

	model := mocktest.NewMockModel(
		mocktest.AssistantText("caption one"),
		mocktest.AssistantText("caption two"),
		mocktest.AssistantText("caption three"),
		mocktest.ModelError(errors.New("provider down")),
	)
	pipeline, _ := testPipeline(t, cfg, model, testMetrics())

	_, err := pipeline.RunReport(context.Background(), nil)
	if !errors.Is(err, ErrInsight) {
		t.Fatalf("err = %v, want ErrInsight", err)
	}
}

func TestRunReportReflectionFailureDegrades(t *testing.T) {
	cfg := mocktest.DefaultTestConfig()
	cfg.Report.MaxIteration = 1

	steps := []mocktest.ModelStep{
		mocktest.AssistantText("caption one"),
		mocktest.AssistantText("caption two"),
		mocktest.AssistantText("caption three"),
		mocktest.AssistantText("First draft."),
	}
	// five malformed reflection attempts, then research and second insight
	for range 5 {
		steps = append(steps, mocktest.AssistantText("not json at all"))
	}
	steps = append(steps,
		mocktest.AssistantText("research findings"),
		mocktest.AssistantText("Second draft."),
	)
	pipeline, _ := testPipeline(t, cfg, mocktest.NewMockModel(steps...), testMetrics())

	report, err := pipeline.RunReport(context.Background(), nil)
	if err != nil {
		t.Fatalf("reflection failure should degrade, not abort: %v", err)
	}
	if !strings.Contains(report, "Second draft.") {
		t.Errorf("run should still reach the second insight: %q", report)
	}
}

func TestRunReportContextCanceled(t *testing.T) {
	cfg := mocktest.DefaultTestConfig()
	pipeline, _ := testPipeline(t, cfg, mocktest.NewMockModel(), testMetrics())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := pipeline.RunReport(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
