package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexschlessinger/pollytool/messages"
	"github.com/alexschlessinger/pollytool/tools"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pkdindustries/toolshack/internal/agent"
	"pkdindustries/toolshack/internal/config"
	"pkdindustries/toolshack/internal/core"
	"pkdindustries/toolshack/internal/llm"
	"pkdindustries/toolshack/internal/metrics"
	"pkdindustries/toolshack/internal/storage"
)

// ErrInsight marks a failed insight synthesis. Metric stages degrade to
// a null update on error; this one aborts the run.
var ErrInsight = errors.New("insight synthesis failed")

const insightSystemPrompt = "You are an AWS cost analyst. Write a detailed usage report " +
	"in markdown from the cost data you are given. Call out the largest spenders, " +
	"notable regional skew, and day-over-day trends. Use concrete dollar figures."

const reflectPrompt = "Critique the draft AWS cost report below. State what is missing, " +
	"what further analysis is advisable, and what is superfluous, then propose one to " +
	"three search queries that would fill the gaps."

const researchSystemPrompt = "You improve draft reports. Use the critique in the " +
	"reflection tags and any available tools to gather material that addresses it, " +
	"then summarize what you found."

// Pipeline implements core.Reporter. One Pipeline can serve many runs;
// all per-run state lives in State.
type Pipeline struct {
	Config   *config.Configuration
	Model    core.Model
	Metrics  metrics.Source
	Uploader storage.Uploader
	// Registry supplies tools to the research stage. Optional.
	Registry *tools.ToolRegistry
	Logger   *zap.SugaredLogger
}

var _ core.Reporter = (*Pipeline)(nil)

func NewPipeline(cfg *config.Configuration, model core.Model, source metrics.Source, uploader storage.Uploader, registry *tools.ToolRegistry) (*Pipeline, error) {
	if err := validateTransitions(); err != nil {
		return nil, err
	}
	return &Pipeline{
		Config:   cfg,
		Model:    model,
		Metrics:  source,
		Uploader: uploader,
		Registry: registry,
		Logger:   zap.S().With("component", "report"),
	}, nil
}

// RunReport walks the stage machine until StageEnd and returns the
// final report markdown. notify, when non-nil, receives the rendered
// status trail after every stage.
func (p *Pipeline) RunReport(ctx context.Context, notify func(string)) (string, error) {
	requestID := shortID()
	logger := p.logger().With("request_id", requestID)
	defer core.LogDuration(logger, "report", time.Now())

	trail := core.NewStatusTrail()
	push := func(label string) {
		trail.Push(label)
		if notify != nil {
			notify(trail.Render(label == StageEnd.String()))
		}
	}

	state := &State{}
	push("start")

	stage := StageServiceCost
	for stage != StageEnd {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		push(stage.String())
		logger.Infow("stage_enter", "stage", stage.String(), "iteration", state.Iteration)

		switch stage {
		case StageServiceCost:
			p.serviceCost(ctx, requestID, state)
		case StageRegionCost:
			p.regionCost(ctx, requestID, state)
		case StageDailyCost:
			p.dailyCost(ctx, requestID, state)
		case StageGenerateInsight:
			if err := p.generateInsight(ctx, requestID, state); err != nil {
				return "", err
			}
			stage = p.shouldEnd(state)
			continue
		case StageReflect:
			p.reflectContext(ctx, state)
		case StageResearch:
			p.research(ctx, state)
		}
		stage = transitions[stage]
	}

	push(StageEnd.String())
	return state.FinalResponse, nil
}

// shouldEnd gates the reflect/research cycle on the iteration budget.
func (p *Pipeline) shouldEnd(state *State) Stage {
	if state.Iteration > p.maxIteration() {
		return StageEnd
	}
	return StageReflect
}

func (p *Pipeline) serviceCost(ctx context.Context, requestID string, state *State) {
	rows, err := p.Metrics.ServiceCosts(ctx, p.days())
	if err != nil {
		p.stageFailed(StageServiceCost, err)
		return
	}
	section, err := p.chartSection(ctx,
		"AWS service usage analysis", "service_cost",
		PieChartSVG("Cost by Service", rows), rowsJSON(rows))
	if err != nil {
		p.stageFailed(StageServiceCost, err)
		return
	}
	state.ServiceCosts = rows
	p.commitSection(ctx, requestID, state, section)
}

func (p *Pipeline) regionCost(ctx context.Context, requestID string, state *State) {
	rows, err := p.Metrics.RegionCosts(ctx, p.days())
	if err != nil {
		p.stageFailed(StageRegionCost, err)
		return
	}
	section, err := p.chartSection(ctx,
		"AWS region usage analysis", "region_cost",
		BarChartSVG("Cost by Region", rows), rowsJSON(rows))
	if err != nil {
		p.stageFailed(StageRegionCost, err)
		return
	}
	state.RegionCosts = rows
	p.commitSection(ctx, requestID, state, section)
}

func (p *Pipeline) dailyCost(ctx context.Context, requestID string, state *State) {
	rows, err := p.Metrics.DailyCosts(ctx, p.days())
	if err != nil {
		p.stageFailed(StageDailyCost, err)
		return
	}
	section, err := p.chartSection(ctx,
		"AWS daily usage analysis", "daily_cost",
		LineChartSVG("Daily Cost", rows), dailyJSON(rows))
	if err != nil {
		p.stageFailed(StageDailyCost, err)
		return
	}
	state.DailyCosts = rows
	p.commitSection(ctx, requestID, state, section)
}

func (p *Pipeline) stageFailed(stage Stage, err error) {
	p.logger().Warnw("stage_failed", "stage", stage.String(), "error", err)
}

// chartSection uploads the chart, captions it from the underlying data,
// and returns the markdown section for the appendix and step log.
func (p *Pipeline) chartSection(ctx context.Context, task, name string, svg []byte, data string) (string, error) {
	key := fmt.Sprintf("%s/%s_%s.svg", p.prefix(), name, shortID())
	url, err := p.Uploader.Put(ctx, key, svg, "image/svg+xml")
	if err != nil {
		return "", fmt.Errorf("upload chart: %w", err)
	}

	caption, err := p.caption(ctx, task, data)
	if err != nil {
		return "", fmt.Errorf("caption chart: %w", err)
	}
	return fmt.Sprintf("## %s\n\n![%s](%s)\n\n%s\n\n", task, task, url, caption), nil
}

// caption asks the model for a one-sentence reading of the charted data.
func (p *Pipeline) caption(ctx context.Context, task, data string) (string, error) {
	history := []messages.ChatMessage{{
		Role: messages.MessageRoleUser,
		Content: fmt.Sprintf(
			"In one sentence, describe what stands out in this data for %q.\n\n%s",
			task, data),
	}}
	req := llm.NewCompletionRequest(p.Config, history, nil)

	turnCtx, cancel := context.WithTimeout(ctx, p.turnTimeout())
	defer cancel()
	resp, err := p.Model.Invoke(turnCtx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

// commitSection records a finished section in the appendix and the
// durable step log.
func (p *Pipeline) commitSection(ctx context.Context, requestID string, state *State, section string) {
	state.Appendix = append(state.Appendix, section)
	state.steps = append(state.steps, section)

	key := fmt.Sprintf("%s/%s_steps.md", p.prefix(), requestID)
	if _, err := p.Uploader.Put(ctx, key, []byte(strings.Join(state.steps, "")), "text/markdown"); err != nil {
		p.logger().Warnw("steps_persist_failed", "key", key, "error", err)
	}
}

// generateInsight synthesizes the report body from everything gathered
// so far. Unlike the metric stages, a model failure here is fatal.
func (p *Pipeline) generateInsight(ctx context.Context, requestID string, state *State) error {
	human := fmt.Sprintf(
		"Analyze the AWS cost data below and write the usage report.\n\n"+
			"<service_costs>\n%s\n</service_costs>\n\n"+
			"<region_costs>\n%s\n</region_costs>\n\n"+
			"<daily_costs>\n%s\n</daily_costs>\n\n"+
			"<additional_context>\n%s\n</additional_context>",
		rowsJSON(state.ServiceCosts),
		rowsJSON(state.RegionCosts),
		dailyJSON(state.DailyCosts),
		strings.Join(state.AdditionalContext, "\n\n"))

	history := []messages.ChatMessage{
		{Role: messages.MessageRoleSystem, Content: insightSystemPrompt},
		{Role: messages.MessageRoleUser, Content: human},
	}
	req := llm.NewCompletionRequest(p.Config, history, nil)

	turnCtx, cancel := context.WithTimeout(ctx, p.turnTimeout())
	defer cancel()
	resp, err := p.Model.Invoke(turnCtx, req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInsight, err)
	}

	body := "# AWS Usage Report\n\n" + strings.TrimSpace(resp.Content) + "\n\n"
	state.Iteration++
	state.FinalResponse = body + strings.Join(state.Appendix, "")

	// newest revision first
	state.reports = append([]string{body}, state.reports...)
	key := fmt.Sprintf("%s/%s_report.md", p.prefix(), requestID)
	if _, err := p.Uploader.Put(ctx, key, []byte(strings.Join(state.reports, "---\n\n")), "text/markdown"); err != nil {
		p.logger().Warnw("report_persist_failed", "key", key, "error", err)
	}
	return nil
}

// reflectContext critiques the current draft into structured form. On
// persistent failure the run continues with an empty reflection.
func (p *Pipeline) reflectContext(ctx context.Context, state *State) {
	history := []messages.ChatMessage{{
		Role:    messages.MessageRoleUser,
		Content: reflectPrompt + "\n\n<draft>\n" + state.FinalResponse + "\n</draft>",
	}}
	req := llm.NewCompletionRequest(p.Config, history, nil)

	var research Research
	if err := llm.InvokeStructured(ctx, p.Model, req, researchSchema, &research); err != nil {
		p.stageFailed(StageReflect, err)
		return
	}
	state.Research = research
}

// research runs a nested conversation seeded with the reflection and
// draft. Its answer becomes additional context for the next insight
// pass; any images it surfaces join the appendix.
func (p *Pipeline) research(ctx context.Context, state *State) {
	loop := agent.NewLoop(p.Config, p.Model, p.Registry)
	loop.SystemPrompt = researchSystemPrompt
	loop.Logger = p.logger()

	seed := fmt.Sprintf("<reflection>%s</reflection>\n\n<draft>%s</draft>",
		renderReflection(state.Research), state.FinalResponse)
	result, err := loop.Run(ctx, "", seed)
	if err != nil {
		p.stageFailed(StageResearch, err)
		return
	}

	state.AdditionalContext = append(state.AdditionalContext, result.Answer)
	for _, url := range result.Images {
		state.Appendix = append(state.Appendix, fmt.Sprintf("![image](%s)\n\n", url))
	}
}

// renderReflection flattens the actionable critique fields and queries
// for the research seed. Superfluous content is the draft's problem,
// not the researcher's.
func renderReflection(r Research) string {
	parts := []string{r.Reflection.Missing, r.Reflection.Advisable}
	parts = append(parts, r.SearchQueries...)
	var kept []string
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "\n")
}

func rowsJSON(rows []metrics.Row) string {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}

func dailyJSON(rows []metrics.DailyRow) string {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (p *Pipeline) days() int {
	if p.Config.Report != nil && p.Config.Report.MetricsDays > 0 {
		return p.Config.Report.MetricsDays
	}
	return 30
}

func (p *Pipeline) maxIteration() int {
	if p.Config.Report != nil {
		return p.Config.Report.MaxIteration
	}
	return 1
}

func (p *Pipeline) prefix() string {
	if p.Config.Report != nil && p.Config.Report.ArtifactPrefix != "" {
		return p.Config.Report.ArtifactPrefix
	}
	return "artifacts"
}

func (p *Pipeline) turnTimeout() time.Duration {
	if p.Config.API.Timeout > 0 {
		return p.Config.API.Timeout
	}
	return 5 * time.Minute
}

func (p *Pipeline) logger() *zap.SugaredLogger {
	if p.Logger != nil {
		return p.Logger
	}
	return zap.S()
}
