// Package report runs the cost-analysis pipeline: three metric stages
// build charted evidence, an insight stage drafts the report, and an
// optional reflect/research cycle enriches it before the next draft.
package report

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"pkdindustries/toolshack/internal/metrics"
)

// Stage identifies one pipeline node.
type Stage int

const (
	StageServiceCost Stage = iota
	StageRegionCost
	StageDailyCost
	StageGenerateInsight
	StageReflect
	StageResearch
	StageEnd
)

var stageNames = map[Stage]string{
	StageServiceCost:     "service_cost",
	StageRegionCost:      "region_cost",
	StageDailyCost:       "daily_cost",
	StageGenerateInsight: "generate_insight",
	StageReflect:         "reflect_context",
	StageResearch:        "research",
	StageEnd:             "end",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// transitions is the static edge table. StageGenerateInsight is absent
// on purpose: its successor depends on the iteration count.
var transitions = map[Stage]Stage{
	StageServiceCost: StageRegionCost,
	StageRegionCost:  StageDailyCost,
	StageDailyCost:   StageGenerateInsight,
	StageReflect:     StageResearch,
	StageResearch:    StageGenerateInsight,
}

// validateTransitions checks the edge table at construction time: every
// stage must either have a static successor, branch (generate_insight),
// or terminate, and every successor must be a known stage.
func validateTransitions() error {
	for stage := range stageNames {
		if stage == StageGenerateInsight || stage == StageEnd {
			continue
		}
		next, ok := transitions[stage]
		if !ok {
			return fmt.Errorf("stage %s has no successor", stage)
		}
		if _, known := stageNames[next]; !known {
			return fmt.Errorf("stage %s has unknown successor %d", stage, int(next))
		}
	}
	return nil
}

// Reflection is the critique of a draft report.
type Reflection struct {
	Missing     string `json:"missing"`
	Advisable   string `json:"advisable"`
	Superfluous string `json:"superfluous"`
}

// Research pairs a reflection with the queries that would address it.
type Research struct {
	Reflection    Reflection `json:"reflection"`
	SearchQueries []string   `json:"search_queries"`
}

var researchSchema = &jsonschema.Schema{
	Title:       "research",
	Description: "Critique of a draft report with follow-up search queries.",
	Type:        "object",
	Properties: map[string]*jsonschema.Schema{
		"reflection": {
			Type:        "object",
			Description: "What the draft gets wrong.",
			Properties: map[string]*jsonschema.Schema{
				"missing":     {Type: "string", Description: "Critique of what is missing from the draft."},
				"advisable":   {Type: "string", Description: "Critique of what analysis would improve the draft."},
				"superfluous": {Type: "string", Description: "Critique of what the draft should drop."},
			},
			Required: []string{"missing", "advisable", "superfluous"},
		},
		"search_queries": {
			Type:        "array",
			Description: "One to three queries addressing the critique.",
			Items:       &jsonschema.Schema{Type: "string"},
		},
	},
	Required: []string{"reflection", "search_queries"},
}

// State accumulates across stages within one report run. Stages that
// fail leave it untouched.
type State struct {
	ServiceCosts []metrics.Row
	RegionCosts  []metrics.Row
	DailyCosts   []metrics.DailyRow

	AdditionalContext []string
	Appendix          []string
	Iteration         int
	Research          Research
	FinalResponse     string

	// step sections in arrival order; report bodies newest first
	steps   []string
	reports []string
}
