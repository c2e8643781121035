// Package rag filters retrieved documents: LLM relevance grading with
// optional parallel fan-out, duplicate suppression, and a related-documents
// block for the end of an answer.
package rag

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/alexschlessinger/pollytool/messages"
	"github.com/google/jsonschema-go/jsonschema"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pkdindustries/toolshack/internal/citation"
	"pkdindustries/toolshack/internal/config"
	"pkdindustries/toolshack/internal/core"
	"pkdindustries/toolshack/internal/llm"
)

// Document is one retrieved passage plus its source metadata.
type Document struct {
	Content string
	Page    string
	Name    string
	URL     string
	Source  string
}

const graderPrompt = "You are a grader assessing relevance of a retrieved document to a user question. " +
	"If the document contains keyword(s) or semantic meaning related to the question, grade it as relevant. " +
	"Give a binary score 'yes' or 'no' score to indicate whether the document is relevant to the question."

type gradeScore struct {
	BinaryScore string `json:"binary_score"`
}

var gradeSchema = &jsonschema.Schema{
	Title:       "grade_documents",
	Description: "Binary score for relevance check on retrieved documents",
	Type:        "object",
	Properties: map[string]*jsonschema.Schema{
		"binary_score": {
			Type:        "string",
			Description: "Documents are relevant to the question, 'yes' or 'no'",
		},
	},
	Required: []string{"binary_score"},
}

// Grader scores documents against a question. When ModelNames has entries
// they are round-robined across grading calls to spread load; the counter
// is atomic but a race would only skew load, never results.
type Grader struct {
	Config     *config.Configuration
	Model      core.Model
	ModelNames []string
	Parallel   int
	Logger     *zap.SugaredLogger

	rr atomic.Uint64
}

func NewGrader(cfg *config.Configuration, model core.Model) *Grader {
	parallel := 1
	var names []string
	if cfg.Report != nil {
		if cfg.Report.GradeParallel > 0 {
			parallel = cfg.Report.GradeParallel
		}
		names = cfg.Report.GradeModels
	}
	return &Grader{
		Config:     cfg,
		Model:      model,
		ModelNames: names,
		Parallel:   parallel,
		Logger:     zap.S(),
	}
}

// GradeDocuments keeps the documents graded relevant to the question,
// in their original order. Grading runs in parallel up to Parallel calls.
// A document whose grading call fails is kept: an unjudged document beats
// a silently dropped one.
func (g *Grader) GradeDocuments(ctx context.Context, question string, docs []Document) []Document {
	if len(docs) == 0 {
		return nil
	}

	keep := make([]bool, len(docs))
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(g.Parallel)

	for i, doc := range docs {
		eg.Go(func() error {
			keep[i] = g.gradeOne(ectx, question, doc)
			return nil
		})
	}
	_ = eg.Wait()

	var filtered []Document
	for i, doc := range docs {
		if keep[i] {
			filtered = append(filtered, doc)
		}
	}
	g.Logger.Infow("documents_graded", "total", len(docs), "relevant", len(filtered))
	return filtered
}

func (g *Grader) gradeOne(ctx context.Context, question string, doc Document) bool {
	prompt := fmt.Sprintf("%s\n\nRetrieved document: \n\n %s \n\n User question: %s",
		graderPrompt, doc.Content, question)

	history := []messages.ChatMessage{{
		Role:    messages.MessageRoleUser,
		Content: prompt,
	}}
	req := llm.NewCompletionRequest(g.Config, history, nil)
	req.Model = g.nextModelName()

	var score gradeScore
	err := llm.InvokeStructured(ctx, g.Model, req, gradeSchema, &score)
	if err != nil {
		g.Logger.Warnw("grading_failed", "error", err)
		return true
	}
	return strings.EqualFold(strings.TrimSpace(score.BinaryScore), "yes")
}

func (g *Grader) nextModelName() string {
	if len(g.ModelNames) == 0 {
		return g.Config.Model.Model
	}
	n := g.rr.Add(1) - 1
	return g.ModelNames[int(n%uint64(len(g.ModelNames)))]
}

// Dedup suppresses documents whose content was already seen by this
// filter instance. Scope it to one request, never the process.
type Dedup struct {
	seen map[string]struct{}
}

func NewDedup() *Dedup {
	return &Dedup{seen: make(map[string]struct{})}
}

// Filter returns the documents not seen before, preserving order.
func (d *Dedup) Filter(docs []Document) []Document {
	var out []Document
	for _, doc := range docs {
		if _, dup := d.seen[doc.Content]; dup {
			continue
		}
		d.seen[doc.Content] = struct{}{}
		out = append(out, doc)
	}
	return out
}

const excerptPreview = 30

// References renders a related-documents block. Empty input renders as
// the empty string.
func References(docs []Document) string {
	var sb strings.Builder
	for i, doc := range docs {
		excerpt := citation.CleanExcerpt(doc.Content)
		if r := []rune(excerpt); len(r) > excerptPreview {
			excerpt = string(r[:excerptPreview])
		}
		if doc.Page != "" {
			fmt.Fprintf(&sb, "%d. page %s in [%s](%s), %s...\n", i+1, doc.Page, doc.Name, doc.URL, excerpt)
		} else {
			fmt.Fprintf(&sb, "%d. [%s](%s), %s...\n", i+1, doc.Name, doc.URL, excerpt)
		}
	}
	if sb.Len() == 0 {
		return ""
	}
	return "\n\n#### Related Documents\n" + sb.String()
}
