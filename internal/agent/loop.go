// Package agent drives the model-turn / tool-turn state machine over a
// conversation transcript. One Loop invocation owns its state; separate
// conversations share nothing but the optional session store.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexschlessinger/pollytool/messages"
	"github.com/alexschlessinger/pollytool/sessions"
	"github.com/alexschlessinger/pollytool/tools"
	"go.uber.org/zap"

	"pkdindustries/toolshack/internal/citation"
	"pkdindustries/toolshack/internal/config"
	"pkdindustries/toolshack/internal/core"
	"pkdindustries/toolshack/internal/llm"
	"pkdindustries/toolshack/internal/normalize"
)

// ErrStepLimit is returned when a conversation exceeds its transition cap.
// It is a hard failure, distinct from a normal answer.
var ErrStepLimit = errors.New("conversation step limit exceeded")

// FallbackAnswer is the fixed assistant reply substituted when the model
// call fails. It carries no tool calls, which guarantees termination.
const FallbackAnswer = "unable to find an answer"

// DefaultStepLimit bounds model/tool transitions per conversation.
const DefaultStepLimit = 50

// State is the mutable state threaded through one conversation run.
type State struct {
	Transcript    []messages.ChatMessage
	PendingImages []string

	// tool call ID -> tool name; tool result messages carry only the ID
	toolNames map[string]string
}

// Result is what one conversation run returns.
type Result struct {
	// Answer is the final assistant text plus the rendered reference block.
	Answer     string
	Images     []string
	Citations  []citation.Citation
	Transcript []messages.ChatMessage
}

// Loop owns the collaborators for one conversation configuration and can
// run many conversations. Fields may be adjusted before the first Run.
type Loop struct {
	Config   *config.Configuration
	Model    core.Model
	Registry *tools.ToolRegistry

	// Store enables durable transcripts keyed by thread ID. Optional.
	Store sessions.SessionStore
	// Trail receives stage labels as the conversation advances. Optional.
	Trail *core.StatusTrail
	// Notify receives advisory notes (image detection). Optional.
	Notify func(string)
	// SystemPrompt overrides the configured persona prompt when non-empty.
	SystemPrompt string

	Logger      *zap.SugaredLogger
	StepLimit   int
	TurnTimeout time.Duration
}

func NewLoop(cfg *config.Configuration, model core.Model, registry *tools.ToolRegistry) *Loop {
	stepLimit := DefaultStepLimit
	if cfg.Report != nil && cfg.Report.StepLimit > 0 {
		stepLimit = cfg.Report.StepLimit
	}
	return &Loop{
		Config:      cfg,
		Model:       model,
		Registry:    registry,
		Logger:      zap.S(),
		StepLimit:   stepLimit,
		TurnTimeout: cfg.API.Timeout,
	}
}

// Run executes one conversation. threadID ties the transcript to the
// session store for multi-turn continuity; empty disables checkpointing.
func (l *Loop) Run(ctx context.Context, threadID, userText string) (*Result, error) {
	defer core.LogDuration(l.logger(), "conversation", time.Now())

	state := &State{toolNames: make(map[string]string)}
	session := l.openSession(threadID, state)

	userMsg := messages.ChatMessage{
		Role:    messages.MessageRoleUser,
		Content: userText,
	}
	state.Transcript = append(state.Transcript, userMsg)
	l.checkpoint(session, userMsg)

	agg := citation.NewAggregator()
	l.push("start")

	steps := 0
	for {
		steps++
		if steps > l.StepLimit {
			return nil, fmt.Errorf("%w (limit %d)", ErrStepLimit, l.StepLimit)
		}
		l.modelTurn(ctx, state, session)

		if !shouldContinue(state.Transcript) {
			l.push("end")
			break
		}
		// Only the last tool call is reported; all of them are dispatched.
		calls := state.Transcript[len(state.Transcript)-1].ToolCalls
		l.push(calls[len(calls)-1].Name)

		steps++
		if steps > l.StepLimit {
			return nil, fmt.Errorf("%w (limit %d)", ErrStepLimit, l.StepLimit)
		}
		l.toolTurn(ctx, state, session, agg)
	}

	final := state.Transcript[len(state.Transcript)-1]
	return &Result{
		Answer:     final.Content + agg.Render(),
		Images:     state.PendingImages,
		Citations:  agg.Citations(),
		Transcript: state.Transcript,
	}, nil
}

// shouldContinue reports whether the loop proceeds to a tool turn:
// only when the last message is an assistant turn requesting tools.
func shouldContinue(transcript []messages.ChatMessage) bool {
	if len(transcript) == 0 {
		return false
	}
	last := transcript[len(transcript)-1]
	return last.Role == messages.MessageRoleAssistant && len(last.ToolCalls) > 0
}

// modelTurn normalizes a trailing tool result, invokes the model, and
// appends its reply. Model failure degrades to the fallback answer.
func (l *Loop) modelTurn(ctx context.Context, state *State, session sessions.Session) {
	if n := len(state.Transcript); n > 0 {
		last := state.Transcript[n-1]
		if last.Role == messages.MessageRoleTool {
			res := normalize.Normalize(state.toolNames[last.ToolCallID], last.Content)
			if len(res.Images) > 0 {
				state.PendingImages = append(state.PendingImages, res.Images...)
				l.logger().Infow("image_detected", "count", len(res.Images))
				if l.Notify != nil {
					l.Notify(fmt.Sprintf("detected %d image(s) in tool output", len(res.Images)))
				}
			}
			// the model sees cleaned tool output, not raw payloads
			state.Transcript[n-1].Content = res.Display
		}
	}

	system := l.SystemPrompt
	if system == "" {
		system = l.Config.Bot.Prompt
	}
	history := make([]messages.ChatMessage, 0, len(state.Transcript)+1)
	history = append(history, messages.ChatMessage{
		Role:    messages.MessageRoleSystem,
		Content: system,
	})
	history = append(history, state.Transcript...)

	var toolList []tools.Tool
	if l.Registry != nil {
		toolList = l.Registry.All()
	}
	req := llm.NewCompletionRequest(l.Config, history, toolList)

	turnCtx, cancel := context.WithTimeout(ctx, l.turnTimeout())
	resp, err := l.Model.Invoke(turnCtx, req)
	cancel()
	if err != nil {
		l.logger().Warnw("model_invoke_failed", "error", err)
		resp = messages.ChatMessage{
			Role:    messages.MessageRoleAssistant,
			Content: FallbackAnswer,
		}
	}

	state.Transcript = append(state.Transcript, resp)
	l.checkpoint(session, resp)
}

// toolTurn dispatches every requested tool call in order and appends one
// tool result message per call. Tool errors become string content; they
// never abort the turn. Citations are mined from the raw result before
// normalization can rewrite it.
func (l *Loop) toolTurn(ctx context.Context, state *State, session sessions.Session, agg *citation.Aggregator) {
	last := state.Transcript[len(state.Transcript)-1]
	for _, tc := range last.ToolCalls {
		state.toolNames[tc.ID] = tc.Name
		result := l.executeTool(ctx, tc)

		agg.Add(normalize.Normalize(tc.Name, result).Citations...)

		msg := messages.ChatMessage{
			Role:       messages.MessageRoleTool,
			Content:    result,
			ToolCallID: tc.ID,
		}
		state.Transcript = append(state.Transcript, msg)
		l.checkpoint(session, msg)
	}
}

func (l *Loop) executeTool(ctx context.Context, tc messages.ChatMessageToolCall) string {
	args := map[string]any{}
	if tc.Arguments != "" {
		if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
			l.logger().Debugw("tool_args_unparsed", "tool", tc.Name, "error", err)
		}
	}

	if l.Registry == nil {
		return fmt.Sprintf("Error: no tools available for %s", tc.Name)
	}
	tool, ok := l.Registry.Get(tc.Name)
	if !ok {
		l.logger().Warnw("tool_not_found", "tool", tc.Name)
		return fmt.Sprintf("Error: unknown tool %s", tc.Name)
	}

	toolLogger := core.WithTool(l.logger(), tc.Name, args)
	toolLogger.Info("Executing tool")
	start := time.Now()

	turnCtx, cancel := context.WithTimeout(ctx, l.turnTimeout())
	out, err := tool.Execute(turnCtx, args)
	cancel()

	duration := time.Since(start)
	if err != nil {
		toolLogger.With(
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		).Error("Tool execution failed")
		return fmt.Sprintf("Error: %v", err)
	}
	toolLogger.With(
		"duration_ms", duration.Milliseconds(),
		"result_size", len(out),
	).Info("Tool execution completed")
	return out
}

func (l *Loop) openSession(threadID string, state *State) sessions.Session {
	if l.Store == nil || threadID == "" {
		return nil
	}
	session, err := l.Store.Get(threadID)
	if err != nil {
		l.logger().Warnw("session_load_failed", "thread_id", threadID, "error", err)
		return nil
	}
	// The transcript holds user, assistant, and tool messages only.
	// modelTurn prepends the persona itself, so a store-seeded system
	// message would otherwise be sent twice.
	for _, msg := range session.GetHistory() {
		if msg.Role == messages.MessageRoleSystem {
			continue
		}
		state.Transcript = append(state.Transcript, msg)
	}
	return session
}

func (l *Loop) checkpoint(session sessions.Session, msg messages.ChatMessage) {
	if session != nil {
		session.AddMessage(msg)
	}
}

func (l *Loop) push(label string) {
	if l.Trail != nil {
		l.Trail.Push(label)
	}
}

func (l *Loop) turnTimeout() time.Duration {
	if l.TurnTimeout > 0 {
		return l.TurnTimeout
	}
	return time.Minute * 5
}

func (l *Loop) logger() *zap.SugaredLogger {
	if l.Logger != nil {
		return l.Logger
	}
	return zap.S()
}
