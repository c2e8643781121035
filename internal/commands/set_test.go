package commands

import (
	"strings"
	"testing"

	mocktest "pkdindustries/toolshack/internal/testing"
)

func setCtx(args ...string) *mocktest.MockChatContext {
	return mocktest.NewMockContext().
		WithAdmin(true).
		WithSystem(mocktest.NewMockSystem()).
		WithArgs(args...)
}

func TestSetCommandIdentity(t *testing.T) {
	cmd := &SetCommand{}
	if cmd.Name() != "/set" {
		t.Errorf("Name() = %s", cmd.Name())
	}
	if !cmd.AdminOnly() {
		t.Error("SetCommand must be admin-only")
	}
}

func TestSetCommandUsageErrors(t *testing.T) {
	for _, args := range [][]string{
		{"/set"},
		{"/set", "model"},
	} {
		ctx := setCtx(args...)
		(&SetCommand{}).Execute(ctx)

		if ctx.ReplyCount() != 1 {
			t.Fatalf("args %v: expected 1 reply, got %d", args, ctx.ReplyCount())
		}
		if !strings.Contains(ctx.LastReply(), "Usage:") {
			t.Errorf("args %v: expected usage message, got: %s", args, ctx.LastReply())
		}
	}
}

func TestSetCommandUnknownKey(t *testing.T) {
	ctx := setCtx("/set", "unknownkey", "somevalue")
	(&SetCommand{}).Execute(ctx)

	if !strings.Contains(ctx.LastReply(), "Unknown key") {
		t.Errorf("expected unknown key error, got: %s", ctx.LastReply())
	}
}

func TestSetCommandStringKeys(t *testing.T) {
	ctx := setCtx("/set", "model", "gpt-4")
	(&SetCommand{}).Execute(ctx)

	if !strings.Contains(ctx.LastReply(), "model set to:") {
		t.Errorf("expected confirmation, got: %s", ctx.LastReply())
	}
	if got := ctx.GetConfig().Model.Model; got != "gpt-4" {
		t.Errorf("model = %s, want gpt-4", got)
	}

	// multi-word values join with spaces
	ctx = setCtx("/set", "prompt", "You", "are", "helpful")
	(&SetCommand{}).Execute(ctx)

	if got := ctx.GetConfig().Bot.Prompt; got != "You are helpful" {
		t.Errorf("prompt = %q, want %q", got, "You are helpful")
	}
}

func TestSetCommandBoolKeys(t *testing.T) {
	ctx := setCtx("/set", "addressed", "false")
	(&SetCommand{}).Execute(ctx)

	if ctx.GetConfig().Bot.Addressed {
		t.Error("addressed should be false")
	}

	ctx = setCtx("/set", "addressed", "notabool")
	(&SetCommand{}).Execute(ctx)

	if !strings.Contains(ctx.LastReply(), "invalid") {
		t.Errorf("expected invalid value error, got: %s", ctx.LastReply())
	}
}

func TestSetCommandIntKeys(t *testing.T) {
	ctx := setCtx("/set", "maxtokens", "2048")
	(&SetCommand{}).Execute(ctx)

	if got := ctx.GetConfig().Model.MaxTokens; got != 2048 {
		t.Errorf("maxtokens = %d, want 2048", got)
	}

	ctx = setCtx("/set", "maxtokens", "notanint")
	(&SetCommand{}).Execute(ctx)

	if !strings.Contains(ctx.LastReply(), "invalid") {
		t.Errorf("expected invalid value error, got: %s", ctx.LastReply())
	}
}

func TestSetCommandDurationValidation(t *testing.T) {
	for _, bad := range []string{"10", "abc", "10 m"} {
		ctx := setCtx("/set", "sessionduration", bad)
		(&SetCommand{}).Execute(ctx)

		if !strings.Contains(ctx.LastReply(), "invalid") {
			t.Errorf("sessionduration %q: expected invalid duration error, got: %s", bad, ctx.LastReply())
		}
	}
}

func TestSetCommandTopPBounds(t *testing.T) {
	cases := []struct {
		value   string
		wantErr bool
	}{
		{"0", false},
		{"0.5", false},
		{"1", false},
		{"-0.1", true},
		{"1.5", true},
		{"2", true},
	}

	for _, tc := range cases {
		ctx := setCtx("/set", "top_p", tc.value)
		(&SetCommand{}).Execute(ctx)

		if ctx.ReplyCount() != 1 {
			t.Fatalf("top_p=%s: expected 1 reply, got %d", tc.value, ctx.ReplyCount())
		}
		gotErr := strings.Contains(ctx.LastReply(), "invalid") ||
			strings.Contains(ctx.LastReply(), "between 0 and 1")
		if gotErr != tc.wantErr {
			t.Errorf("top_p=%s: wantErr=%v, reply: %s", tc.value, tc.wantErr, ctx.LastReply())
		}
	}
}

// chunkmax has no bounds validation; any integer is accepted.
func TestSetCommandChunkMax(t *testing.T) {
	for _, tc := range []struct {
		value string
		want  int
	}{
		{"0", 0},
		{"10", 10},
		{"350", 350},
		{"-1", -1},
	} {
		ctx := setCtx("/set", "chunkmax", tc.value)
		(&SetCommand{}).Execute(ctx)

		if got := ctx.GetConfig().Session.ChunkMax; got != tc.want {
			t.Errorf("chunkmax %s: got %d, want %d", tc.value, got, tc.want)
		}
	}
}
