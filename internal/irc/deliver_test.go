package irc

import (
	"strings"
	"testing"

	mocktest "pkdindustries/toolshack/internal/testing"
)

func TestDeliverSplitsLines(t *testing.T) {
	ctx := mocktest.NewMockContext()

	Deliver(ctx, "first line\nsecond line")

	if ctx.ReplyCount() != 2 {
		t.Fatalf("replies = %d, want 2: %v", ctx.ReplyCount(), ctx.Replies)
	}
	if !ctx.HasReply("first line") || !ctx.HasReply("second line") {
		t.Errorf("replies = %v", ctx.Replies)
	}
}

func TestDeliverChunksLongText(t *testing.T) {
	ctx := mocktest.NewMockContext()
	ctx.GetConfig().Session.ChunkMax = 20

	Deliver(ctx, strings.Repeat("word ", 20))

	if ctx.ReplyCount() < 2 {
		t.Fatalf("long text should chunk into multiple replies: %v", ctx.Replies)
	}
	for _, reply := range ctx.Replies {
		if len(reply) > 20 {
			t.Errorf("reply exceeds chunk max: %q", reply)
		}
	}
}

func TestDeliverEmpty(t *testing.T) {
	ctx := mocktest.NewMockContext()
	Deliver(ctx, "")
	if ctx.ReplyCount() != 0 {
		t.Errorf("empty answer should not reply: %v", ctx.Replies)
	}
}

func TestDeliverImages(t *testing.T) {
	ctx := mocktest.NewMockContext()
	DeliverImages(ctx, []string{"https://a/1.png", "https://a/2.png"})
	if ctx.ReplyCount() != 2 {
		t.Fatalf("replies = %d, want 2", ctx.ReplyCount())
	}
	if ctx.LastReply() != "https://a/2.png" {
		t.Errorf("last reply = %q", ctx.LastReply())
	}
}

func TestInjectAndGetIRCContext(t *testing.T) {
	ctx := mocktest.NewMockContext()

	injected := InjectContext(ctx, ctx)
	got, err := GetIRCContext(injected)
	if err != nil {
		t.Fatalf("GetIRCContext: %v", err)
	}
	if got != ctx {
		t.Error("retrieved context differs from injected")
	}

	if _, err := GetIRCContext(ctx); err == nil {
		t.Error("bare context should not carry an IRC context")
	}
}
