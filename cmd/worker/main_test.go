package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fitmind/fitmind/internal/chat"
	"github.com/fitmind/fitmind/internal/db"
	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type cannedRelay struct{ prompt string }

func (r *cannedRelay) Reply(_ context.Context, prompt string) string {
	r.prompt = prompt
	return "Direct Answer:\nTake a walk."
}

func newTestService(t *testing.T) (*chat.Service, *cannedRelay) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(gormsqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	relay := &cannedRelay{}
	return chat.NewService(chat.NewRepo(gdb), relay, 20), relay
}

func TestHandleJob_Succeeds(t *testing.T) {
	svc, relay := newTestService(t)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, 9, "")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	job, _, err := svc.EnqueueReply(ctx, 9, sess.SessionID, "I need to move more", "")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := handleJob(ctx, svc, job.ID); err != nil {
		t.Fatalf("handle job: %v", err)
	}
	if relay.prompt != "user: I need to move more" {
		t.Fatalf("unexpected prompt: %q", relay.prompt)
	}

	got, err := svc.GetJob(ctx, 9, job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != chat.JobSucceeded || got.ResultMessageID == nil {
		t.Fatalf("unexpected job: %+v", got)
	}

	msgs, err := svc.ListMessages(ctx, 9, sess.SessionID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 2 || msgs[1].Role != chat.RoleAssistant || msgs[1].ID != *got.ResultMessageID {
		t.Fatalf("assistant reply not stored: %+v", msgs)
	}

	// a redelivery must not append a second reply
	if err := handleJob(ctx, svc, job.ID); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	msgs, _ = svc.ListMessages(ctx, 9, sess.SessionID)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages after redelivery, got %d", len(msgs))
	}
}

func TestHandleJob_MissingJobIsNotRetried(t *testing.T) {
	svc, _ := newTestService(t)
	err := handleJob(context.Background(), svc, "01NOSUCHJOB000000000000000")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if retryable(err) {
		t.Fatalf("missing jobs must not be retried")
	}
	if !retryable(errors.New("database is locked")) {
		t.Fatalf("storage errors should be retried")
	}
}
