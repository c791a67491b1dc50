package service

import (
	"context"
	"testing"

	"github.com/Strob0t/TaskForge/internal/domain/history"
)

func TestHistoryBelowAuditLevel(t *testing.T) {
	f := newFixture(t, withHistoryLevel(history.LevelActivity))
	ctx := context.Background()

	tk := f.tasks.Create()
	if err := f.tasks.Save(ctx, tk); err != nil {
		t.Fatalf("save: %v", err)
	}

	c, err := f.hist.AddComment(ctx, tk.ID, "dropped")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if c != nil {
		t.Fatalf("comment written below audit level: %+v", c)
	}

	events, err := f.hist.Events(ctx, tk.ID)
	if err != nil {
		t.Fatalf("events read must not fail below audit level: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("events = %d below audit level, want 0", len(events))
	}
	comments, err := f.hist.Comments(ctx, tk.ID)
	if err != nil {
		t.Fatalf("comments: %v", err)
	}
	if len(comments) != 0 {
		t.Fatalf("comments = %d below audit level, want 0", len(comments))
	}
}

func TestCommentBumpsRevision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tk := f.tasks.Create()
	if err := f.tasks.Save(ctx, tk); err != nil {
		t.Fatalf("save: %v", err)
	}

	c, err := f.hist.AddComment(ctx, tk.ID, "please double-check the totals")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if c == nil || c.Message != "please double-check the totals" {
		t.Fatalf("comment = %+v", c)
	}

	got, _ := f.tasks.Get(ctx, tk.ID)
	if got.Revision != 2 {
		t.Fatalf("revision after comment = %d, want 2", got.Revision)
	}

	comments, err := f.hist.Comments(ctx, tk.ID)
	if err != nil {
		t.Fatalf("comments: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("comments = %d, want 1", len(comments))
	}
}

func TestAttachmentRowSurvivesLowHistoryLevel(t *testing.T) {
	f := newFixture(t, withHistoryLevel(history.LevelNone))
	ctx := context.Background()

	tk := f.tasks.Create()
	if err := f.tasks.Save(ctx, tk); err != nil {
		t.Fatalf("save: %v", err)
	}

	a, err := f.hist.AddAttachment(ctx, tk.ID, "invoice.pdf", "scanned original", "https://files.local/invoice.pdf")
	if err != nil {
		t.Fatalf("add attachment: %v", err)
	}
	if a == nil {
		t.Fatal("attachment row must be written at every history level")
	}

	got, err := f.hist.Attachments(ctx, tk.ID)
	if err != nil {
		t.Fatalf("attachments: %v", err)
	}
	if len(got) != 1 || got[0].Name != "invoice.pdf" {
		t.Fatalf("attachments = %+v", got)
	}

	// The audit event is gated even though the row is not.
	events, err := f.store.ListEvents(ctx, tk.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("events = %d at history level none, want 0", len(events))
	}
}

func TestDeleteAttachmentIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tk := f.tasks.Create()
	if err := f.tasks.Save(ctx, tk); err != nil {
		t.Fatalf("save: %v", err)
	}
	a, err := f.hist.AddAttachment(ctx, tk.ID, "notes.txt", "", "")
	if err != nil {
		t.Fatalf("add attachment: %v", err)
	}

	if err := f.hist.DeleteAttachment(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.hist.DeleteAttachment(ctx, a.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	got, _ := f.hist.Attachments(ctx, tk.ID)
	if len(got) != 0 {
		t.Fatalf("attachments after delete = %d, want 0", len(got))
	}
}
