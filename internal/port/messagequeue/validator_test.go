package messagequeue

import (
	"strings"
	"testing"
)

func TestValidateValidTaskCreated(t *testing.T) {
	data := []byte(`{"task_id":"t1","name":"Review invoice","assignee":"kermit","create_time":"2025-06-01T12:00:00Z"}`)
	if err := Validate(SubjectTaskCreated, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateValidTaskAssigned(t *testing.T) {
	data := []byte(`{"task_id":"t1","assignee":"gonzo","previous":"kermit"}`)
	if err := Validate(SubjectTaskAssigned, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateValidTaskCompleted(t *testing.T) {
	data := []byte(`{"task_id":"t1","assignee":"gonzo"}`)
	if err := Validate(SubjectTaskCompleted, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateValidTaskDeleted(t *testing.T) {
	data := []byte(`{"task_id":"t1","reason":"completed"}`)
	if err := Validate(SubjectTaskDeleted, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateUnknownSubject(t *testing.T) {
	// Unknown subjects should pass (future-proof).
	data := []byte(`{"foo":"bar"}`)
	if err := Validate("unknown.subject", data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateInvalidJSON(t *testing.T) {
	data := []byte(`{not valid json`)
	err := Validate(SubjectTaskCreated, data)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "invalid JSON") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestValidateWrongFieldType(t *testing.T) {
	data := []byte(`{"task_id":42,"reason":"x"}`)
	if err := Validate(SubjectTaskDeleted, data); err == nil {
		t.Fatal("expected schema validation error")
	}
}
