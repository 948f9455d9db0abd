package state

import (
	"path/filepath"
	"testing"
)

func TestLoadMissingReturnsNew(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.CurrentStep != StepConnect {
		t.Errorf("expected current step %s, got %s", StepConnect, s.CurrentStep)
	}
	if s.Status != StatusRunning {
		t.Errorf("expected status running, got %s", s.Status)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.yaml")

	s := New()
	s.SourceTable = "events"
	s.DestTable = "events_partitioned"
	s.CompleteStep(StepSelectTable, StepSelectColumn)
	s.RecordMutation(MutationCreateTable, "events_partitioned")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.CurrentStep != StepSelectColumn {
		t.Errorf("expected current step %s, got %s", StepSelectColumn, loaded.CurrentStep)
	}
	if loaded.Steps[StepSelectTable].Status != "complete" {
		t.Error("select_table should be complete")
	}
	if _, ok := loaded.Steps[StepSelectColumn]; ok {
		t.Error("select_column should not be recorded yet")
	}
	if len(loaded.Mutations) != 1 || loaded.Mutations[0].Target != "events_partitioned" {
		t.Errorf("unexpected mutations: %+v", loaded.Mutations)
	}
	if !loaded.Interrupted() {
		t.Error("a running journal with mutations should count as interrupted")
	}
}

func TestInterrupted(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		mutations int
		want      bool
	}{
		{"running without mutations", StatusRunning, 0, false},
		{"running after a mutation", StatusRunning, 1, true},
		{"error after a mutation", StatusError, 1, true},
		{"aborted after a mutation", StatusAborted, 2, true},
		{"error before any mutation", StatusError, 0, false},
		{"completed", StatusCompleted, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			for i := 0; i < tt.mutations; i++ {
				s.RecordMutation(MutationCreateTable, "events_partitioned")
			}
			if tt.status != StatusRunning {
				s.Finish(tt.status, "")
			}
			if got := s.Interrupted(); got != tt.want {
				t.Errorf("Interrupted() = %v, want %v", got, tt.want)
			}
		})
	}
}
