//go:build integration

package integration

import (
	"bytes"
	"context"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/partman-wizard/partman-wizard/internal/postgres"
	"github.com/partman-wizard/partman-wizard/internal/wizard"
)

func newWizard(t *testing.T, p wizard.Prompter) (*wizard.Wizard, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	w := wizard.New(wizard.Config{
		Prompter: p,
		Connect: func(ctx context.Context, connString string) (wizard.Database, error) {
			c, err := postgres.Connect(ctx, connString, postgres.Options{})
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		TrialConnect: postgres.TrialConnect,
		StatePath:    filepath.Join(t.TempDir(), "state.yaml"),
		Out:          out,
	})
	t.Cleanup(func() {
		if db := w.Database(); db != nil {
			db.Close(context.Background())
		}
	})
	return w, out
}

func TestWizard_EmptyDatabase(t *testing.T) {
	url := pgConnString(t)
	conn := connect(t, url)
	resetSchema(t, conn)

	p := &scriptedPrompter{inputs: []string{url}, confirms: []bool{true}}
	w, out := newWizard(t, p)

	outcome, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Status != wizard.StatusCompleted {
		t.Fatalf("expected completed, got %+v\n%s", outcome, out)
	}

	var enabled bool
	conn.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'pg_partman')`).Scan(&enabled)
	if !enabled {
		t.Error("pg_partman should be installed after accepting the prompt")
	}
}

func TestWizard_CreateWithoutMigration(t *testing.T) {
	url := pgConnString(t)
	conn := connect(t, url)
	resetSchema(t, conn)
	seedEvents(t, conn, 48)

	p := &scriptedPrompter{
		inputs:   []string{url, ""},
		selects:  []string{"events", "created_at", "1 day"},
		confirms: []bool{true, true, false},
	}
	w, out := newWizard(t, p)

	outcome, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if outcome.ExitCode() != 0 {
		t.Fatalf("expected exit 0, got %+v\n%s", outcome, out)
	}

	if got := count(t, conn, "events"); got != 48 {
		t.Errorf("source rows = %d, want 48", got)
	}
	if got := count(t, conn, "events_partitioned"); got != 0 {
		t.Errorf("destination rows = %d, want 0", got)
	}

	var registered bool
	conn.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM partman.part_config WHERE parent_table = 'public.events_partitioned')`).Scan(&registered)
	if !registered {
		t.Error("destination should be registered with pg_partman")
	}
}

func TestWizard_CreateAndMigrate(t *testing.T) {
	url := pgConnString(t)
	conn := connect(t, url)
	resetSchema(t, conn)
	seedEvents(t, conn, 48)

	p := &scriptedPrompter{
		inputs:   []string{url, "events_by_day"},
		selects:  []string{"events", "created_at", "1 day"},
		confirms: []bool{true, true, true},
	}
	w, out := newWizard(t, p)

	outcome, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if outcome.Status != wizard.StatusCompleted {
		t.Fatalf("expected completed, got %+v\n%s", outcome, out)
	}

	if got := count(t, conn, "events"); got != 0 {
		t.Errorf("source rows = %d, want 0", got)
	}
	if got := count(t, conn, "events_by_day"); got != 48 {
		t.Errorf("destination rows = %d, want 48", got)
	}

	// New rows must not collide with migrated identity values.
	var id int64
	err = conn.QueryRow(context.Background(),
		`INSERT INTO events_by_day (created_at) VALUES (now()) RETURNING id`).Scan(&id)
	if err != nil {
		t.Fatalf("inserting into destination: %v", err)
	}
	if id <= 48 {
		t.Errorf("destination sequence not resynced, got id %d", id)
	}
	if !strings.Contains(out.String(), "run_maintenance") {
		t.Error("expected the maintenance footer")
	}
}

func TestWizard_RejectsTakenDestination(t *testing.T) {
	url := pgConnString(t)
	conn := connect(t, url)
	resetSchema(t, conn)
	seedEvents(t, conn, 5)
	exec(t, conn, `CREATE TABLE archive (id int)`)

	p := &scriptedPrompter{
		inputs:   []string{url, "archive", "Bad-Name", "events_new"},
		selects:  []string{"events", "created_at", "1 week"},
		confirms: []bool{true, false},
	}
	w, out := newWizard(t, p)

	outcome, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if w.Plan().DestTable != "events_new" {
		t.Errorf("destination = %q, want events_new", w.Plan().DestTable)
	}
	if outcome.Status != wizard.StatusCompleted {
		t.Errorf("declining the proposed changes should complete, got %+v", outcome)
	}
	var free bool
	conn.QueryRow(context.Background(),
		`SELECT NOT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'events_new')`).Scan(&free)
	if !free {
		t.Error("nothing should be created when the proposed changes are rejected")
	}
}

func TestCatalog_Inspection(t *testing.T) {
	url := pgConnString(t)
	conn := connect(t, url)
	resetSchema(t, conn)
	seedEvents(t, conn, 1)
	exec(t, conn, `CREATE TABLE audit_log (id serial PRIMARY KEY, logged_on date, at timestamp, note text)`)
	exec(t, conn, `CREATE TABLE audit_log_parts (at timestamp NOT NULL) PARTITION BY RANGE (at)`)
	exec(t, conn, `CREATE TABLE audit_log_p1 PARTITION OF audit_log_parts FOR VALUES FROM ('2024-01-01') TO ('2024-02-01')`)
	exec(t, conn, `CREATE TABLE auditxlog_x (id serial)`)

	ctx := context.Background()
	c, err := postgres.Connect(ctx, url, postgres.Options{})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close(ctx)

	if c.Schema() != postgres.DefaultSchema {
		t.Errorf("working schema = %q, want %q", c.Schema(), postgres.DefaultSchema)
	}

	tables, err := c.ListPartitionableTables(ctx)
	if err != nil {
		t.Fatalf("listing tables: %v", err)
	}
	if slices.Contains(tables, "audit_log_p1") {
		t.Errorf("partition children must be excluded, got %v", tables)
	}
	if !slices.IsSorted(tables) || !slices.Contains(tables, "events") {
		t.Errorf("unexpected table list %v", tables)
	}

	cols, err := c.ListDateLikeColumns(ctx, "audit_log")
	if err != nil {
		t.Fatalf("listing columns: %v", err)
	}
	if !slices.Equal(cols, []string{"logged_on", "at"}) {
		t.Errorf("date-like columns = %v, want [logged_on at]", cols)
	}

	seqs, err := c.ListSequencesForTable(ctx, "audit_log")
	if err != nil {
		t.Fatalf("listing sequences: %v", err)
	}
	if !slices.Equal(seqs, []string{"audit_log_id_seq"}) {
		t.Errorf("sequences = %v, want [audit_log_id_seq]", seqs)
	}

	free, err := c.IsNameFree(ctx, "events")
	if err != nil || free {
		t.Errorf("events should be taken, free=%v err=%v", free, err)
	}
	free, err = c.IsNameFree(ctx, "events_partitioned")
	if err != nil || !free {
		t.Errorf("events_partitioned should be free, free=%v err=%v", free, err)
	}

	if err := c.CreatePartitionedTable(ctx, "events", "events_partitioned", "created_at"); err != nil {
		t.Fatalf("creating partitioned table: %v", err)
	}
	free, err = c.IsNameFree(ctx, "events_partitioned")
	if err != nil || free {
		t.Errorf("events_partitioned should be taken after creation, free=%v err=%v", free, err)
	}

	available, err := c.ExtensionAvailable(ctx)
	if err != nil || !available {
		t.Errorf("pg_partman should be available on the test image, available=%v err=%v", available, err)
	}
}
