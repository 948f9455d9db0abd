//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/partman-wizard/partman-wizard/internal/wizard"
)

const (
	testDatabase = "partman_test"
	testUser     = "postgres"
	testPassword = "postgres"
)

// pgConnString returns a connection string for a Postgres instance with
// pg_partman available. PARTMAN_WIZARD_TEST_DATABASE_URL points at an existing
// instance; otherwise PARTMAN_WIZARD_TEST_IMAGE names a container image to
// start. With neither set the test is skipped.
func pgConnString(t *testing.T) string {
	t.Helper()
	if url := os.Getenv("PARTMAN_WIZARD_TEST_DATABASE_URL"); url != "" {
		return url
	}
	image := os.Getenv("PARTMAN_WIZARD_TEST_IMAGE")
	if image == "" {
		t.Skip("skipping: PARTMAN_WIZARD_TEST_DATABASE_URL or PARTMAN_WIZARD_TEST_IMAGE not set")
	}
	return startPostgresContainer(t, image)
}

func startPostgresContainer(t *testing.T, image string) string {
	t.Helper()
	ctx := context.Background()

	port := nat.Port("5432/tcp")
	req := testcontainers.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{string(port)},
		Env: map[string]string{
			"POSTGRES_DB":       testDatabase,
			"POSTGRES_USER":     testUser,
			"POSTGRES_PASSWORD": testPassword,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(90 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("getting container host: %v", err)
	}
	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("getting mapped port: %v", err)
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		testUser, testPassword, host, mapped.Port(), testDatabase)
}

// connect opens a raw session for fixtures and assertions.
func connect(t *testing.T, connString string) *pgx.Conn {
	t.Helper()
	conn, err := pgx.Connect(context.Background(), connString)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(func() { conn.Close(context.Background()) })
	return conn
}

func exec(t *testing.T, conn *pgx.Conn, sql string) {
	t.Helper()
	if _, err := conn.Exec(context.Background(), sql); err != nil {
		t.Fatalf("exec %q: %v", sql, err)
	}
}

// resetSchema gives each test an empty public schema without pg_partman.
func resetSchema(t *testing.T, conn *pgx.Conn) {
	t.Helper()
	exec(t, conn, `DROP EXTENSION IF EXISTS pg_partman CASCADE`)
	exec(t, conn, `DROP SCHEMA IF EXISTS partman CASCADE`)
	exec(t, conn, `DROP SCHEMA IF EXISTS public CASCADE`)
	exec(t, conn, `CREATE SCHEMA public`)
}

// seedEvents creates an events table with an identity key and n rows spread
// over the last few days.
func seedEvents(t *testing.T, conn *pgx.Conn, n int) {
	t.Helper()
	exec(t, conn, `
		CREATE TABLE events (
			id bigint GENERATED BY DEFAULT AS IDENTITY,
			created_at timestamptz NOT NULL,
			payload text,
			PRIMARY KEY (id, created_at)
		)`)
	exec(t, conn, fmt.Sprintf(`
		INSERT INTO events (created_at, payload)
		SELECT now() - (g || ' hours')::interval, 'event ' || g
		FROM generate_series(1, %d) g`, n))
}

func count(t *testing.T, conn *pgx.Conn, table string) int {
	t.Helper()
	var n int
	sql := fmt.Sprintf(`SELECT count(*) FROM %s`, pgx.Identifier{"public", table}.Sanitize())
	if err := conn.QueryRow(context.Background(), sql).Scan(&n); err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	return n
}

// scriptedPrompter answers prompts from fixed queues. Input answers are run
// through the prompt's validator the way the terminal would.
type scriptedPrompter struct {
	inputs   []string
	confirms []bool
	selects  []string
}

func (p *scriptedPrompter) Input(ctx context.Context, ip wizard.InputPrompt) (string, error) {
	for len(p.inputs) > 0 {
		v := p.inputs[0]
		p.inputs = p.inputs[1:]
		if v == "" {
			v = ip.Default
		}
		if ip.Validate == nil {
			return v, nil
		}
		err := ip.Validate(ctx, v)
		if err == nil {
			return v, nil
		}
		if _, ok := err.(*wizard.ValidationError); !ok {
			return "", err
		}
	}
	return "", fmt.Errorf("no scripted input left for %q", ip.Message)
}

func (p *scriptedPrompter) Confirm(_ context.Context, cp wizard.ConfirmPrompt) (bool, error) {
	if len(p.confirms) == 0 {
		return false, fmt.Errorf("no scripted answer left for %q", cp.Message)
	}
	v := p.confirms[0]
	p.confirms = p.confirms[1:]
	return v, nil
}

func (p *scriptedPrompter) Select(_ context.Context, sp wizard.SelectPrompt) (string, error) {
	if len(p.selects) == 0 {
		return "", fmt.Errorf("no scripted choice left for %q", sp.Message)
	}
	v := p.selects[0]
	p.selects = p.selects[1:]
	for _, c := range sp.Choices {
		if c.Value == v {
			return v, nil
		}
	}
	var values []string
	for _, c := range sp.Choices {
		values = append(values, c.Value)
	}
	return "", fmt.Errorf("%q is not one of %s", v, strings.Join(values, ", "))
}
