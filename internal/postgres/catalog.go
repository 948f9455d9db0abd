package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/multierr"
)

const (
	// ExtensionName is the partition-maintenance extension the wizard manages.
	ExtensionName = "pg_partman"

	DefaultSchema        = "public"
	DefaultPartmanSchema = "partman"
)

// Options controls which schemas the catalog operates on.
type Options struct {
	Schema        string // schema holding the tables to partition, defaults to "public"
	PartmanSchema string // schema pg_partman is installed into, defaults to "partman"
}

// Catalog inspects and mutates a single PostgreSQL database over one session.
// It is not safe for concurrent use.
type Catalog struct {
	conn          *pgx.Conn
	schema        string
	partmanSchema string
}

// Connect opens the session the wizard uses for the rest of the run.
func Connect(ctx context.Context, connString string, opts Options) (*Catalog, error) {
	cfg, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to PostgreSQL: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, multierr.Append(
			fmt.Errorf("pinging PostgreSQL: %w", err),
			conn.Close(ctx),
		)
	}

	return newCatalog(conn, opts), nil
}

// TrialConnect opens a connection and discards it, reporting whether the
// connection string is usable.
func TrialConnect(ctx context.Context, connString string) error {
	c, err := Connect(ctx, connString, Options{})
	if err != nil {
		return err
	}
	return c.Close(ctx)
}

func newCatalog(conn *pgx.Conn, opts Options) *Catalog {
	s := opts.Schema
	if s == "" {
		s = DefaultSchema
	}
	ps := opts.PartmanSchema
	if ps == "" {
		ps = DefaultPartmanSchema
	}
	return &Catalog{conn: conn, schema: s, partmanSchema: ps}
}

// Schema returns the schema tables are listed from and created in.
func (c *Catalog) Schema() string {
	return c.schema
}

// Close ends the session.
func (c *Catalog) Close(ctx context.Context) error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close(ctx)
	c.conn = nil
	return err
}

// qualified returns the schema-qualified, quoted name of a table in the working schema.
func (c *Catalog) qualified(table string) string {
	return pgx.Identifier{c.schema, table}.Sanitize()
}

// regName returns schema.table in the unquoted form pg_partman expects for its
// p_parent_table and p_source_table arguments.
func (c *Catalog) regName(table string) string {
	return c.schema + "." + table
}
