package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// DateLikeTypes are the information_schema data types accepted as a range partition key.
var DateLikeTypes = []string{
	"date",
	"timestamp without time zone",
	"timestamp with time zone",
}

// ExtensionAvailable reports whether pg_partman can be installed on this instance.
func (c *Catalog) ExtensionAvailable(ctx context.Context) (bool, error) {
	var ok bool
	err := c.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_available_extensions WHERE name = $1)`,
		ExtensionName,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("checking extension availability: %w", err)
	}
	return ok, nil
}

// ExtensionEnabled reports whether pg_partman is installed in the current database.
func (c *Catalog) ExtensionEnabled(ctx context.Context) (bool, error) {
	var ok bool
	err := c.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = $1)`,
		ExtensionName,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("checking extension status: %w", err)
	}
	return ok, nil
}

// ListPartitionableTables lists base tables of the working schema that are not
// themselves a child of another table.
func (c *Catalog) ListPartitionableTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT t.table_name
		FROM information_schema.tables t
		WHERE t.table_schema = $1
		  AND t.table_type = 'BASE TABLE'
		  AND NOT EXISTS (
			SELECT 1
			FROM pg_inherits i
			JOIN pg_class child ON child.oid = i.inhrelid
			JOIN pg_namespace n ON n.oid = child.relnamespace
			WHERE n.nspname = t.table_schema
			  AND child.relname = t.table_name
		  )
		ORDER BY t.table_name`

	names, err := c.queryNames(ctx, query, c.schema)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	return names, nil
}

// ListDateLikeColumns lists the columns of table usable as a partition key.
func (c *Catalog) ListDateLikeColumns(ctx context.Context, table string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = $1
		  AND table_name = $2
		  AND data_type = ANY($3)
		ORDER BY ordinal_position`

	names, err := c.queryNames(ctx, query, c.schema, table, DateLikeTypes)
	if err != nil {
		return nil, fmt.Errorf("listing columns of %s: %w", table, err)
	}
	return names, nil
}

// ListSequencesForTable lists sequences whose name starts with the table name.
// Discovery is by naming convention only, not ownership.
func (c *Catalog) ListSequencesForTable(ctx context.Context, table string) ([]string, error) {
	query := `
		SELECT sequence_name
		FROM information_schema.sequences
		WHERE sequence_schema = $1
		  AND sequence_name LIKE $2
		ORDER BY sequence_name`

	names, err := c.queryNames(ctx, query, c.schema, escapeLike(table)+"%")
	if err != nil {
		return nil, fmt.Errorf("listing sequences of %s: %w", table, err)
	}
	return names, nil
}

// IsNameFree reports whether no table called name exists in the working schema.
func (c *Catalog) IsNameFree(ctx context.Context, name string) (bool, error) {
	var taken bool
	err := c.conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.tables
			WHERE table_schema = $1
			  AND table_name = $2
		)`, c.schema, name).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("checking table name %s: %w", name, err)
	}
	return !taken, nil
}

func (c *Catalog) queryNames(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := c.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// escapeLike escapes LIKE wildcards so s matches literally. Underscores are
// common in table names and would otherwise match any character.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
