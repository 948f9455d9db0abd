package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// EnableExtension creates the partman schema if needed and installs pg_partman into it.
// It must only be called when the extension is available and not yet installed.
func (c *Catalog) EnableExtension(ctx context.Context) error {
	schema := pgx.Identifier{c.partmanSchema}.Sanitize()

	if _, err := c.conn.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+schema); err != nil {
		return fmt.Errorf("creating schema %s: %w", c.partmanSchema, err)
	}
	if _, err := c.conn.Exec(ctx, fmt.Sprintf("CREATE EXTENSION %s SCHEMA %s", ExtensionName, schema)); err != nil {
		return fmt.Errorf("creating extension %s: %w", ExtensionName, err)
	}
	return nil
}

// CreatePartitionedTable creates dest as a structural clone of source
// (columns, defaults, constraints, indexes), range-partitioned on column.
func (c *Catalog) CreatePartitionedTable(ctx context.Context, source, dest, column string) error {
	if err := ValidateIdentifier(dest); err != nil {
		return err
	}

	sql := fmt.Sprintf(
		"CREATE TABLE %s (LIKE %s INCLUDING ALL) PARTITION BY RANGE (%s)",
		c.qualified(dest), c.qualified(source), pgx.Identifier{column}.Sanitize(),
	)
	if _, err := c.conn.Exec(ctx, sql); err != nil {
		return fmt.Errorf("creating partitioned table %s: %w", dest, err)
	}
	return nil
}

// RegisterPartitionParent hands dest over to pg_partman, which creates child
// partitions of the given interval keyed on column.
func (c *Catalog) RegisterPartitionParent(ctx context.Context, dest, column, interval string) error {
	sql := fmt.Sprintf(
		"SELECT %s.create_parent(p_parent_table := $1, p_control := $2, p_interval := $3)",
		pgx.Identifier{c.partmanSchema}.Sanitize(),
	)
	if _, err := c.conn.Exec(ctx, sql, c.regName(dest), column, interval); err != nil {
		return fmt.Errorf("registering %s with %s: %w", dest, ExtensionName, err)
	}
	return nil
}

// ResyncSequence advances sequence to the current maximum of sourceColumn in
// sourceTable. An empty source table leaves the sequence untouched.
func (c *Catalog) ResyncSequence(ctx context.Context, sourceTable, sourceColumn, sequence string) error {
	sql := fmt.Sprintf(
		"SELECT setval($1::regclass, m::bigint) FROM (SELECT max(%s) AS m FROM %s) s WHERE m IS NOT NULL",
		pgx.Identifier{sourceColumn}.Sanitize(), c.qualified(sourceTable),
	)
	if _, err := c.conn.Exec(ctx, sql, pgx.Identifier{c.schema, sequence}.Sanitize()); err != nil {
		return fmt.Errorf("updating sequence %s: %w", sequence, err)
	}
	return nil
}

// MigrateData moves every row of source into the partitions of dest.
// Source is left empty afterwards.
func (c *Catalog) MigrateData(ctx context.Context, source, dest string) error {
	sql := fmt.Sprintf(
		"CALL %s.partition_data_proc(p_parent_table := $1, p_source_table := $2)",
		pgx.Identifier{c.partmanSchema}.Sanitize(),
	)
	// partition_data_proc commits between batches, which is only allowed
	// outside the extended protocol's implicit transaction.
	if _, err := c.conn.Exec(ctx, sql, pgx.QueryExecModeSimpleProtocol, c.regName(dest), c.regName(source)); err != nil {
		return fmt.Errorf("migrating data from %s to %s: %w", source, dest, err)
	}
	return nil
}

// RefreshStatistics runs VACUUM ANALYZE on table.
func (c *Catalog) RefreshStatistics(ctx context.Context, table string) error {
	if _, err := c.conn.Exec(ctx, "VACUUM ANALYZE "+c.qualified(table)); err != nil {
		return fmt.Errorf("vacuuming %s: %w", table, err)
	}
	return nil
}
