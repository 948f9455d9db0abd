package postgres

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// MockCatalog is an in-memory test double for Catalog. Mutations update its
// state the way the real database would, and every call is recorded in Calls.
type MockCatalog struct {
	Available bool
	Enabled   bool

	Tables    []string            // partitionable tables
	Columns   map[string][]string // table -> date-like columns
	Sequences []string            // all sequences in the schema
	Rows      map[string]int      // table -> row count

	// IdentityColumns lists columns whose sequence LIKE ... INCLUDING ALL
	// recreates for the new table, keyed by source table.
	IdentityColumns map[string][]string

	QueryErr    error
	MutationErr map[string]error // method name -> error

	Calls  []string
	Closed bool
}

func (m *MockCatalog) record(format string, args ...any) {
	m.Calls = append(m.Calls, fmt.Sprintf(format, args...))
}

func (m *MockCatalog) fail(method string) error {
	if m.MutationErr != nil {
		if err, ok := m.MutationErr[method]; ok {
			return err
		}
	}
	return nil
}

// Called reports whether a call with the given prefix was recorded.
func (m *MockCatalog) Called(prefix string) bool {
	for _, c := range m.Calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func (m *MockCatalog) ExtensionAvailable(_ context.Context) (bool, error) {
	m.record("ExtensionAvailable")
	return m.Available, m.QueryErr
}

func (m *MockCatalog) ExtensionEnabled(_ context.Context) (bool, error) {
	m.record("ExtensionEnabled")
	return m.Enabled, m.QueryErr
}

func (m *MockCatalog) ListPartitionableTables(_ context.Context) ([]string, error) {
	m.record("ListPartitionableTables")
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	return slices.Clone(m.Tables), nil
}

func (m *MockCatalog) ListDateLikeColumns(_ context.Context, table string) ([]string, error) {
	m.record("ListDateLikeColumns %s", table)
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	return slices.Clone(m.Columns[table]), nil
}

func (m *MockCatalog) ListSequencesForTable(_ context.Context, table string) ([]string, error) {
	m.record("ListSequencesForTable %s", table)
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	var out []string
	for _, s := range m.Sequences {
		if strings.HasPrefix(s, table) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MockCatalog) IsNameFree(_ context.Context, name string) (bool, error) {
	m.record("IsNameFree %s", name)
	if m.QueryErr != nil {
		return false, m.QueryErr
	}
	return !slices.Contains(m.Tables, name), nil
}

func (m *MockCatalog) EnableExtension(_ context.Context) error {
	m.record("EnableExtension")
	if err := m.fail("EnableExtension"); err != nil {
		return err
	}
	m.Enabled = true
	return nil
}

func (m *MockCatalog) CreatePartitionedTable(_ context.Context, source, dest, column string) error {
	m.record("CreatePartitionedTable %s %s %s", source, dest, column)
	if err := m.fail("CreatePartitionedTable"); err != nil {
		return err
	}
	if slices.Contains(m.Tables, dest) {
		return fmt.Errorf("relation %q already exists", dest)
	}
	m.Tables = append(m.Tables, dest)
	for _, col := range m.IdentityColumns[source] {
		m.Sequences = append(m.Sequences, dest+"_"+col+"_seq")
	}
	if m.Rows == nil {
		m.Rows = make(map[string]int)
	}
	m.Rows[dest] = 0
	return nil
}

func (m *MockCatalog) RegisterPartitionParent(_ context.Context, dest, column, interval string) error {
	m.record("RegisterPartitionParent %s %s %s", dest, column, interval)
	return m.fail("RegisterPartitionParent")
}

func (m *MockCatalog) ResyncSequence(_ context.Context, sourceTable, sourceColumn, sequence string) error {
	m.record("ResyncSequence %s %s %s", sourceTable, sourceColumn, sequence)
	return m.fail("ResyncSequence")
}

func (m *MockCatalog) MigrateData(_ context.Context, source, dest string) error {
	m.record("MigrateData %s %s", source, dest)
	if err := m.fail("MigrateData"); err != nil {
		return err
	}
	if m.Rows == nil {
		m.Rows = make(map[string]int)
	}
	m.Rows[dest] += m.Rows[source]
	m.Rows[source] = 0
	return nil
}

func (m *MockCatalog) RefreshStatistics(_ context.Context, table string) error {
	m.record("RefreshStatistics %s", table)
	return m.fail("RefreshStatistics")
}

func (m *MockCatalog) Close(_ context.Context) error {
	m.Closed = true
	return nil
}
