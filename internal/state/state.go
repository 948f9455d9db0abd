package state

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/partman-wizard/partman-wizard/internal/config"
)

const DefaultPath = "~/.partman-wizard/state.yaml"

// Step represents a wizard step.
type Step string

const (
	StepConnect          Step = "connect"
	StepExtension        Step = "configure_extension"
	StepSelectTable      Step = "select_table"
	StepSelectColumn     Step = "select_column"
	StepSelectInterval   Step = "select_interval"
	StepDestinationName  Step = "destination_name"
	StepCreatePartitions Step = "create_partitions"
	StepMigrateData      Step = "migrate_data"
)

// Mutation names a side-effecting database operation.
type Mutation string

const (
	MutationEnableExtension   Mutation = "enable_extension"
	MutationCreateTable       Mutation = "create_partitioned_table"
	MutationRegisterParent    Mutation = "register_partition_parent"
	MutationResyncSequence    Mutation = "resync_sequence"
	MutationMigrateData       Mutation = "migrate_data"
	MutationRefreshStatistics Mutation = "refresh_statistics"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusError     = "error"
	StatusAborted   = "aborted"
)

// State is the journal of a single wizard run: what was decided and which
// mutations actually reached the database.
type State struct {
	CurrentStep Step               `yaml:"current_step"`
	Status      string             `yaml:"status"`
	StartedAt   time.Time          `yaml:"started_at"`
	LastUpdated time.Time          `yaml:"last_updated"`
	Steps       map[Step]StepState `yaml:"steps,omitempty"`

	SourceTable     string `yaml:"source_table,omitempty"`
	PartitionColumn string `yaml:"partition_column,omitempty"`
	Interval        string `yaml:"interval,omitempty"`
	DestTable       string `yaml:"dest_table,omitempty"`

	Mutations []MutationRecord `yaml:"mutations,omitempty"`
	Message   string           `yaml:"message,omitempty"`
}

// StepState tracks the state of a single wizard step.
type StepState struct {
	Status      string    `yaml:"status"` // complete
	CompletedAt time.Time `yaml:"completed_at,omitempty"`
}

// MutationRecord is one completed mutation.
type MutationRecord struct {
	Name        Mutation  `yaml:"name"`
	Target      string    `yaml:"target"`
	CompletedAt time.Time `yaml:"completed_at"`
}

// Load reads the journal from disk. A missing file yields a fresh state.
func Load(path string) (*State, error) {
	if path == "" {
		path = config.ExpandHome(DefaultPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("reading state: %w", err)
	}

	s := &State{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing state: %w", err)
	}
	if s.Steps == nil {
		s.Steps = make(map[Step]StepState)
	}

	return s, nil
}

// Save writes the journal to disk.
func (s *State) Save(path string) error {
	if path == "" {
		path = config.ExpandHome(DefaultPath)
	}

	s.LastUpdated = time.Now()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// New creates a fresh journal for a run that is starting now.
func New() *State {
	now := time.Now()
	return &State{
		CurrentStep: StepConnect,
		Status:      StatusRunning,
		StartedAt:   now,
		LastUpdated: now,
		Steps:       make(map[Step]StepState),
	}
}

// CompleteStep marks a step as complete and advances to the next.
func (s *State) CompleteStep(step Step, next Step) {
	s.Steps[step] = StepState{
		Status:      "complete",
		CompletedAt: time.Now(),
	}
	s.CurrentStep = next
}

// RecordMutation appends a mutation that has been committed to the database.
func (s *State) RecordMutation(m Mutation, target string) {
	s.Mutations = append(s.Mutations, MutationRecord{
		Name:        m,
		Target:      target,
		CompletedAt: time.Now(),
	})
}

// Finish closes the journal with a terminal status.
func (s *State) Finish(status, message string) {
	s.Status = status
	s.Message = message
}

// Interrupted reports whether the run changed the database and then stopped
// without completing, either still marked running after a crash or finished
// with an error or cancellation.
func (s *State) Interrupted() bool {
	return s.Status != StatusCompleted && len(s.Mutations) > 0
}
