package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/partman-wizard/partman-wizard/internal/postgres"
	"github.com/partman-wizard/partman-wizard/internal/state"
)

// Inspector is the read-only view of the database catalog.
type Inspector interface {
	ExtensionAvailable(ctx context.Context) (bool, error)
	ExtensionEnabled(ctx context.Context) (bool, error)
	ListPartitionableTables(ctx context.Context) ([]string, error)
	ListDateLikeColumns(ctx context.Context, table string) ([]string, error)
	ListSequencesForTable(ctx context.Context, table string) ([]string, error)
	IsNameFree(ctx context.Context, name string) (bool, error)
}

// Executor performs the irreversible schema and data changes.
type Executor interface {
	EnableExtension(ctx context.Context) error
	CreatePartitionedTable(ctx context.Context, source, dest, column string) error
	RegisterPartitionParent(ctx context.Context, dest, column, interval string) error
	ResyncSequence(ctx context.Context, sourceTable, sourceColumn, sequence string) error
	MigrateData(ctx context.Context, source, dest string) error
	RefreshStatistics(ctx context.Context, table string) error
}

// Database is the single session the wizard owns for a run.
type Database interface {
	Inspector
	Executor
	Close(ctx context.Context) error
}

// Connector opens the wizard's database session.
type Connector func(ctx context.Context, connString string) (Database, error)

// Config wires a Wizard to its collaborators.
type Config struct {
	Prompter Prompter
	Connect  Connector

	// TrialConnect validates a connection string by connecting and disconnecting.
	TrialConnect func(ctx context.Context, connString string) error

	// ResolveSecret expands secret references in the entered connection string.
	// Nil means the string is used verbatim.
	ResolveSecret func(value string) (string, error)

	DefaultConnString string

	// PartmanSchema is the schema pg_partman is installed into, shown in the
	// maintenance footer. Empty means postgres.DefaultPartmanSchema.
	PartmanSchema string

	// StatePath is where the run journal is written. Empty disables persistence.
	StatePath string

	Out    io.Writer
	Logger *slog.Logger
}

// Wizard sequences the partitioning steps over one database session.
type Wizard struct {
	prompt            Prompter
	connect           Connector
	trialConnect      func(ctx context.Context, connString string) error
	resolveSecret     func(string) (string, error)
	defaultConnString string
	partmanSchema     string

	out    io.Writer
	logger *slog.Logger

	state     *state.State
	statePath string

	db   Database
	plan Plan
}

// step is one stage of the pipeline. store receives the Ongoing payload and
// is nil for steps that produce none.
type step struct {
	name  state.Step
	next  state.Step
	run   func(ctx context.Context) (Response, error)
	store func(payload string) error
}

// New creates a Wizard.
func New(cfg Config) *Wizard {
	w := &Wizard{
		prompt:            cfg.Prompter,
		connect:           cfg.Connect,
		trialConnect:      cfg.TrialConnect,
		resolveSecret:     cfg.ResolveSecret,
		defaultConnString: cfg.DefaultConnString,
		partmanSchema:     cfg.PartmanSchema,
		out:               cfg.Out,
		logger:            cfg.Logger,
		state:             state.New(),
		statePath:         cfg.StatePath,
	}
	if w.out == nil {
		w.out = os.Stdout
	}
	if w.logger == nil {
		w.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if w.partmanSchema == "" {
		w.partmanSchema = postgres.DefaultPartmanSchema
	}
	if w.resolveSecret == nil {
		w.resolveSecret = func(v string) (string, error) { return v, nil }
	}
	return w
}

// Plan returns the decisions made so far.
func (w *Wizard) Plan() Plan {
	return w.plan
}

// Database returns the session opened by the connect step, or nil.
func (w *Wizard) Database() Database {
	return w.db
}

func (w *Wizard) steps() []step {
	return []step{
		{
			name: state.StepExtension, next: state.StepSelectTable,
			run: w.configureExtension,
		},
		{
			name: state.StepSelectTable, next: state.StepSelectColumn,
			run:   w.selectTable,
			store: func(v string) error { return assign(&w.plan.SourceTable, "source table", v) },
		},
		{
			name: state.StepSelectColumn, next: state.StepSelectInterval,
			run:   w.selectColumn,
			store: func(v string) error { return assign(&w.plan.PartitionColumn, "partition column", v) },
		},
		{
			name: state.StepSelectInterval, next: state.StepDestinationName,
			run:   w.selectInterval,
			store: func(v string) error { return assign(&w.plan.Interval, "interval", v) },
		},
		{
			name: state.StepDestinationName, next: state.StepCreatePartitions,
			run:   w.enterDestination,
			store: func(v string) error { return assign(&w.plan.DestTable, "destination table", v) },
		},
		{
			name: state.StepCreatePartitions, next: state.StepMigrateData,
			run: w.createPartitions,
		},
		{
			name: state.StepMigrateData, next: state.StepMigrateData,
			run: w.migrateData,
		},
	}
}

// Run executes the whole pipeline. It returns the terminal outcome of the
// run, or an error when a database operation or prompt failed. The caller
// owns the process exit and closing Database().
func (w *Wizard) Run(ctx context.Context) (Outcome, error) {
	w.reportInterruptedRun()
	printWelcome(w.out)

	db, err := w.establishConnection(ctx)
	if err != nil {
		return Outcome{}, w.abort(state.StepConnect, err)
	}
	w.db = db
	w.state.CompleteStep(state.StepConnect, state.StepExtension)
	w.saveState()

	for _, s := range w.steps() {
		w.logger.Info("step started", "step", s.name)

		resp, err := s.run(ctx)
		if err != nil {
			return Outcome{}, w.abort(s.name, err)
		}

		payload, outcome, err := w.handleResponse(resp)
		if err != nil {
			return Outcome{}, w.abort(s.name, err)
		}
		if outcome != nil {
			outcome.Step = string(s.name)
			w.finish(*outcome)
			return *outcome, nil
		}

		if s.store != nil {
			if err := s.store(payload); err != nil {
				return Outcome{}, w.abort(s.name, err)
			}
			w.syncPlan()
		}
		w.state.CompleteStep(s.name, s.next)
		w.saveState()
		w.logger.Info("step completed", "step", s.name, "payload", payload)
	}

	// The final step always terminates; reaching here means it did not.
	return Outcome{}, w.abort(state.StepMigrateData,
		fmt.Errorf("%w: pipeline ended without a terminal response", ErrUnsupportedStatus))
}

// handleResponse interprets a step's envelope. It returns the payload for
// Ongoing, a terminal outcome for Completed and Error, or an error for any
// other status.
func (w *Wizard) handleResponse(resp Response) (string, *Outcome, error) {
	switch resp.Status {
	case StatusOngoing:
		if resp.Message != "" {
			fmt.Fprintln(w.out, "\n"+resp.Message)
		}
		return resp.Payload, nil, nil
	case StatusCompleted:
		if resp.Message != "" {
			fmt.Fprintln(w.out, "\n"+successStyle.Render(resp.Message))
		}
		printFooter(w.out, w.partmanSchema)
		return "", &Outcome{Status: StatusCompleted, Message: resp.Message}, nil
	case StatusError:
		if resp.Message != "" {
			fmt.Fprintln(w.out, "\n"+errStyle.Render(resp.Message))
		}
		return "", &Outcome{Status: StatusError, Message: resp.Message}, nil
	default:
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedStatus, resp.Status)
	}
}

func (w *Wizard) finish(o Outcome) {
	status := state.StatusCompleted
	if o.Status != StatusCompleted {
		status = state.StatusError
	}
	w.state.Finish(status, o.Message)
	w.saveState()
	w.logger.Info("wizard finished", "status", o.Status, "step", o.Step, "message", o.Message)
}

func (w *Wizard) abort(s state.Step, err error) error {
	status := state.StatusError
	if errors.Is(err, ErrCancelled) {
		status = state.StatusAborted
	}
	w.state.Finish(status, err.Error())
	w.saveState()
	w.logger.Error("wizard aborted", "step", s, "error", err)
	return fmt.Errorf("%s: %w", s, err)
}

func (w *Wizard) syncPlan() {
	w.state.SourceTable = w.plan.SourceTable
	w.state.PartitionColumn = w.plan.PartitionColumn
	w.state.Interval = w.plan.Interval
	w.state.DestTable = w.plan.DestTable
}

// mutate runs one Executor call. The journal only records it once the
// database has accepted it; the log shows both ends so a crash in between
// is visible.
func (w *Wizard) mutate(m state.Mutation, target string, apply func() error) error {
	w.logger.Info("mutation started", "mutation", m, "target", target)
	if err := apply(); err != nil {
		w.logger.Error("mutation failed", "mutation", m, "target", target, "error", err)
		return err
	}
	w.state.RecordMutation(m, target)
	w.saveState()
	w.logger.Info("mutation applied", "mutation", m, "target", target)
	return nil
}

func (w *Wizard) saveState() {
	if w.statePath == "" {
		return
	}
	if err := w.state.Save(w.statePath); err != nil {
		w.logger.Warn("saving state failed", "path", w.statePath, "error", err)
	}
}

// reportInterruptedRun warns about a previous run that changed the database
// and then stopped without finishing.
func (w *Wizard) reportInterruptedRun() {
	if w.statePath == "" {
		return
	}
	prev, err := state.Load(w.statePath)
	if err != nil {
		w.logger.Warn("loading previous state failed", "path", w.statePath, "error", err)
		return
	}
	if !prev.Interrupted() {
		return
	}
	w.logger.Warn("previous run was interrupted", "step", prev.CurrentStep, "mutations", len(prev.Mutations))
	printInterruptedRun(w.out, prev)
}
