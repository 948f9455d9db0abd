package wizard

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/partman-wizard/partman-wizard/internal/state"
)

// styles
var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	valueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	boldStyle      = lipgloss.NewStyle().Bold(true)
)

func printWelcome(w io.Writer) {
	fmt.Fprintln(w, "\n"+titleStyle.Render("Welcome to the PostgreSQL Partition Wizard!"))
	fmt.Fprintln(w, "\nThis tool will assist you in partitioning tables in your PostgreSQL database.")
	fmt.Fprintln(w, "\n"+boldStyle.Render("IMPORTANT:"))
	fmt.Fprintln(w, warnStyle.Render(" - Your PostgreSQL instance must have pg_partman available for this wizard to work."))
	fmt.Fprintln(w, warnStyle.Render(" - The selected table is copied into a new range-partitioned table managed by pg_partman."))
	fmt.Fprintln(w, warnStyle.Render(" - No existing tables, foreign keys, or indices will be altered until you choose to migrate data."))
	fmt.Fprintln(w, "\n"+errStyle.Render("WARNING: This tool could potentially damage your database. Ensure you have backups before proceeding!"))
	fmt.Fprintln(w)
}

func printProposedChanges(w io.Writer, p Plan) {
	fmt.Fprintln(w, "\n"+titleStyle.Render("Proposed Changes:"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-21s %s\n", "Source Table:", valueStyle.Render(p.SourceTable))
	fmt.Fprintf(w, "  %-21s %s\n", "Partitioned Table:", valueStyle.Render(p.DestTable))
	fmt.Fprintf(w, "  %-21s %s\n", "Partitioning Column:", valueStyle.Render(p.PartitionColumn))
	fmt.Fprintf(w, "  %-21s %s\n", "Partition Interval:", valueStyle.Render(p.Interval))
	fmt.Fprintln(w, "\n"+warnStyle.Render("Please review the proposed changes carefully."))
}

func printFooter(w io.Writer, partmanSchema string) {
	fmt.Fprintln(w, "\n"+warnStyle.Render("IMPORTANT: pg_partman requires regular maintenance. Set up a scheduled job "+
		"(cron, pg_cron or pg_partman's background worker) that runs at least once per day:"))
	fmt.Fprintln(w, "\n  "+highlightStyle.Render(fmt.Sprintf("SELECT %s.run_maintenance();", partmanSchema)))
	fmt.Fprintln(w)
}

func printInterruptedRun(w io.Writer, prev *state.State) {
	fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf(
		"A previous run stopped during %s after changing the database:", prev.CurrentStep)))
	if prev.Message != "" {
		fmt.Fprintln(w, dimStyle.Render("  ("+prev.Status+") "+prev.Message))
	}
	for _, m := range prev.Mutations {
		fmt.Fprintf(w, "  %s %s %s\n",
			dimStyle.Render(m.CompletedAt.Format("2006-01-02 15:04:05")), m.Name, valueStyle.Render(m.Target))
	}
	fmt.Fprintln(w, dimStyle.Render("Check these objects before partitioning the same table again."))
}
