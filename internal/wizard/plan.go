package wizard

import "fmt"

// Plan accumulates the operator's decisions. Each field is written once, by
// the step that owns it.
type Plan struct {
	SourceTable     string `yaml:"source_table"`
	PartitionColumn string `yaml:"partition_column"`
	Interval        string `yaml:"interval"`
	DestTable       string `yaml:"dest_table"`
}

// Complete reports whether every field has been decided.
func (p Plan) Complete() bool {
	return p.SourceTable != "" && p.PartitionColumn != "" && p.Interval != "" && p.DestTable != ""
}

func assign(field *string, name, value string) error {
	if *field != "" {
		return fmt.Errorf("plan %s already set to %q", name, *field)
	}
	if value == "" {
		return fmt.Errorf("plan %s: empty value", name)
	}
	*field = value
	return nil
}
