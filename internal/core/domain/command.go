package domain

// Command is an external tool invocation.
type Command struct {
	// Tool is a short label used in diagnostics, for example "styles".
	Tool string
	// Args holds the executable followed by its arguments.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Environment overrides variables of the inherited environment.
	Environment map[string]string
}

// NewCommand returns a command built from a configured prefix and extra arguments.
func NewCommand(tool string, prefix []string, args ...string) *Command {
	full := make([]string, 0, len(prefix)+len(args))
	full = append(full, prefix...)
	full = append(full, args...)
	return &Command{Tool: tool, Args: full}
}
