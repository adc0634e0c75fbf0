package commands

// GlobalFlags carries the persistent flags shared by every subcommand.
// The root command binds them once; subcommands read the resolved
// values at run time.
type GlobalFlags struct {
	// ConfigPath overrides the layered configuration lookup.
	ConfigPath string

	// RulesPath loads a custom rule file on top of the builtins.
	RulesPath string

	// LogLevel selects the slog level (debug, info, warn, error).
	LogLevel string
}
