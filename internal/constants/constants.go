package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "argscan"

	// ConfigFileName is the default config file name
	ConfigFileName = ".argscan.yaml"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "ARGSCAN"
)

// Check rule constants
const (
	// RuleTooManyArguments is the rule id used by check violations and SARIF results
	RuleTooManyArguments = "too-many-arguments"

	// RuleHelpURI points at the rule documentation
	RuleHelpURI = "https://github.com/ludo-technologies/argscan#too-many-arguments"
)

// Exit codes
const (
	ExitOK = 0
	// ExitUsage is returned for missing arguments and a malformed threshold
	ExitUsage      = 1
	ExitViolations = 1
	ExitError      = 2
)
