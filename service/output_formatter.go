package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/ludo-technologies/argscan/domain"
	"github.com/ludo-technologies/argscan/internal/constants"
	"github.com/owenrumney/go-sarif/v2/sarif"
	"gopkg.in/yaml.v3"
)

// OutputFormatterImpl implements the OutputFormatter interface
type OutputFormatterImpl struct{}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{}
}

// WriteJSON writes data as JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteYAML writes data as YAML to the writer
func WriteYAML(writer io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// Write writes the arity response in the specified format
func (f *OutputFormatterImpl) Write(response *domain.ArityResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatText, "":
		return f.writeText(response, writer)
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatCSV:
		return f.writeCSV(response, writer)
	case domain.OutputFormatSARIF:
		return f.writeSARIF(response, writer)
	case domain.OutputFormatHTML:
		return writeHTML(newHTMLData(response), writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// writeText prints one `path:line: fn name/arity` line per function and the
// summary line after a blank line
func (f *OutputFormatterImpl) writeText(response *domain.ArityResponse, writer io.Writer) error {
	for _, fn := range response.Functions {
		if _, err := fmt.Fprintf(writer, "%s:%d: fn %s/%d\n", fn.FilePath, fn.Line, fn.Name, fn.Arity); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("\nFound %d functions with more than %d arguments",
		len(response.Functions), response.Summary.MinArgs)
	if response.Summary.Partial {
		summary += fmt.Sprintf(" (partial: %d files failed to parse)", response.Summary.FailedFiles)
	}

	_, err := fmt.Fprintln(writer, summary)
	return err
}

// csvHeader is the first row of CSV output
var csvHeader = []string{"file", "line", "column", "name", "arity", "kind"}

func (f *OutputFormatterImpl) writeCSV(response *domain.ArityResponse, writer io.Writer) error {
	w := csv.NewWriter(writer)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, fn := range response.Functions {
		record := []string{
			fn.FilePath,
			strconv.Itoa(fn.Line),
			strconv.Itoa(fn.Column),
			fn.Name,
			strconv.Itoa(fn.Arity),
			string(fn.Kind),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// writeSARIF emits one SARIF 2.1.0 run with a single rule and a warning per function
func (f *OutputFormatterImpl) writeSARIF(response *domain.ArityResponse, writer io.Writer) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(constants.ToolName, constants.RuleHelpURI)
	rule := run.AddRule(constants.RuleTooManyArguments).
		WithDescription(fmt.Sprintf("Functions should not declare more than %d parameters", response.Summary.MinArgs)).
		WithDefaultConfiguration(&sarif.ReportingConfiguration{
			Level: "warning",
		})

	for _, fn := range response.Functions {
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(fn.FilePath)).
				WithRegion(sarif.NewRegion().WithStartLine(fn.Line).WithStartColumn(fn.Column)),
		)

		message := fmt.Sprintf("fn %s has %d parameters (more than %d)", fn.Name, fn.Arity, response.Summary.MinArgs)
		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(message)).
			WithLevel("warning").
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	report.AddRun(run)

	return report.PrettyWrite(writer)
}
