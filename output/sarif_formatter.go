package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	sarif "github.com/owenrumney/go-sarif/v2/sarif"
	"github.com/shivasurya/code-pathfinder/pathreduce/graph/reducer"
)

// SARIFFormatter formats reducer build diagnostics as SARIF 2.1.0.
type SARIFFormatter struct {
	writer io.Writer
}

// NewSARIFFormatter creates a SARIF formatter writing to stdout.
func NewSARIFFormatter() *SARIFFormatter {
	return &SARIFFormatter{writer: os.Stdout}
}

// NewSARIFFormatterWithWriter creates a formatter with a custom writer
// (for testing, and for the `build --report-file` flag).
func NewSARIFFormatterWithWriter(w io.Writer) *SARIFFormatter {
	return &SARIFFormatter{writer: w}
}

// diagnosticRule describes the SARIF rule metadata for one DiagnosticKind.
type diagnosticRule struct {
	id          string
	name        string
	description string
	level       string
}

var diagnosticRules = map[reducer.DiagnosticKind]diagnosticRule{
	reducer.DiagMalformed: {
		id:          "CFG001",
		name:        "MalformedCFG",
		description: "A function's control-flow graph is not well-formed: an unreachable block, a missing entry or exit, or an empty function body.",
		level:       "error",
	},
	reducer.DiagMultiExit: {
		id:          "CFG002",
		name:        "MultipleExitBlocks",
		description: "A function has more than one zero-out-degree block. This is admitted by the reducer builder, but usually indicates an incompletely modeled control-flow graph.",
		level:       "warning",
	},
	reducer.DiagDuplicateFirst: {
		id:          "CFG003",
		name:        "DuplicateFirstBlock",
		description: "Two functions' compiled regexes share the same leftmost literal block, making the block-to-function lookup ambiguous. Build will fail fatally on this CFG set.",
		level:       "error",
	},
}

// Format renders diags as a single SARIF run, one result per finding.
// Rules are registered lazily, the first time a finding of that kind
// appears.
func (f *SARIFFormatter) Format(diags []reducer.Diagnostic) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}

	run := sarif.NewRunWithInformationURI("pathreduce", "https://codepathfinder.dev")

	seenRules := make(map[string]bool)
	for _, d := range diags {
		rule := diagnosticRules[d.Kind]
		if !seenRules[rule.id] {
			seenRules[rule.id] = true
			run.AddRule(rule.id).
				WithName(rule.name).
				WithDescription(rule.description).
				WithDefaultConfiguration(sarif.NewReportingConfiguration().WithLevel(rule.level))
		}

		message := fmt.Sprintf("function %d: %s", d.Fun, d.Message)
		run.CreateResultForRule(rule.id).
			WithMessage(sarif.NewTextMessage(message))
	}

	report.AddRun(run)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
