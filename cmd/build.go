package cmd

import (
	"fmt"
	"os"

	"github.com/shivasurya/code-pathfinder/pathreduce/analytics"
	"github.com/shivasurya/code-pathfinder/pathreduce/graph/adapter"
	"github.com/shivasurya/code-pathfinder/pathreduce/graph/cfg"
	"github.com/shivasurya/code-pathfinder/pathreduce/graph/reducer"
	"github.com/shivasurya/code-pathfinder/pathreduce/output"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile a set of function CFGs into a reusable Reducer snapshot",
	Long: `build reads a set of per-function control-flow graphs (the textual,
YAML, or fixed-binary-descriptor format, see --format), runs GNFA
state-elimination over each function, and writes the resulting Reducer
(regexes, first/last blocks, loop heads) to --out as a snapshot that
"reduce" can load without repeating the compilation.

Examples:
  # Compile a line-oriented textual CFG file with a star bound of 2
  pathreduce build --cfg fixtures/loop.cfg --k 2 --out loop.snapshot.json

  # Compile a YAML fixture, selecting the direct stack reducer
  pathreduce build --cfg fixtures/loop.yaml --format yaml --direct --out loop.snapshot.json

  # Compile a fixed binary descriptor and report malformed functions as SARIF
  pathreduce build --cfg trace.bin --format binary --out out.json --report sarif --report-file build.sarif`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfgPath, _ := cmd.Flags().GetString("cfg")
		format, _ := cmd.Flags().GetString("format")
		k, _ := cmd.Flags().GetInt("k")
		direct, _ := cmd.Flags().GetBool("direct")
		outPath, _ := cmd.Flags().GetString("out")
		report, _ := cmd.Flags().GetString("report")
		reportFile, _ := cmd.Flags().GetString("report-file")
		debug, _ := cmd.Flags().GetBool("debug")

		if cfgPath == "" {
			return fmt.Errorf("--cfg flag is required")
		}
		if outPath == "" {
			return fmt.Errorf("--out flag is required")
		}

		verbosity := output.VerbosityDefault
		if debug {
			verbosity = output.VerbosityDebug
		} else if verboseFlag {
			verbosity = output.VerbosityVerbose
		}
		logger := output.NewLogger(verbosity)

		if direct {
			k = reducer.DirectSentinelK
		}

		analytics.ReportEventWithProperties(analytics.BuildStarted, map[string]interface{}{
			"format": format,
			"k":      k,
		})

		cfgs, err := loadCFGs(cfgPath, format)
		if err != nil {
			analytics.ReportEventWithProperties(analytics.BuildFailed, map[string]interface{}{
				"error_type": "parse",
			})
			return fmt.Errorf("failed to read %s: %w", cfgPath, err)
		}
		logger.Statistic("Parsed %d function CFG(s) from %s", len(cfgs), cfgPath)

		if report == "sarif" {
			if reportFile == "" {
				return fmt.Errorf("--report-file is required when --report sarif")
			}
			if err := writeCFGDiagnostics(cfgs, reportFile); err != nil {
				return fmt.Errorf("failed to write SARIF report: %w", err)
			}
			logger.Progress("Wrote CFG diagnostics to %s", reportFile)
		} else if report != "" {
			return fmt.Errorf("--report must be 'sarif' if set")
		}

		logger.StartProgress("Compiling GNFA regexes", -1)
		r, err := reducer.Build(cfgs, k)
		logger.FinishProgress()
		if err != nil {
			analytics.ReportEventWithProperties(analytics.BuildFailed, map[string]interface{}{
				"error_type": "construction",
			})
			return fmt.Errorf("failed to build reducer: %w", err)
		}

		out, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", outPath, err)
		}
		defer out.Close()

		if err := reducer.WriteSnapshot(out, r); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}

		analytics.ReportEventWithProperties(analytics.BuildCompleted, map[string]interface{}{
			"function_count": len(cfgs),
			"mode":           r.Mode(),
		})
		logger.Statistic("Wrote reducer snapshot to %s (%d functions, mode=%v)", outPath, len(cfgs), r.Mode())
		fmt.Println(outPath)
		return nil
	},
}

// loadCFGs dispatches to the adapter reader matching format.
func loadCFGs(path, format string) ([]*cfg.CFG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch format {
	case "", "text":
		return adapter.ParseTextual(f)
	case "yaml":
		return adapter.ParseYAML(f)
	case "binary":
		return adapter.DecodeDescriptor(f)
	default:
		return nil, fmt.Errorf("unknown --format %q: must be 'text', 'yaml', or 'binary'", format)
	}
}

// writeCFGDiagnostics runs reducer.Diagnose over cfgs and writes the
// findings as a SARIF report to reportFile.
func writeCFGDiagnostics(cfgs []*cfg.CFG, reportFile string) error {
	diags := reducer.Diagnose(cfgs)

	f, err := os.Create(reportFile)
	if err != nil {
		return err
	}
	defer f.Close()

	return output.NewSARIFFormatterWithWriter(f).Format(diags)
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().String("cfg", "", "Path to the CFG file to compile")
	buildCmd.Flags().String("format", "text", "CFG file format: text, yaml, or binary")
	buildCmd.Flags().Int("k", 2, "Star-iteration bound for the structural reducer")
	buildCmd.Flags().Bool("direct", false, "Select the direct stack reducer instead of the regex pipeline")
	buildCmd.Flags().String("out", "", "Path to write the Reducer snapshot")
	buildCmd.Flags().String("report", "", "Emit a diagnostics report; only 'sarif' is supported")
	buildCmd.Flags().String("report-file", "", "Path to write the --report output")
	buildCmd.Flags().Bool("debug", false, "Enable debug-level logging")
}
