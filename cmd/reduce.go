package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shivasurya/code-pathfinder/pathreduce/analytics"
	"github.com/shivasurya/code-pathfinder/pathreduce/graph/cfg"
	"github.com/shivasurya/code-pathfinder/pathreduce/graph/fingerprint"
	"github.com/shivasurya/code-pathfinder/pathreduce/graph/reducer"
	"github.com/shivasurya/code-pathfinder/pathreduce/nativeabi"
	"github.com/shivasurya/code-pathfinder/pathreduce/output"
	"github.com/spf13/cobra"
)

var reduceCmd = &cobra.Command{
	Use:   "reduce",
	Short: "Reduce one or more execution traces against a built Reducer snapshot",
	Long: `reduce loads a Reducer snapshot written by "build", reduces one or more
paths of BlockIDs against it, and prints the SHA-256 fingerprint of each
reduced path to stdout.

Examples:
  # Reduce a single path given inline
  pathreduce reduce --snapshot loop.snapshot.json --entry 0 --path 1,2,3,2,3,2,3,4

  # Reduce every path in a trace file, one "entry: b1,b2,..." line each,
  # with a progress bar for large batches
  pathreduce reduce --snapshot loop.snapshot.json --trace-file traces.txt`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		snapshotPath, _ := cmd.Flags().GetString("snapshot")
		entryFun, _ := cmd.Flags().GetInt("entry")
		pathStr, _ := cmd.Flags().GetString("path")
		traceFile, _ := cmd.Flags().GetString("trace-file")
		debug, _ := cmd.Flags().GetBool("debug")

		if snapshotPath == "" {
			return fmt.Errorf("--snapshot flag is required")
		}
		if pathStr == "" && traceFile == "" {
			return fmt.Errorf("either --path or --trace-file is required")
		}

		verbosity := output.VerbosityDefault
		if debug {
			verbosity = output.VerbosityDebug
		} else if verboseFlag {
			verbosity = output.VerbosityVerbose
		}
		logger := output.NewLogger(verbosity)

		f, err := os.Open(snapshotPath)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", snapshotPath, err)
		}
		r, err := reducer.ReadSnapshot(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to load snapshot: %w", err)
		}
		logger.Progress("Loaded reducer snapshot (k=%d, mode=%v)", r.K(), r.Mode())

		var queries []traceQuery
		if pathStr != "" {
			p, err := parsePath(pathStr)
			if err != nil {
				return fmt.Errorf("invalid --path: %w", err)
			}
			queries = append(queries, traceQuery{entry: cfg.FunID(entryFun), path: p})
		}
		if traceFile != "" {
			fileQueries, err := readTraceFile(traceFile)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", traceFile, err)
			}
			queries = append(queries, fileQueries...)
		}

		if len(queries) > 1 {
			logger.StartProgress("Reducing traces", len(queries))
		}

		exitCode := output.ExitCodeSuccess
		for _, q := range queries {
			fp, reducedLen, invalid, reduceErr := reducePath(r, q.entry, q.path)
			if len(queries) > 1 {
				logger.UpdateProgress(1)
			}
			if reduceErr != nil {
				analytics.ReportEvent(analytics.ReduceInvalid)
				var abort *nativeabi.FatalAbort
				if errors.As(reduceErr, &abort) {
					// Fatal error policy: abort the whole run at once,
					// skipping any remaining queries.
					logger.FinishProgress()
					logger.Error("reduce aborted for entry %d: %v", q.entry, reduceErr)
					os.Exit(int(output.ExitCodeFatal))
				}
				code := output.DetermineExitCode(reduceErr)
				if code > exitCode {
					exitCode = code
				}
				logger.Error("reduce failed for entry %d: %v", q.entry, reduceErr)
				continue
			}
			if invalid {
				if output.ExitCodeInvalid > exitCode {
					exitCode = output.ExitCodeInvalid
				}
				analytics.ReportEvent(analytics.ReduceInvalid)
			} else {
				analytics.ReportEvent(analytics.ReduceCompleted)
			}
			logger.RecordReduction(len(q.path), reducedLen)
			fmt.Println(fp)
		}
		if len(queries) > 1 {
			logger.FinishProgress()
		}
		logger.PrintReductionSummary()

		if exitCode != output.ExitCodeSuccess {
			os.Exit(int(exitCode))
		}
		return nil
	},
}

type traceQuery struct {
	entry cfg.FunID
	path  []cfg.BlockID
}

// reducePath reduces path and hashes the result, applying
// PATH_REDUCTION_ON_ERROR on an invalid path the same way package
// nativeabi does: FULL_PATH and EMPTY_PATH resolve to a fingerprint with
// invalid=true, while an unset or unrecognized value returns a
// *nativeabi.FatalAbort the caller must treat as terminating the whole
// run. The returned int is the reduced path's length, used to feed the
// logger's reduction-ratio summary.
func reducePath(r *reducer.Reducer, entry cfg.FunID, path []cfg.BlockID) (fp string, reducedLen int, invalid bool, err error) {
	reduced, err := r.Reduce(entry, path)
	if err == nil {
		return fingerprint.Hash(reduced), len(reduced), false, nil
	}

	var ip *reducer.InvalidPath
	if !errors.As(err, &ip) {
		return "", 0, false, err
	}

	if os.Getenv("PATH_REDUCTION_DEBUG") != "" {
		fmt.Fprintf(os.Stderr, "path-reduction: offending path: %v\n", path)
	}
	switch os.Getenv("PATH_REDUCTION_ON_ERROR") {
	case "FULL_PATH":
		return fingerprint.Hash(path), len(path), true, nil
	case "EMPTY_PATH":
		return fingerprint.Hash(nil), 0, true, nil
	case "":
		return "", 0, true, &nativeabi.FatalAbort{Path: path, Reason: ip.Reason}
	default:
		return "", 0, true, &nativeabi.FatalAbort{Path: path, Reason: "unrecognized PATH_REDUCTION_ON_ERROR value"}
	}
}

func parsePath(s string) ([]cfg.BlockID, error) {
	fields := strings.Split(s, ",")
	out := make([]cfg.BlockID, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		id, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid block id %q: %w", f, err)
		}
		out = append(out, cfg.BlockID(id))
	}
	return out, nil
}

// readTraceFile reads lines of the form "entryFunID: b1,b2,b3,...".
func readTraceFile(path string) ([]traceQuery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var queries []traceQuery
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: expected \"entry: b1,b2,...\"", lineNo)
		}
		entry, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid entry function id: %w", lineNo, err)
		}
		p, err := parsePath(parts[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		queries = append(queries, traceQuery{entry: cfg.FunID(entry), path: p})
	}
	return queries, scanner.Err()
}

func init() {
	rootCmd.AddCommand(reduceCmd)
	reduceCmd.Flags().String("snapshot", "", "Path to a Reducer snapshot written by \"build\"")
	reduceCmd.Flags().Int("entry", 0, "Entry FunID for --path")
	reduceCmd.Flags().String("path", "", "Comma-separated BlockIDs to reduce")
	reduceCmd.Flags().String("trace-file", "", "File of \"entry: b1,b2,...\" lines to reduce in batch")
	reduceCmd.Flags().Bool("debug", false, "Enable debug-level logging")
}
