package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/extdot/expand"
	"github.com/gnoswap-labs/extdot/formatter"
	"github.com/gnoswap-labs/extdot/internal"
	tt "github.com/gnoswap-labs/extdot/internal/types"
	"github.com/gnoswap-labs/extdot/internal/writer"
)

var (
	modeFlag    string
	writeOutput bool
	dryRun      bool
	jsonOutput  bool
	outPath     string
	cacheDir    string
)

var expandCmd = &cobra.Command{
	Use:   "expand [paths...]",
	Short: "Expand extended dot notation in files or directories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		config, engine, err := loadEngine(cacheDir)
		if err != nil {
			logger.Error("Failed to initialize expansion engine", zap.Error(err))
			return err
		}

		settings := expandSettings{
			write:      writeOutput || dryRun,
			dryRun:     dryRun,
			json:       jsonOutput,
			outPath:    outPath,
			outputExt:  config.OutputExtension,
			stdout:     cmd.OutOrStdout(),
			diagnostic: cmd.ErrOrStderr(),
		}
		return runExpand(ctx, logger, engine, args, settings)
	},
}

func addExpandFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&modeFlag, "mode", "", "Expansion mode: sites, expr or item (overrides the configuration)")
	flags.BoolVarP(&writeOutput, "write", "w", false, "Write the expansion next to each input instead of printing it")
	flags.BoolVar(&dryRun, "dry-run", false, "Show what would be written without touching any file")
	flags.BoolVar(&jsonOutput, "json", false, "Output results in JSON format")
	flags.StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	flags.StringVar(&cacheDir, "cache-dir", "", "Directory of the result cache (disabled when empty)")
}

func init() {
	addExpandFlags(expandCmd)
}

// loadEngine reads the configuration file, applies command line overrides
// and builds the engine.
func loadEngine(cacheDir string) (expand.Config, *internal.Engine, error) {
	config, err := expand.LoadConfig(cfgFile)
	if err != nil {
		return config, nil, err
	}
	if modeFlag != "" {
		config.Mode = modeFlag
	}

	engine, err := expand.NewFromConfig(config, cfgFile, cacheDir, logger)
	if err != nil {
		return config, nil, err
	}
	return config, engine, nil
}

type expandSettings struct {
	write      bool
	dryRun     bool
	json       bool
	outPath    string
	outputExt  string
	stdout     io.Writer
	diagnostic io.Writer
}

func runExpand(ctx context.Context, logger *zap.Logger, engine expand.Engine, paths []string, s expandSettings) error {
	results, processErr := expand.ProcessFiles(ctx, logger, engine, paths, expand.ProcessFile)
	if processErr != nil {
		logger.Error("Error processing files", zap.Error(processErr))
	}

	if s.json {
		if err := writeJSON(results, s.outPath, s.stdout); err != nil {
			logger.Error("Error writing JSON output", zap.Error(err))
			return err
		}
	} else {
		if err := emitOutputs(results, s); err != nil {
			return err
		}
		printIssues(logger, results, s.diagnostic)
	}

	if processErr != nil {
		return processErr
	}
	if hasErrors(results) {
		return fmt.Errorf("expansion reported errors")
	}
	return nil
}

func emitOutputs(results []internal.Result, s expandSettings) error {
	if s.write {
		w := writer.New(s.dryRun, s.outputExt)
		w.Out = s.stdout
		for _, result := range results {
			if _, err := w.Write(result.Filename, result.Output); err != nil {
				return fmt.Errorf("error writing %s: %w", result.Filename, err)
			}
		}
		return nil
	}

	for _, result := range results {
		if len(results) > 1 {
			fmt.Fprintf(s.stdout, "// %s\n", result.Filename)
		}
		if _, err := s.stdout.Write(result.Output); err != nil {
			return err
		}
	}
	return nil
}

func printIssues(logger *zap.Logger, results []internal.Result, out io.Writer) {
	issuesByFile := make(map[string][]tt.Issue)
	for _, result := range results {
		for _, issue := range result.Issues {
			issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
		}
	}

	sortedFiles := make([]string, 0, len(issuesByFile))
	for filename := range issuesByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)

	for _, filename := range sortedFiles {
		fileIssues := issuesByFile[filename]
		sourceCode, err := internal.ReadSourceCode(filename)
		if err != nil {
			logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
			continue
		}
		fmt.Fprintln(out, formatter.GenerateFormattedIssue(fileIssues, sourceCode))
	}
}

type jsonResult struct {
	Filename string     `json:"filename"`
	Output   string     `json:"output"`
	Issues   []tt.Issue `json:"issues"`
}

func writeJSON(results []internal.Result, path string, stdout io.Writer) error {
	payload := make([]jsonResult, 0, len(results))
	for _, result := range results {
		issues := result.Issues
		if issues == nil {
			issues = []tt.Issue{}
		}
		payload = append(payload, jsonResult{
			Filename: result.Filename,
			Output:   string(result.Output),
			Issues:   issues,
		})
	}

	d, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling results to JSON: %w", err)
	}

	if path == "" {
		_, err = fmt.Fprintln(stdout, string(d))
		return err
	}
	if err := os.WriteFile(path, d, 0o644); err != nil {
		return fmt.Errorf("error writing JSON output file: %w", err)
	}
	return nil
}

func hasErrors(results []internal.Result) bool {
	for _, result := range results {
		for _, issue := range result.Issues {
			if issue.Severity == tt.SeverityError {
				return true
			}
		}
	}
	return false
}
