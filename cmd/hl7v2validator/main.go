// Package main implements the hl7v2validator CLI tool.
// It validates HL7 v2.x vertical bar messages against a schema directory
// of HL7 v2.xml XSD definitions plus optional reference data files.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	hl7validator "github.com/gohl7/validator"
	"github.com/gohl7/validator/engine"
	"github.com/gohl7/validator/worker"
)

const version = "0.1.0"

const usage = `hl7v2validator - HL7 v2.x message validator

Usage:
  hl7v2validator -schemaDir <dir> [options]                 (read from stdin)
  hl7v2validator -schemaDir <dir> -inputFile <file> [options]
  hl7v2validator -schemaDir <dir> -inputDir <dir> [options]

A message read from stdin reports to stdout. A message read from a file
reports to <basename>.rpt in the report directory (default: next to the
input).

Examples:
  cat adt_a01.hl7 | hl7v2validator -schemaDir schema/v2.4
  hl7v2validator -schemaDir schema/v2.4 -inputFile adt_a01.hl7
  hl7v2validator -schemaDir schema/v2.4 -inputDir messages/ -reportDir reports/
  hl7v2validator -schemaDir schema/v2.4 -inputFile adt_a01.hl7 -output json

Options:
`

// Exit codes, following sysexits conventions.
const (
	exitOK       = 0
	exitFindings = 1
	exitConfig   = 2
)

// OutputFormat specifies the report format.
type OutputFormat string

// Output format constants.
const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// Config holds CLI configuration. Fields tagged for YAML can also be set
// through a config file; flags win over file values.
type Config struct {
	SchemaDir string       `yaml:"schemaDir"`
	InputDir  string       `yaml:"inputDir"`
	InputFile string       `yaml:"inputFile"`
	ReportDir string       `yaml:"reportDir"`
	Output    OutputFormat `yaml:"output"`
	Strict    bool         `yaml:"strict"`
	Quiet     bool         `yaml:"quiet"`
	Workers   int          `yaml:"workers"`

	ShowVersion bool `yaml:"-"`
}

// ValidationOutput is the JSON report structure.
type ValidationOutput struct {
	Message   string          `json:"message"`
	Structure string          `json:"structure,omitempty"`
	Valid     bool            `json:"valid"`
	Errors    int             `json:"errors"`
	Warnings  int             `json:"warnings"`
	Findings  []FindingOutput `json:"findings,omitempty"`
	Duration  string          `json:"duration"`
}

// FindingOutput is a single finding in JSON output.
type FindingOutput struct {
	Severity    string `json:"severity"`
	Type        string `json:"type"`
	Location    string `json:"location,omitempty"`
	Value       string `json:"value,omitempty"`
	Diagnostics string `json:"diagnostics"`
}

func main() {
	config, err := parseFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitConfig)
	}

	if config.ShowVersion {
		fmt.Printf("hl7v2validator v%s\n", version)
		os.Exit(exitOK)
	}

	if config.SchemaDir == "" {
		fmt.Fprintln(os.Stderr, "a schema directory is required (-schemaDir)")
		flag.Usage()
		os.Exit(exitConfig)
	}

	os.Exit(run(config))
}

func parseFlags() (*Config, error) {
	config := &Config{Output: OutputText}

	var configFile, output string
	flag.StringVar(&config.SchemaDir, "schemaDir", "", "Directory holding the xsd/ folder and reference data files (required)")
	flag.StringVar(&config.InputDir, "inputDir", "", "Directory of message files to validate")
	flag.StringVar(&config.InputFile, "inputFile", "", "A single message file to validate ('-' or empty for stdin)")
	flag.StringVar(&config.ReportDir, "reportDir", "", "Directory for .rpt report files (default: the input directory)")
	flag.StringVar(&output, "output", "", "Report format: text, json")
	flag.BoolVar(&config.Strict, "strict", false, "Treat warnings as errors")
	flag.BoolVar(&config.Quiet, "quiet", false, "Only report the validation verdict")
	flag.IntVar(&config.Workers, "workers", 0, "Worker count for directory validation (default: CPU count)")
	flag.StringVar(&configFile, "config", "", "YAML configuration file")
	flag.BoolVar(&config.ShowVersion, "version", false, "Print the version and exit")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if configFile != "" {
		fileConfig := &Config{Output: OutputText}
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, fileConfig); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		mergeConfig(config, fileConfig)
	}

	if output != "" {
		config.Output = OutputFormat(output)
	}
	switch config.Output {
	case OutputText, OutputJSON:
	default:
		return nil, fmt.Errorf("unknown output format %q", config.Output)
	}
	return config, nil
}

// mergeConfig fills zero-valued flag fields from the config file.
func mergeConfig(dst, src *Config) {
	if dst.SchemaDir == "" {
		dst.SchemaDir = src.SchemaDir
	}
	if dst.InputDir == "" {
		dst.InputDir = src.InputDir
	}
	if dst.InputFile == "" {
		dst.InputFile = src.InputFile
	}
	if dst.ReportDir == "" {
		dst.ReportDir = src.ReportDir
	}
	if src.Output != "" && src.Output != OutputText {
		dst.Output = src.Output
	}
	if src.Strict {
		dst.Strict = true
	}
	if src.Quiet {
		dst.Quiet = true
	}
	if dst.Workers == 0 {
		dst.Workers = src.Workers
	}
}

func run(config *Config) int {
	ctx := context.Background()

	opts := []hl7validator.Option{
		hl7validator.WithStrictMode(config.Strict),
	}
	if config.Workers > 0 {
		opts = append(opts, hl7validator.WithWorkerCount(config.Workers))
	}

	v, err := engine.New(ctx, config.SchemaDir, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot initialize validator: %v\n", err)
		return exitConfig
	}
	for _, w := range v.Tables().Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}

	if config.InputDir != "" {
		return runDirectory(ctx, v, config)
	}
	return runSingle(ctx, v, config)
}

// runSingle validates one message from a file or stdin.
func runSingle(ctx context.Context, v *engine.Validator, config *Config) int {
	raw, source, err := readMessage(config.InputFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfig
	}

	start := time.Now()
	report, err := v.Validate(ctx, raw)
	elapsed := time.Since(start)

	out, code, ferr := reportWriter(source, config)
	if ferr != nil {
		fmt.Fprintln(os.Stderr, ferr)
		return exitConfig
	}
	defer closeWriter(out)

	writeReport(out, source, report, elapsed, config)
	if err != nil {
		return exitFindings
	}
	return code(report)
}

// runDirectory validates every file in the input directory through a worker
// pool, writing one report per message.
func runDirectory(ctx context.Context, v *engine.Validator, config *Config) int {
	entries, err := os.ReadDir(config.InputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read input directory: %v\n", err)
		return exitConfig
	}

	pool := worker.NewPool(v, config.Workers)
	submitted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(config.InputDir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", path, err)
			continue
		}
		job := worker.NewJob(normalize(raw))
		job.Source = path
		pool.Submit(job)
		submitted++
	}

	batch := pool.CloseAndWait()
	if submitted == 0 {
		fmt.Fprintln(os.Stderr, "no message files found")
		return exitConfig
	}

	exit := exitOK
	for _, result := range batch.Results {
		out, code, ferr := reportWriter(result.Source, config)
		if ferr != nil {
			fmt.Fprintln(os.Stderr, ferr)
			exit = exitConfig
			continue
		}
		writeReport(out, result.Source, result.Report, time.Duration(result.Duration), config)
		closeWriter(out)

		if result.Err != nil {
			exit = max(exit, exitFindings)
		} else {
			exit = max(exit, code(result.Report))
		}
	}
	return exit
}

// readMessage reads a message from a file, or stdin for "-" or empty.
func readMessage(path string) ([]byte, string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("reading stdin: %w", err)
		}
		return normalize(data), "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	return normalize(data), path, nil
}

// normalize converts file line endings to segment terminators.
func normalize(data []byte) []byte {
	text := strings.ReplaceAll(string(data), "\r\n", "\r")
	text = strings.ReplaceAll(text, "\n", "\r")
	return []byte(strings.TrimRight(text, "\r"))
}

// reportWriter opens the report destination for one message: stdout for
// stdin input, otherwise <basename>.rpt in the report directory.
func reportWriter(source string, config *Config) (io.WriteCloser, func(*hl7validator.Report) int, error) {
	verdict := func(r *hl7validator.Report) int {
		if r == nil || !r.Valid {
			return exitFindings
		}
		return exitOK
	}
	if source == "" {
		return nopCloser{os.Stdout}, verdict, nil
	}

	base := filepath.Base(source)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".rpt"
	dir := config.ReportDir
	if dir == "" {
		dir = filepath.Dir(source)
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create report file %s: %w", name, err)
	}
	return f, verdict, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func closeWriter(w io.WriteCloser) {
	if err := w.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "closing report: %v\n", err)
	}
}

func writeReport(w io.Writer, source string, report *hl7validator.Report, elapsed time.Duration, config *Config) {
	if report == nil {
		return
	}
	if config.Output == OutputJSON {
		writeJSON(w, source, report, elapsed, config)
		return
	}
	writeText(w, source, report, elapsed, config)
}

func writeText(w io.Writer, source string, report *hl7validator.Report, elapsed time.Duration, config *Config) {
	name := source
	if name == "" {
		name = "<stdin>"
	}

	verdict := "VALID"
	if !report.Valid {
		verdict = "INVALID"
	}
	fmt.Fprintf(w, "%s: %s (%d errors, %d warnings, %s)\n",
		name, verdict, report.ErrorCount(), len(report.Warnings()), elapsed.Round(time.Microsecond))
	if report.Structure != "" {
		fmt.Fprintf(w, "message structure: %s\n", report.Structure)
	}
	if config.Quiet {
		return
	}

	for _, f := range report.Findings {
		loc := f.Location.String()
		if loc != "" {
			fmt.Fprintf(w, "  [%s] %s at %s: %s\n", f.Severity, f.Type, loc, f.Diagnostics)
		} else {
			fmt.Fprintf(w, "  [%s] %s: %s\n", f.Severity, f.Type, f.Diagnostics)
		}
	}
}

func writeJSON(w io.Writer, source string, report *hl7validator.Report, elapsed time.Duration, config *Config) {
	out := ValidationOutput{
		Message:   source,
		Structure: report.Structure,
		Valid:     report.Valid,
		Errors:    report.ErrorCount(),
		Warnings:  len(report.Warnings()),
		Duration:  elapsed.String(),
	}
	if out.Message == "" {
		out.Message = "<stdin>"
	}
	if !config.Quiet {
		for _, f := range report.Findings {
			out.Findings = append(out.Findings, FindingOutput{
				Severity:    string(f.Severity),
				Type:        string(f.Type),
				Location:    f.Location.String(),
				Value:       f.Value,
				Diagnostics: f.Diagnostics,
			})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "encoding report: %v\n", err)
	}
}
