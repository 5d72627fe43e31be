// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"text-redact/internal/audit"
	"text-redact/internal/catalog"
	"text-redact/internal/config"
	"text-redact/internal/engine"
	"text-redact/internal/rulestore"
	"text-redact/internal/security"
	"text-redact/internal/version"
)

func main() {
	var (
		filePath    = flag.String("file", "", "Read input text from a file instead of stdin")
		textInput   = flag.String("text", "", "Redact the given text directly")
		outputPath  = flag.String("output", "", "Write redacted text to a file instead of stdout")
		categories  = flag.String("categories", "", "Comma-separated categories to redact (default: derive from sensitivity)")
		sensitivity = flag.String("sensitivity", "", "Sensitivity level: low, medium, or high")
		tier        = flag.String("tier", "advanced", "Preferred detection tier: advanced, rule_based, or minimal")
		analyze     = flag.Bool("analyze", false, "Report detected values per category without redacting")
		markers     = flag.Bool("markers", false, "Use [CATEGORY:TYPE] markers instead of generated pseudonyms")
		allow       = flag.String("allow", "", "Comma-separated exact values to never redact (merged with config allowlist)")
		configFile  = flag.String("config", "", "Path to the configuration file")
		rulesFile   = flag.String("rules-file", "", "Path to the custom rules YAML file")
		auditLog    = flag.String("audit-log", "", "Append audit events to this file")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
		quiet       = flag.Bool("quiet", false, "Suppress the redaction summary")
		showVersion = flag.Bool("version", false, "Print version information and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	cfg := loadConfiguration(*configFile)
	if *rulesFile == "" {
		*rulesFile = cfg.RulesFile
	}
	if *auditLog == "" {
		*auditLog = cfg.AuditLog
	}
	if cfg.Defaults.NoColor {
		*noColor = true
	}
	if cfg.Defaults.Markers {
		*markers = true
	}
	if *sensitivity == "" {
		*sensitivity = cfg.Defaults.Sensitivity
	}
	if *noColor || !isTerminal(os.Stdout) {
		color.NoColor = true
	}

	cat := buildCatalog(*rulesFile)
	eng, auditClose := buildEngine(cat, cfg, *markers, *auditLog, parseAllowlist(*allow, cfg.Allowlist))
	defer auditClose()

	if err := eng.SetSensitivity(*sensitivity); err != nil {
		fatalf("invalid sensitivity level %q: use low, medium, or high", *sensitivity)
	}

	input, err := readInput(*textInput, *filePath)
	if err != nil {
		fatalf("reading input: %v", err)
	}
	defer input.Clear()
	text := input.String()

	if *analyze {
		printAnalysis(eng.Analyze(text))
		return
	}

	result, err := eng.Redact(text, engine.Options{
		Categories:    parseCategories(*categories),
		PreferredTier: engine.ParseTier(*tier),
		Markers:       *markers,
	})
	if err != nil {
		fatalf("redaction failed: %v", err)
	}

	if err := writeOutput(*outputPath, result.Text); err != nil {
		fatalf("writing output: %v", err)
	}
	if !*quiet && !cfg.Defaults.Quiet {
		printSummary(text, result)
	}
}

// loadConfiguration loads the configuration file or returns default config.
func loadConfiguration(configFile string) *config.Config {
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: error loading config file: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
	}
	return cfg
}

// buildCatalog constructs the rule catalog, wiring the YAML rule store when
// a rules file is configured. Invalid persisted rules are reported and
// skipped, never silently matched.
func buildCatalog(rulesFile string) *catalog.Catalog {
	if rulesFile == "" {
		return catalog.New()
	}
	cat, err := catalog.NewWithStore(rulestore.New(rulesFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return cat
}

// buildEngine assembles the redaction engine and returns it with a cleanup
// function for the audit log handle.
func buildEngine(cat *catalog.Catalog, cfg *config.Config, markers bool, auditLog string, allowlist []string) (*engine.Engine, func()) {
	opts := []engine.Option{
		engine.WithMaxChunkSize(cfg.Detection.MaxChunkSize),
		engine.WithAllowlist(allowlist),
	}
	if markers {
		opts = append(opts, engine.WithMarkers())
	}

	closeFn := func() {}
	if auditLog != "" {
		f, err := os.OpenFile(auditLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open audit log %s: %v\n", auditLog, err)
		} else {
			opts = append(opts, engine.WithAuditSink(audit.NewJSONSink(f)))
			closeFn = func() { f.Close() }
		}
	}
	return engine.New(cat, opts...), closeFn
}

// readInput resolves the input text: -text wins, then -file, then stdin.
// The returned buffer owns the raw bytes so main can scrub them after the
// redacted output is written.
func readInput(text, filePath string) (*security.SensitiveBuffer, error) {
	if text != "" {
		return security.NewSensitiveBuffer(text), nil
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		return security.FromBytes(data), nil
	}
	if isTerminal(os.Stdin) {
		fmt.Fprintln(os.Stderr, "Reading from stdin; end input with Ctrl-D")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, err
	}
	return security.FromBytes(data), nil
}

func writeOutput(path, text string) error {
	if path == "" {
		_, err := fmt.Print(text)
		return err
	}
	return os.WriteFile(path, []byte(text), 0o600)
}

func parseCategories(s string) []catalog.Category {
	if s == "" {
		return nil
	}
	var categories []catalog.Category
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			categories = append(categories, catalog.Category(strings.ToUpper(part)))
		}
	}
	return categories
}

// parseAllowlist merges the -allow flag with the configured allowlist.
func parseAllowlist(flagValue string, configured []string) []string {
	merged := make([]string, 0, len(configured))
	merged = append(merged, configured...)
	for _, part := range strings.Split(flagValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			merged = append(merged, part)
		}
	}
	return merged
}

func printAnalysis(found map[catalog.Category][]string) {
	if len(found) == 0 {
		color.New(color.FgGreen).Fprintln(os.Stderr, "No sensitive data detected")
		return
	}

	categories := make([]string, 0, len(found))
	for category := range found {
		categories = append(categories, string(category))
	}
	sort.Strings(categories)

	header := color.New(color.FgCyan, color.Bold)
	for _, category := range categories {
		header.Printf("%s (%d)\n", category, len(found[catalog.Category(category)]))
		for _, match := range found[catalog.Category(category)] {
			fmt.Printf("  %s\n", match)
		}
	}
}

func printSummary(input string, result engine.Result) {
	if result.Total() == 0 {
		if input != "" && result.Text == input {
			// Either nothing sensitive was found or every tier failed and
			// the original text came back; both deserve a heads-up.
			color.New(color.FgYellow).Fprintln(os.Stderr,
				"Warning: no redactions performed; output equals input")
		}
		return
	}

	categories := make([]string, 0, len(result.Stats))
	for category := range result.Stats {
		categories = append(categories, string(category))
	}
	sort.Strings(categories)

	green := color.New(color.FgGreen)
	green.Fprintf(os.Stderr, "Redacted %d value(s):\n", result.Total())
	for _, category := range categories {
		fmt.Fprintf(os.Stderr, "  %-12s %d\n", category, result.Stats[catalog.Category(category)])
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func fatalf(format string, args ...any) {
	color.New(color.FgRed).Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
