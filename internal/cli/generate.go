package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mark3labs/openapi2md/internal/emitter/mdemitter"
	"github.com/mark3labs/openapi2md/internal/markdown"
	"github.com/mark3labs/openapi2md/internal/schema"
	genspec "github.com/mark3labs/openapi2md/internal/spec"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	sectionSummary = "summary"
	sectionDetail  = "detail"

	localeEnv = "OPENAPI2MD_LOCALE"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input         string
	Out           string
	Split         bool
	Sections      []string
	Locale        string
	IncludeTags   []string
	ExcludeTags   []string
	Methods       []string
	Paths         []string
	Validate      bool
	AllowFileRefs bool
	ConfigPath    string
	DryRun        bool
	Force         bool
	Verbose       bool

	stdout io.Writer
	stderr io.Writer
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Sections: []string{sectionSummary, sectionDetail},
		Locale:   os.Getenv(localeEnv),
	}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [input]",
		Short: "Generate markdown documentation from an OpenAPI/Swagger document",
		Long: "Generate markdown documentation from an OpenAPI/Swagger document. " +
			"Without --out the markdown is printed to standard output. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  openapi2md generate openapi.yaml
  openapi2md generate --input https://example.com/openapi.json --locale en --sections summary
  openapi2md --config openapi2md.yaml generate --out ./docs --split --force`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd, args)
			if err != nil {
				return err
			}
			cfg.stdout = cmd.OutOrStdout()
			cfg.stderr = cmd.ErrOrStderr()
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document (or pass it as the argument)")
	flags.String("out", "", "Output directory; prints to stdout when omitted")
	flags.Bool("split", false, "Write summary.md and detail.md instead of README.md")
	flags.StringSlice("sections", nil, "Sections to render (summary,detail); defaults to both")
	flags.String("locale", "", "Language of headings and placeholders (ja|en); defaults to $"+localeEnv+" or ja")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.StringSlice("methods", nil, "Only include operations with these HTTP methods")
	flags.StringSlice("paths", nil, "Only include paths matching these regular expressions")
	flags.Bool("validate", false, "Run the OpenAPI validator and log what it finds (never fails)")
	flags.Bool("allow-file-refs", false, "Allow $refs to local files when the input is a URL")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output files")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command, args []string) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if len(args) > 0 {
		cfg.Input = args[0]
	}
	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}
	if len(args) > 0 && cmd.Flags().Changed("input") && strings.TrimSpace(args[0]) != cfg.Input {
		return nil, newUsageError("generate: input given both as argument and --input")
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{"input", &cfg.Input},
		{"out", &cfg.Out},
		{"locale", &cfg.Locale},
	}
	for _, f := range strs {
		if !flags.Changed(f.name) {
			continue
		}
		value, err := flags.GetString(f.name)
		if err != nil {
			return err
		}
		*f.dst = strings.TrimSpace(value)
	}

	lists := []struct {
		name string
		dst  *[]string
	}{
		{"sections", &cfg.Sections},
		{"include-tags", &cfg.IncludeTags},
		{"exclude-tags", &cfg.ExcludeTags},
		{"methods", &cfg.Methods},
		{"paths", &cfg.Paths},
	}
	for _, f := range lists {
		if !flags.Changed(f.name) {
			continue
		}
		value, err := flags.GetStringSlice(f.name)
		if err != nil {
			return err
		}
		*f.dst = sanitizeList(value)
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"split", &cfg.Split},
		{"validate", &cfg.Validate},
		{"allow-file-refs", &cfg.AllowFileRefs},
		{"dry-run", &cfg.DryRun},
		{"force", &cfg.Force},
		{"verbose", &cfg.Verbose},
	}
	for _, f := range bools {
		if !flags.Changed(f.name) {
			continue
		}
		value, err := flags.GetBool(f.name)
		if err != nil {
			return err
		}
		*f.dst = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.Locale = strings.TrimSpace(c.Locale)
	c.Sections = sanitizeList(c.Sections)
	for i, s := range c.Sections {
		c.Sections[i] = strings.ToLower(s)
	}
	c.IncludeTags = sanitizeList(c.IncludeTags)
	c.ExcludeTags = sanitizeList(c.ExcludeTags)
	c.Methods = sanitizeList(c.Methods)
	c.Paths = sanitizeList(c.Paths)
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via argument, flag or config file)")
	}

	if len(c.Sections) == 0 {
		c.Sections = []string{sectionSummary, sectionDetail}
	}
	for _, s := range c.Sections {
		if s != sectionSummary && s != sectionDetail {
			return newUsageError(fmt.Sprintf("generate: unsupported section %q (allowed: summary, detail)", s))
		}
	}

	if _, err := markdown.LocaleFor(c.Locale); err != nil {
		return newUsageError(fmt.Sprintf("generate: %v", err))
	}

	for _, m := range c.Methods {
		if _, ok := genspec.ParseMethod(m); !ok {
			return newUsageError(fmt.Sprintf("generate: unsupported method %q", m))
		}
	}
	for _, p := range c.Paths {
		if _, err := regexp.Compile(p); err != nil {
			return newUsageError(fmt.Sprintf("generate: invalid path pattern %q: %v", p, err))
		}
	}

	overlap := intersect(c.IncludeTags, c.ExcludeTags)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}

	if c.Out == "" && (c.Split || c.DryRun) {
		return newUsageError("generate: --split and --dry-run require --out")
	}

	return nil
}

func (c *GenerateConfig) wants(section string) bool {
	for _, s := range c.Sections {
		if s == section {
			return true
		}
	}
	return false
}

func (c *GenerateConfig) out() io.Writer {
	if c.stdout == nil {
		return os.Stdout
	}
	return c.stdout
}

func (c *GenerateConfig) errOut() io.Writer {
	if c.stderr == nil {
		return os.Stderr
	}
	return c.stderr
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	lg := newLogger(cfg.errOut(), cfg.Verbose)

	loc, err := markdown.LocaleFor(cfg.Locale)
	if err != nil {
		return newUsageError(fmt.Sprintf("generate: %v", err))
	}

	// 1) Load and resolve the spec (file or http/https URL)
	lg.Debugf("loading %s", cfg.Input)
	tree, err := genspec.Load(ctx, cfg.Input,
		genspec.WithValidation(cfg.Validate),
		genspec.WithAllowFileRefs(cfg.AllowFileRefs),
		genspec.WithLogger(lg.Logger),
	)
	if err != nil {
		var se *genspec.SpecError
		if errors.As(err, &se) {
			msg := fmt.Sprintf("spec: %s", se.Message)
			if se.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			if se.JSONPointer != "" {
				msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
			}
			return newUsageError(msg)
		}
		return err
	}

	// 2) Extract endpoints and render markdown
	doc, err := renderDocument(tree, cfg, loc, lg)
	if err != nil {
		if errors.Is(err, genspec.ErrMissingPaths) || errors.Is(err, genspec.ErrMalformed) || errors.Is(err, schema.ErrInvalidSchema) {
			return newUsageError(fmt.Sprintf("render %s: %v", cfg.Input, err))
		}
		return fmt.Errorf("render %s: %w", cfg.Input, err)
	}

	// 3) Print or write files
	if cfg.Out == "" {
		_, err := io.WriteString(cfg.out(), doc.String())
		return err
	}

	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}
	res, err := mdemitter.Emit(ctx, doc, mdemitter.Options{
		OutDir: cfg.Out,
		Split:  cfg.Split,
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}
	if cfg.DryRun {
		paths := make([]string, 0, len(res.Planned))
		for _, p := range res.Planned {
			paths = append(paths, p.RelPath)
		}
		printPlan(cfg.out(), absOut, paths)
		return nil
	}
	for _, p := range res.Planned {
		lg.Debugf("wrote %s (%d bytes)", filepath.Join(absOut, p.RelPath), p.Size)
	}
	return nil
}

func renderDocument(tree *genspec.Value, cfg *GenerateConfig, loc markdown.Locale, lg *logger) (*markdown.Document, error) {
	endpoints, err := genspec.Extract(tree,
		genspec.WithIncludeTags(cfg.IncludeTags),
		genspec.WithExcludeTags(cfg.ExcludeTags),
		genspec.WithMethods(cfg.Methods),
		genspec.WithPathPatterns(cfg.Paths),
	)
	if err != nil {
		return nil, err
	}
	if len(endpoints) == 0 {
		lg.Warnf("%s: no endpoints to document", cfg.Input)
	}
	lg.Debugf("rendering %d endpoint(s)", len(endpoints))
	return markdown.Build(endpoints, markdown.Options{
		Locale:  loc,
		Summary: cfg.wants(sectionSummary),
		Detail:  cfg.wants(sectionDetail),
	})
}

func printPlan(w io.Writer, outDir string, relPaths []string) {
	fmt.Fprintf(w, "Planned writes to %s (%d files):\n", outDir, len(relPaths))
	for _, p := range relPaths {
		fmt.Fprintf(w, "- %s\n", p)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}

func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		var err error
		switch normalizeKey(key) {
		case "input":
			cfg.Input, err = valueAsString(value)
		case "out":
			cfg.Out, err = valueAsString(value)
		case "locale":
			cfg.Locale, err = valueAsString(value)
		case "split":
			cfg.Split, err = valueAsBool(value)
		case "sections":
			cfg.Sections, err = valueAsStringSlice(value)
		case "includetags":
			cfg.IncludeTags, err = valueAsStringSlice(value)
		case "excludetags":
			cfg.ExcludeTags, err = valueAsStringSlice(value)
		case "methods":
			cfg.Methods, err = valueAsStringSlice(value)
		case "paths":
			cfg.Paths, err = valueAsStringSlice(value)
		case "validate":
			cfg.Validate, err = valueAsBool(value)
		case "allowfilerefs":
			cfg.AllowFileRefs, err = valueAsBool(value)
		case "dryrun":
			cfg.DryRun, err = valueAsBool(value)
		case "force":
			cfg.Force, err = valueAsBool(value)
		case "verbose":
			cfg.Verbose, err = valueAsBool(value)
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
		if err != nil {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
