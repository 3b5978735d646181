package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/plandex"
	"github.com/kailas-cloud/plandex/internal/chunker"
	logpkg "github.com/kailas-cloud/plandex/internal/logger"
	"github.com/kailas-cloud/plandex/internal/version"
)

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	taxonomy string
	logLevel string

	engine *plandex.Engine
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "plandexctl",
		Short: "Keyword tooling for Porto Alegre planning documents",
		Long: `plandexctl detects urban-planning keywords, annotates document
fragments and classifies queries locally, using the same taxonomy
as the plandex server.`,
		Version:       version.String(),
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.setup()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}
	cmd.SetVersionTemplate("plandexctl version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&opts.taxonomy, "taxonomy", os.Getenv("TAXONOMY_FILE"),
		"Taxonomy YAML file (default: built-in Porto Alegre taxonomy)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(newDetectCmd(opts))
	cmd.AddCommand(newAnnotateCmd(opts))
	cmd.AddCommand(newSuggestCmd(opts))
	cmd.AddCommand(newAnalyzeCmd(opts))
	cmd.AddCommand(newFilterCmd(opts))

	return cmd
}

func (o *rootOptions) setup() error {
	logger, err := logpkg.NewLogger("cli", o.logLevel)
	if err != nil {
		return err
	}
	o.logger = logger

	var engineOpts []plandex.Option
	if o.taxonomy != "" {
		engineOpts = append(engineOpts, plandex.WithTaxonomyFile(o.taxonomy))
	}
	// One-shot commands analyze a single query.
	engineOpts = append(engineOpts, plandex.WithAnalyzerCacheSize(0))

	engine, err := plandex.New(engineOpts...)
	if err != nil {
		return err
	}
	o.engine = engine
	logger.Debug("Engine ready",
		zap.String("taxonomy", o.taxonomy),
		zap.String("taxonomy_version", engine.TaxonomyVersion()),
	)
	return nil
}

// splitOptions controls how a document file is split into fragments.
type splitOptions struct {
	size    int
	overlap int
}

func (s *splitOptions) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&s.size, "fragment-size", chunker.DefaultMaxRunes, "Maximum characters per fragment")
	cmd.Flags().IntVar(&s.overlap, "overlap", 0, "Sentences repeated between consecutive fragments")
}

// readFragments splits the file at path into fragments named after the file.
func (s *splitOptions) readFragments(path string) ([]plandex.Fragment, error) {
	if s.size <= 0 {
		return nil, fmt.Errorf("--fragment-size must be positive, got %d", s.size)
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	docID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := chunker.New(s.size, s.overlap).Split(string(data))
	frs := make([]plandex.Fragment, len(parts))
	for i, p := range parts {
		frs[i] = plandex.Fragment{DocumentID: docID, Index: i, Content: p}
	}
	return frs, nil
}

// readText returns the joined args, or stdin when there are none.
func readText(in io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
