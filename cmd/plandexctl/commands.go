package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/plandex"
)

type keywordOutput struct {
	Text       string  `json:"text"`
	Category   string  `json:"category"`
	Position   int     `json:"position"`
	Length     int     `json:"length"`
	Confidence float64 `json:"confidence"`
	Context    string  `json:"context,omitempty"`
}

type fragmentOutput struct {
	Index               int             `json:"index"`
	Content             string          `json:"content,omitempty"`
	Keywords            []keywordOutput `json:"keywords"`
	PriorityScore       float64         `json:"priority_score"`
	HasComposite        bool            `json:"has_composite"`
	LegalReferenceCount int             `json:"legal_reference_count"`
}

type summaryOutput struct {
	TotalKeywords         int            `json:"total_keywords"`
	ByCategory            map[string]int `json:"by_category"`
	TopComposite          []string       `json:"top_composite"`
	LegalReferences       []string       `json:"legal_references"`
	HighPriorityFragments int            `json:"high_priority_fragments"`
	AveragePriority       float64        `json:"average_priority"`
}

type annotateOutput struct {
	Document  string           `json:"document"`
	Fragments []fragmentOutput `json:"fragments"`
	Summary   summaryOutput    `json:"summary"`
}

type analyzeOutput struct {
	Query      string          `json:"query"`
	Strategy   string          `json:"strategy"`
	Categories []string        `json:"categories"`
	Keywords   []keywordOutput `json:"keywords"`
}

func newDetectCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "detect [text...]",
		Short: "Print the keywords found in text (stdin when no text is given)",
		Example: `  plandexctl detect "altura máxima na ZOT 8.2"
  cat artigo.txt | plandexctl detect`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), toKeywordOutputs(root.engine.DetectKeywords(text)))
		},
	}
}

func newAnnotateCmd(root *rootOptions) *cobra.Command {
	var split splitOptions
	var withContent bool

	cmd := &cobra.Command{
		Use:   "annotate <file>",
		Short: "Split a document into fragments and print their annotations and summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frs, err := split.readFragments(args[0])
			if err != nil {
				return err
			}
			annotated := root.engine.Annotate(frs)
			root.logger.Debug("Document annotated",
				zap.String("file", args[0]),
				zap.Int("fragments", len(annotated)),
			)

			out := annotateOutput{
				Fragments: make([]fragmentOutput, len(annotated)),
				Summary:   toSummaryOutput(root.engine.Summarize(annotated)),
			}
			for i, a := range annotated {
				out.Document = a.Fragment.DocumentID
				out.Fragments[i] = toFragmentOutput(a, withContent)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	split.register(cmd)
	cmd.Flags().BoolVar(&withContent, "content", false, "Include fragment text in the output")
	return cmd
}

func newSuggestCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <partial>",
		Short: "Print query completions, one per line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range root.engine.Suggest(strings.Join(args, " ")) {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), s); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <query>",
		Short: "Classify a query and print its keywords and retrieval strategy",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			a := root.engine.AnalyzeQuery(query)
			out := analyzeOutput{
				Query:      query,
				Strategy:   string(a.Strategy),
				Categories: make([]string, len(a.Categories)),
				Keywords:   toKeywordOutputs(a.Keywords),
			}
			for i, c := range a.Categories {
				out.Categories[i] = string(c)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newFilterCmd(root *rootOptions) *cobra.Command {
	var split splitOptions
	var top int

	cmd := &cobra.Command{
		Use:   "filter <file> <query>",
		Short: "Print the fragments of a document relevant to a query, highest priority first",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			frs, err := split.readFragments(args[0])
			if err != nil {
				return err
			}
			kept := root.engine.Filter(root.engine.Annotate(frs), strings.Join(args[1:], " "), top)
			out := make([]fragmentOutput, len(kept))
			for i, a := range kept {
				out[i] = toFragmentOutput(a, true)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	split.register(cmd)
	cmd.Flags().IntVarP(&top, "top", "n", 10, "Maximum number of fragments")
	return cmd
}

func toKeywordOutputs(kws []plandex.Keyword) []keywordOutput {
	out := make([]keywordOutput, len(kws))
	for i, k := range kws {
		out[i] = keywordOutput{
			Text:       k.Text,
			Category:   string(k.Category),
			Position:   k.Position,
			Length:     k.Length,
			Confidence: k.Confidence,
			Context:    k.Context,
		}
	}
	return out
}

func toFragmentOutput(a plandex.AnnotatedFragment, withContent bool) fragmentOutput {
	out := fragmentOutput{
		Index:               a.Fragment.Index,
		Keywords:            toKeywordOutputs(a.Score.Keywords),
		PriorityScore:       a.Score.PriorityScore,
		HasComposite:        a.Score.HasComposite,
		LegalReferenceCount: a.Score.LegalReferenceCount,
	}
	if withContent {
		out.Content = a.Fragment.Content
	}
	return out
}

func toSummaryOutput(s plandex.Summary) summaryOutput {
	out := summaryOutput{
		TotalKeywords:         s.TotalKeywords,
		ByCategory:            make(map[string]int, len(s.ByCategory)),
		TopComposite:          nonNil(s.TopComposite),
		LegalReferences:       nonNil(s.LegalReferences),
		HighPriorityFragments: s.HighPriorityFragments,
		AveragePriority:       s.AveragePriority,
	}
	for c, n := range s.ByCategory {
		out.ByCategory[string(c)] = n
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
