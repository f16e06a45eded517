package main

import (
	"fmt"
	"io"
	"strings"

	"cybot-be/internal/bootstrap"
	"cybot-be/internal/pkg/logger"
	"cybot-be/pkg/complaint/intent"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text]",
	Short: "Show how an utterance is classified",
	Long: `Prints the filing and retrieval signals for a message, with the
evidence that produced them and the best fuzzy score.

Example:
  cybot classify "I want to file a complaint"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	classifier := bootstrap.NewClassifier(cfg, logger.NewNopLogger())

	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Text:      %q\n", text)
	fmt.Fprintf(out, "Threshold: %.2f  NLP: %v\n", classifier.Threshold(), classifier.NLPEnabled())
	for _, kind := range []intent.Kind{intent.KindFiling, intent.KindRetrieval} {
		printSignal(out, classifier.Classify(text, kind))
	}
	return nil
}

func printSignal(out io.Writer, s intent.Signal) {
	label := fmt.Sprintf("%-10s", s.Kind)
	if s.Matched {
		color.New(color.FgGreen, color.Bold).Fprint(out, label)
	} else {
		color.New(color.Faint).Fprint(out, label)
	}
	fmt.Fprintf(out, " matched=%-5v method=%-8s score=%5.1f phrase=%q\n", s.Matched, s.Method, s.Score, s.Phrase)
}
