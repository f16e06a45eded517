package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var watch bool

var indexCmd = &cobra.Command{
	Use:   "index [paths...]",
	Short: "Index documents for question answering",
	Long: `Splits, embeds and stores the given files or directories. Paths are
relative to DOCUMENTS_DIR; without arguments the whole directory is indexed.

Example:
  cybot index
  cybot index faq.md policies --watch`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&watch, "watch", false, "keep running and re-index files as they change")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg.Documents.Watch = watch

	c, err := boot(ctx)
	if err != nil {
		return err
	}

	files, skipped, err := c.IndexerService.Discover(args)
	if err != nil {
		return err
	}
	for _, s := range skipped {
		color.Yellow("skip  %s", s)
	}

	var total, failed int
	for _, f := range files {
		n, err := c.IndexerService.IndexFile(ctx, f)
		if err != nil {
			failed++
			color.Red("fail  %s: %v", f, err)
			continue
		}
		total += n
		color.Green("ok    %s (%d chunks)", f, n)
	}
	fmt.Printf("%d documents, %d chunks, %d failed\n", len(files)-failed, total, failed)

	if !watch {
		return nil
	}
	color.Cyan("Watching %s for changes (Ctrl+C to stop)", cfg.Documents.Dir)
	<-ctx.Done()
	return nil
}
