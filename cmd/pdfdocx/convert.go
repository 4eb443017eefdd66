// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfdocx/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert <source.pdf> [destination.docx]",
	Short: "Convert one PDF file to DOCX",
	Long: `Convert turns a PDF file into a DOCX file. The destination defaults to the
source path with a .docx extension.

An existing destination is never replaced unless --overwrite is given; with
--backup it is first copied to <destination>.bak. Use --start-page and
--end-page (0-based, inclusive) to convert part of a document, --progress to
follow page-by-page progress, and --multi-processing to split the pages
across parallel workers.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConvert,
}

func init() {
	addConversionFlags(convertCmd)
	convertCmd.Flags().Bool("progress", false, "convert page by page and show a progress bar")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	opts, err := optionsFromFlags(cmd, v)
	if err != nil {
		return err
	}
	cfg, err := convert.NewConfig(opts)
	if err != nil {
		return err
	}

	eng, err := detectEngine(v)
	if err != nil {
		return &convert.Error{Kind: convert.ConversionEngineError, Page: convert.NoPage, Message: "no engine", Err: err}
	}

	source, destination := args[0], ""
	if len(args) > 1 {
		destination = args[1]
	}

	stderr := cmd.ErrOrStderr()
	c, err := convert.New(source, destination, cfg, convert.Deps{
		Engine:  eng,
		Console: stderr,
		NoColor: color.NoColor,
	})
	if err != nil {
		return err
	}
	defer c.Close()

	j := openJournal(v, stderr)
	defer j.close()

	quiet, _ := cmd.Flags().GetBool("quiet")
	progress, _ := cmd.Flags().GetBool("progress")
	ctx := cmd.Context()

	o := convert.Outcome{Source: source, Destination: c.Destination(), StartedAt: time.Now()}
	if progress && !quiet {
		bar := newPageBar(stderr, filepath.Base(source))
		c.SetProgress(bar.update)
		o.Path, o.Err = c.ConvertWithProgress(ctx)
		bar.stop()
	} else if progress {
		o.Path, o.Err = c.ConvertWithProgress(ctx)
	} else {
		stop := startSpinner(stderr, !quiet && !cfg.Verbose() && isTerminal(stderr), "converting "+filepath.Base(source))
		o.Path, o.Err = c.Convert(ctx)
		stop()
	}
	o.Duration = time.Since(o.StartedAt)
	o.Pages = c.Pages()
	o.Kind = convert.KindOf(o.Err)
	j.record(ctx, o)

	if o.Err != nil {
		return o.Err
	}
	if !quiet {
		size := ""
		if st, err := os.Stat(o.Path); err == nil {
			size = ", " + humanSize(st.Size())
		}
		printSuccess(cmd.OutOrStdout(), "converted %s -> %s (%d pages%s, %s)",
			source, o.Path, o.Pages, size, o.Duration.Round(time.Millisecond))
	}
	return nil
}
