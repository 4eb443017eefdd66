// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfdocx/internal/convert"
	"github.com/pdiddy/pdfdocx/internal/history"
	"github.com/pdiddy/pdfdocx/internal/manifest"
)

var batchCmd = &cobra.Command{
	Use:   "batch [sources...]",
	Short: "Convert many PDF files, isolating failures",
	Long: `Batch converts every source given on the command line (directories are
scanned for .pdf files) plus every job of an optional YAML manifest. A failing
file is reported and the rest continue. Results are printed in input order
followed by a summary; the command fails if any conversion failed.

Manifest format:

  defaults:
    overwrite: true
  jobs:
    - source: a.pdf
    - source: b.pdf
      destination: out/b.docx
      start_page: 2`,
	RunE: runBatch,
}

func init() {
	addConversionFlags(batchCmd)
	batchCmd.Flags().String("manifest", "", "YAML manifest of conversion jobs")
	batchCmd.Flags().String("out-dir", "", "directory for outputs without an explicit destination")
	batchCmd.Flags().Int("jobs", 1, "number of files converted at once")
	batchCmd.Flags().Bool("json", false, "print results as JSON")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	opts, err := optionsFromFlags(cmd, v)
	if err != nil {
		return err
	}
	cfg, err := convert.NewConfig(opts)
	if err != nil {
		return err
	}

	sources, err := expandSources(args)
	if err != nil {
		return err
	}
	reqs := make([]convert.Request, 0, len(sources))
	for _, s := range sources {
		reqs = append(reqs, convert.Request{Source: s, Config: &cfg})
	}

	if path, _ := cmd.Flags().GetString("manifest"); path != "" {
		jobs, err := manifest.Load(path, opts)
		if err != nil {
			return err
		}
		reqs = append(reqs, jobs...)
	}
	if len(reqs) == 0 {
		return fmt.Errorf("nothing to convert: give source files, directories, or --manifest")
	}

	outDir, _ := cmd.Flags().GetString("out-dir")
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		routeToDir(reqs, outDir)
	}

	eng, err := detectEngine(v)
	if err != nil {
		return &convert.Error{Kind: convert.ConversionEngineError, Page: convert.NoPage, Message: "no engine", Err: err}
	}

	stderr := cmd.ErrOrStderr()
	j := openJournal(v, stderr)
	defer j.close()
	if j != nil {
		j.batchID = history.NewBatchID()
	}

	jobs, _ := cmd.Flags().GetInt("jobs")
	deps := convert.Deps{Engine: eng, Console: stderr, NoColor: color.NoColor}
	outcomes := convert.ConvertMany(cmd.Context(), reqs, deps, convert.BatchOptions{Jobs: jobs})
	for _, o := range outcomes {
		j.record(cmd.Context(), o)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	var res convert.BatchResult
	if jsonOutput {
		res = convert.Summarize(outcomes)
		if err := writeOutcomesJSON(cmd.OutOrStdout(), outcomes); err != nil {
			return err
		}
	} else {
		res = convert.WriteSummary(cmd.OutOrStdout(), outcomes)
	}

	if res.HasFailures() {
		return &batchFailure{failed: res.Failed, total: res.Total()}
	}
	return nil
}

// expandSources replaces each directory in args with the PDF files directly
// inside it, sorted by name. Other arguments pass through unchanged.
func expandSources(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		st, err := os.Stat(a)
		if err != nil || !st.IsDir() {
			out = append(out, a)
			continue
		}
		entries, err := os.ReadDir(a)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", a, err)
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
				found = append(found, filepath.Join(a, e.Name()))
			}
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}

// routeToDir sends every request without an explicit destination to dir.
func routeToDir(reqs []convert.Request, dir string) {
	for i := range reqs {
		if reqs[i].Destination == "" {
			reqs[i].Destination = filepath.Join(dir, filepath.Base(convert.DestinationFor(reqs[i].Source)))
		}
	}
}

type outcomeJSON struct {
	Source      string  `json:"source"`
	Destination string  `json:"destination"`
	Status      string  `json:"status"`
	Pages       int     `json:"pages"`
	ErrorKind   string  `json:"error_kind,omitempty"`
	Error       string  `json:"error,omitempty"`
	Seconds     float64 `json:"seconds"`
}

func writeOutcomesJSON(w io.Writer, outcomes []convert.Outcome) error {
	out := make([]outcomeJSON, len(outcomes))
	for i, o := range outcomes {
		out[i] = outcomeJSON{
			Source:      o.Source,
			Destination: o.Destination,
			Status:      string(o.Status()),
			Pages:       o.Pages,
			ErrorKind:   string(o.Kind),
			Seconds:     o.Duration.Seconds(),
		}
		if o.Err != nil {
			out[i].Error = o.Err.Error()
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
