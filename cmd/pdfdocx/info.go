// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfdocx/internal/convert"
	"github.com/pdiddy/pdfdocx/internal/inspect"
	"github.com/pdiddy/pdfdocx/pkg/types"
)

var infoCmd = &cobra.Command{
	Use:   "info <source.pdf>",
	Short: "Show page count, size, and version of a PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := inspect.File(args[0])
		if err != nil {
			return &convert.Error{Kind: convert.UnsupportedSourceType, Path: args[0], Page: convert.NoPage, Err: err}
		}
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return writeInfo(cmd.OutOrStdout(), info, jsonOutput)
	},
}

func init() {
	infoCmd.Flags().Bool("json", false, "print as JSON")
	rootCmd.AddCommand(infoCmd)
}

func writeInfo(w io.Writer, info types.SourceInfo, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	fmt.Fprintf(w, "%-10s %s\n", "File:", info.Name)
	fmt.Fprintf(w, "%-10s %s\n", "Path:", info.Path)
	fmt.Fprintf(w, "%-10s %s\n", "Size:", humanSize(info.Size))
	fmt.Fprintf(w, "%-10s %d\n", "Pages:", info.Pages)
	fmt.Fprintf(w, "%-10s %s\n", "Version:", info.Version)
	fmt.Fprintf(w, "%-10s %t\n", "Encrypted:", info.Encrypted)
	return nil
}
