// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdfdocx CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfdocx/internal/engine"
	"github.com/pdiddy/pdfdocx/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the pdfdocx CLI.
var rootCmd = &cobra.Command{
	Use:   "pdfdocx",
	Short: "Convert PDF documents to Word (DOCX) with the pdf2docx engine",
	Long: `pdfdocx converts PDF files to DOCX by driving the pdf2docx engine, either
installed locally or run from a docker/podman image. It validates inputs,
protects existing outputs (overwrite and backup policy), reports page
progress, and can split large documents across parallel workers.

Use convert for one file, batch for many, info to inspect a PDF, and history
to review past conversions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
			disableColor()
		}
		return loadDotEnv(".env")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdfdocx.yaml or ~/.config/pdfdocx/config.yaml)")
	rootCmd.PersistentFlags().String("engine", "", "engine backend: auto, local, or container")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	_ = viper.BindPFlag("engine.backend", rootCmd.PersistentFlags().Lookup("engine"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.backend", string(types.BackendAuto))
	v.SetDefault("engine.binary", engine.DefaultBinary)
	v.SetDefault("engine.image", engine.DefaultImage)
	v.SetDefault("engine.args", []string{})
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdfdocx")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdfdocx"))
		}
	}

	viper.SetEnvPrefix("PDFDOCX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "warning: reading config %s: %v\n", cfgFile, err)
	}
}

// loadDotEnv loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	interrupted := ctx.Err() != nil
	stop()

	if err != nil {
		printError(os.Stderr, err)
		if interrupted {
			os.Exit(exitInterrupted)
		}
		os.Exit(exitCode(err))
	}
}
