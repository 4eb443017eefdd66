// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfdocx/internal/engine"
	"github.com/pdiddy/pdfdocx/pkg/types"
)

// addConversionFlags registers the flags shared by convert and batch. Flags
// left unset fall back to the defaults.* keys of the config file.
func addConversionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("start-page", 0, "first page to convert (0-based)")
	f.Int("end-page", -1, "last page to convert (0-based, inclusive; -1 for the last page)")
	f.Bool("overwrite", false, "replace an existing destination")
	f.Bool("backup", false, "back up an existing destination before overwriting it")
	f.BoolP("verbose", "v", false, "log informational and debug messages")
	f.BoolP("quiet", "q", false, "print errors only")
	f.String("log-file", "", "append log records to this file")
	f.Bool("multi-processing", false, "split pages across parallel workers")
	f.Int("cpu-count", 0, "number of parallel workers (default one per CPU)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// optionsFromFlags builds conversion options from explicitly set flags, then
// the defaults.* config keys, then the flag defaults.
func optionsFromFlags(cmd *cobra.Command, v *viper.Viper) (types.ConversionOptions, error) {
	f := cmd.Flags()
	var opts types.ConversionOptions
	var err error

	intOpt := func(flag, key string) (int, bool) {
		if f.Changed(flag) {
			n, e := f.GetInt(flag)
			if e != nil {
				err = e
			}
			return n, true
		}
		if v.IsSet("defaults." + key) {
			return v.GetInt("defaults." + key), true
		}
		return 0, false
	}
	boolOpt := func(flag, key string) bool {
		if f.Changed(flag) {
			b, e := f.GetBool(flag)
			if e != nil {
				err = e
			}
			return b
		}
		return v.GetBool("defaults." + key)
	}

	opts.StartPage, _ = intOpt("start-page", "start_page")
	if end, ok := intOpt("end-page", "end_page"); ok && end != -1 {
		opts.EndPage = &end
	}
	if n, ok := intOpt("cpu-count", "cpu_count"); ok {
		opts.CPUCount = &n
	}
	opts.Overwrite = boolOpt("overwrite", "overwrite")
	opts.CreateBackup = boolOpt("backup", "create_backup")
	opts.Verbose = boolOpt("verbose", "verbose")
	opts.MultiProcessing = boolOpt("multi-processing", "multi_processing")

	if f.Changed("log-file") {
		opts.LogFile, _ = f.GetString("log-file")
	} else {
		opts.LogFile = v.GetString("defaults.log_file")
	}

	if quiet, _ := f.GetBool("quiet"); quiet {
		opts.Verbose = false
	}
	return opts, err
}

// engineConfig reads the engine.* config keys.
func engineConfig(v *viper.Viper) types.EngineConfig {
	return types.EngineConfig{
		Backend: types.EngineBackend(v.GetString("engine.backend")),
		Binary:  v.GetString("engine.binary"),
		Image:   v.GetString("engine.image"),
		Args:    v.GetStringSlice("engine.args"),
	}
}

// detectEngine resolves the configured engine.
func detectEngine(v *viper.Viper) (engine.Engine, error) {
	return engine.Detect(engineConfig(v))
}
