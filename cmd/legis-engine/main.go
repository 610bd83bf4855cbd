// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the legis-engine CLI. Each
// pipeline stage is a subcommand: probe, download, ocr, extract,
// consolidate, and doctor, with status for inspection.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/legis-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// secretDefault returns fallback when set, and the named secret
// otherwise (file first, then the LEGIS_ENGINE_* environment).
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return loadedSecrets.Get(key)
}

// rootCmd is the base command for the legis-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "legis-engine",
	Short: "Batch pipeline for ingesting published laws and decrees",
	Long: `legis-engine ingests government legal documents published as PDFs at
predictable URLs. It probes for documents, downloads and OCRs them,
extracts their article structure (with an AI fallback for hard cases),
and consolidates the results into a queryable store.

Each pipeline stage is a subcommand: probe, download, ocr, extract,
and consolidate. The doctor subcommand diagnoses and repairs documents
the pipeline left behind; status reports progress.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./legis-engine.yaml or ~/.config/legis-engine/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "base data directory (default: ./data)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("legis-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "legis-engine"))
		}
	}

	viper.SetEnvPrefix("LEGIS_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
