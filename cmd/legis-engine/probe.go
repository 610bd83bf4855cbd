package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/legis-engine/internal/probe"
	"github.com/pdiddy/legis-engine/pkg/types"
)

const (
	defaultMaxPerYear      = 2000
	defaultFloorYear       = 1946
	defaultCheckpointEvery = 50
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Scan the publisher for documents that exist",
	Long: `Probe enumerates the publisher's deterministic URL scheme
({base-url}/{type}-{year}-{number}) and records which documents exist.

The current mode scans the growing current year without persisting
not-found positions; the previous mode walks backward from last year to
the floor year, persisting every outcome and checkpointing a cursor so
an interrupted scan resumes where it stopped.`,
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().String("base-url", "", "publisher base URL (or probe.base_url in config)")
	probeCmd.Flags().StringSlice("types", nil, "document type slugs to scan (default loi,decret)")
	probeCmd.Flags().String("mode", "current", "scan mode: current or previous")
	probeCmd.Flags().Int("max-per-year", 0, fmt.Sprintf("per-year number bound (default %d)", defaultMaxPerYear))
	probeCmd.Flags().Int("floor-year", 0, fmt.Sprintf("oldest year the previous-years scan reaches (default %d)", defaultFloorYear))
	probeCmd.Flags().Int("max-items", 0, "probe budget for one invocation (0 = unbounded)")
	probeCmd.Flags().Int("checkpoint-every", 0, fmt.Sprintf("probes between cursor checkpoints (default %d)", defaultCheckpointEvery))
	probeCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")

	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	baseURL, _ := cmd.Flags().GetString("base-url")
	if baseURL == "" {
		baseURL = viper.GetString("probe.base_url")
	}
	if baseURL == "" {
		return fmt.Errorf("no publisher base URL: pass --base-url or set probe.base_url")
	}

	docTypes, _ := cmd.Flags().GetStringSlice("types")
	if len(docTypes) == 0 {
		docTypes = viper.GetStringSlice("probe.document_types")
	}
	if len(docTypes) == 0 {
		docTypes = []string{"loi", "decret"}
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	maxPerYear, _ := cmd.Flags().GetInt("max-per-year")
	if maxPerYear == 0 {
		maxPerYear = defaultMaxPerYear
	}
	floorYear, _ := cmd.Flags().GetInt("floor-year")
	if floorYear == 0 {
		floorYear = defaultFloorYear
	}
	checkpointEvery, _ := cmd.Flags().GetInt("checkpoint-every")
	if checkpointEvery == 0 {
		checkpointEvery = defaultCheckpointEvery
	}
	maxItems, _ := cmd.Flags().GetInt("max-items")

	cfg := types.ProbeConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		BaseURL:         baseURL,
		DocumentTypes:   docTypes,
		MaxPerYear:      maxPerYear,
		FloorYear:       floorYear,
		MaxItems:        maxItems,
		CheckpointEvery: checkpointEvery,
	}

	st, _, err := openStores()
	if err != nil {
		return err
	}
	defer st.Close()

	prober := &probe.HTTPProber{
		Client: &http.Client{Timeout: cfg.Timeout},
		Cfg:    cfg,
	}

	ctx := cmd.Context()
	year := time.Now().Year()

	var sum probe.Summary
	mode, _ := cmd.Flags().GetString("mode")
	switch mode {
	case "current":
		sum, err = probe.ScanCurrentYear(ctx, st, prober, cfg, year, os.Stdout)
	case "previous":
		sum, err = probe.ScanPreviousYears(ctx, st, prober, cfg, year, os.Stdout)
	default:
		return fmt.Errorf("unknown scan mode %q (want current or previous)", mode)
	}
	if err != nil {
		return err
	}

	fmt.Printf("probed %d position(s): %d found, %d not found, %d rate limited, %d failed, %d skipped\n",
		sum.Total(), sum.Found, sum.NotFound, sum.RateLimited, sum.Failed, sum.Skipped)
	if sum.Failed > 0 {
		return fmt.Errorf("%d probe(s) failed", sum.Failed)
	}
	return nil
}
