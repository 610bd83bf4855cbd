package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/legis-engine/internal/fetch"
	"github.com/pdiddy/legis-engine/pkg/types"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download PDFs for documents known to exist",
	Long: `Download fetches the PDF for every FETCHED document, verifies the
body is a well-formed PDF, and stores it under the data directory. A
polite delay separates consecutive downloads.`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	downloadCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")
	downloadCmd.Flags().Int("max-items", 0, "documents to process in one pass (0 = all)")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}
	maxItems, _ := cmd.Flags().GetInt("max-items")

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		DownloadDelay: delay,
	}

	st, fs, err := openStores()
	if err != nil {
		return err
	}
	defer st.Close()

	client := &http.Client{Timeout: cfg.Timeout}

	sum, err := fetch.DownloadAll(cmd.Context(), st, fs, client, cfg, maxItems, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("downloaded %d document(s): %d ok, %d corrupted, %d failed\n",
		sum.Total(), sum.Downloaded, sum.Corrupted, sum.Failed)
	if sum.Corrupted+sum.Failed > 0 {
		return fmt.Errorf("%d document(s) failed download", sum.Corrupted+sum.Failed)
	}
	return nil
}
