package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/legis-engine/pkg/types"
)

// statusOrder lists every status in pipeline order for the report table.
var statusOrder = []types.DocumentStatus{
	types.StatusPending,
	types.StatusFetched,
	types.StatusDownloaded,
	types.StatusOCRed,
	types.StatusExtracted,
	types.StatusConsolidated,
	types.StatusNotFound,
	types.StatusRateLimited,
	types.StatusFailed,
	types.StatusFailedCorrupted,
	types.StatusFailedExtraction,
	types.StatusFailedConsolidation,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report pipeline progress, or search consolidated articles",
	Long: `Status prints a per-status document count. With --query it instead
runs a full-text search over consolidated article content and prints
the matching documents with a snippet.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().String("query", "", "full-text search query over consolidated articles")
	statusCmd.Flags().Int("limit", 20, "maximum search matches")
	statusCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	st, _, err := openStores()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	asJSON, _ := cmd.Flags().GetBool("json")

	if query, _ := cmd.Flags().GetString("query"); query != "" {
		limit, _ := cmd.Flags().GetInt("limit")
		hits, err := st.SearchArticles(ctx, query, limit)
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(hits)
		}
		for _, h := range hits {
			fmt.Printf("%s article %d: %s\n", h.DocumentID, h.Index, h.Snippet)
		}
		fmt.Printf("%d match(es)\n", len(hits))
		return nil
	}

	counts, err := st.CountByStatus(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(counts)
	}

	total := 0
	for _, status := range statusOrder {
		n := counts[status]
		total += n
		if n == 0 {
			continue
		}
		fmt.Printf("%-22s %6d\n", status, n)
	}
	fmt.Printf("%-22s %6d\n", "TOTAL", total)
	return nil
}
