package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/legis-engine/internal/consolidate"
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Merge extraction results into the consolidated store",
	Long: `Consolidate loads each EXTRACTED document's JSON artifact and
replaces the stored consolidation when the new result's confidence
beats the existing one. Weaker results are skipped without touching the
stored data; either way the document advances to CONSOLIDATED.`,
	RunE: runConsolidate,
}

func init() {
	consolidateCmd.Flags().Int("max-items", 0, "documents to process in one pass (0 = all)")

	rootCmd.AddCommand(consolidateCmd)
}

func runConsolidate(cmd *cobra.Command, args []string) error {
	maxItems, _ := cmd.Flags().GetInt("max-items")

	st, fs, err := openStores()
	if err != nil {
		return err
	}
	defer st.Close()

	sum, err := consolidate.RunAll(cmd.Context(), st, fs, maxItems, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("consolidated %d document(s): %d written, %d skipped, %d failed\n",
		sum.Total(), sum.Consolidated, sum.Skipped, sum.Failed)
	if sum.Failed > 0 {
		return fmt.Errorf("%d document(s) failed consolidation", sum.Failed)
	}
	return nil
}
