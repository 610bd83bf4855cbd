package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var showCmd = &cobra.Command{
	Use:   "show [document-id]",
	Short: "Print a consolidated document",
	Long: `Show prints the consolidated record for one document: its metadata,
signatories, and articles, as stored by the consolidation stage.
Output is YAML by default, JSON with --json.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	st, _, err := openStores()
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := st.ConsolidatedDocument(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("no consolidated document %s", args[0])
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return yaml.NewEncoder(os.Stdout).Encode(result)
}
