package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/legis-engine/internal/ocr"
	"github.com/pdiddy/legis-engine/pkg/types"
)

const defaultOCRTimeout = 5 * time.Minute

var ocrCmd = &cobra.Command{
	Use:   "ocr",
	Short: "Extract raw text from downloaded PDFs",
	Long: `OCR runs the configured external OCR tool over every DOWNLOADED
document's PDF and stores the raw text. The tool receives the PDF path
as its final argument and writes text to stdout; alternatively a
container image wraps the tool.`,
	RunE: runOCR,
}

func init() {
	ocrCmd.Flags().String("command", "", "external OCR command (or ocr.command in config)")
	ocrCmd.Flags().StringSlice("args", nil, "fixed arguments placed before the PDF path")
	ocrCmd.Flags().String("container-image", "", "run the OCR tool in this container image instead")
	ocrCmd.Flags().Duration("timeout", 0, "per-document OCR timeout (default 5m)")
	ocrCmd.Flags().Int("max-items", 0, "documents to process in one pass (0 = all)")
	ocrCmd.Flags().Int("workers", 1, "concurrent workers (0 derives from cores)")

	rootCmd.AddCommand(ocrCmd)
}

func runOCR(cmd *cobra.Command, args []string) error {
	command, _ := cmd.Flags().GetString("command")
	if command == "" {
		command = viper.GetString("ocr.command")
	}
	cmdArgs, _ := cmd.Flags().GetStringSlice("args")
	if len(cmdArgs) == 0 {
		cmdArgs = viper.GetStringSlice("ocr.args")
	}
	image, _ := cmd.Flags().GetString("container-image")
	if image == "" {
		image = viper.GetString("ocr.container_image")
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultOCRTimeout
	}
	maxItems, _ := cmd.Flags().GetInt("max-items")
	workers, _ := cmd.Flags().GetInt("workers")

	engine, err := ocr.NewEngine(types.OCRConfig{
		Command:        command,
		Args:           cmdArgs,
		ContainerImage: image,
		Timeout:        timeout,
	})
	if err != nil {
		return err
	}

	st, fs, err := openStores()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()

	if workers != 1 {
		res, err := ocr.RunConcurrent(ctx, st, fs, engine, maxItems, workers, newLogger())
		if err != nil {
			return err
		}
		fmt.Printf("ocred %d document(s): %d ok, %d failed\n",
			res.Processed, res.Succeeded, res.Failed)
		if res.Failed > 0 {
			return fmt.Errorf("%d document(s) failed OCR", res.Failed)
		}
		return nil
	}

	sum, err := ocr.RunAll(ctx, st, fs, engine, maxItems, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("ocred %d document(s): %d ok, %d failed\n",
		sum.Total(), sum.Extracted, sum.Failed)
	if sum.Failed > 0 {
		return fmt.Errorf("%d document(s) failed OCR", sum.Failed)
	}
	return nil
}
