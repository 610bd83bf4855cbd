package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/legis-engine/internal/aiex"
	"github.com/pdiddy/legis-engine/internal/extract"
	"github.com/pdiddy/legis-engine/internal/structex"
	"github.com/pdiddy/legis-engine/pkg/types"
)

const (
	defaultMinConfidence = 0.6
	defaultOllamaURL     = "http://localhost:11434"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract article structure from OCRed text",
	Long: `Extract corrects each OCRED document's text, parses its article
structure with the regex extractor, and scores the result. Extractions
with no articles or a confidence below the threshold fall back to the
AI path: the text is chunked, submitted through the provider chain
(local Ollama first, Groq when a key is configured), and the per-chunk
results are merged. The better-scoring result is written as the
document's JSON artifact.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().Float64("min-confidence", 0, fmt.Sprintf("regex confidence below which the AI fallback runs (default %.1f)", defaultMinConfidence))
	extractCmd.Flags().Int("min-article-length", 0, "discard article spans shorter than this many characters")
	extractCmd.Flags().String("ollama-url", "", "local model server endpoint (default "+defaultOllamaURL+")")
	extractCmd.Flags().String("groq-api-key", "", "Groq API key (default: .secrets/groq-api-key)")
	extractCmd.Flags().Bool("no-ai", false, "disable the AI fallback; regex only")
	extractCmd.Flags().Int("chunk-size", 0, "characters per model submission")
	extractCmd.Flags().Int("chunk-overlap", 0, "trailing overlap carried between chunks")
	extractCmd.Flags().Int("max-items", 0, "documents to process in one pass (0 = all)")
	extractCmd.Flags().Int("workers", 1, "concurrent workers (0 derives from cores)")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")
	if minConfidence == 0 {
		minConfidence = defaultMinConfidence
	}
	minArticleLength, _ := cmd.Flags().GetInt("min-article-length")
	maxItems, _ := cmd.Flags().GetInt("max-items")
	workers, _ := cmd.Flags().GetInt("workers")

	st, fs, err := openStores()
	if err != nil {
		return err
	}
	defer st.Close()

	runner := &extract.Runner{
		Store:         st,
		Files:         fs,
		Structural:    &structex.Extractor{MinArticleLength: minArticleLength},
		MinConfidence: minConfidence,
	}

	if noAI, _ := cmd.Flags().GetBool("no-ai"); !noAI {
		ollamaURL, _ := cmd.Flags().GetString("ollama-url")
		if ollamaURL == "" {
			ollamaURL = viper.GetString("extraction.ollama_url")
		}
		if ollamaURL == "" {
			ollamaURL = defaultOllamaURL
		}
		groqKey, _ := cmd.Flags().GetString("groq-api-key")
		groqKey = secretDefault("groq-api-key", groqKey)

		chunkSize, _ := cmd.Flags().GetInt("chunk-size")
		chunkOverlap, _ := cmd.Flags().GetInt("chunk-overlap")

		runner.Fallback = aiex.NewExtractor(types.AIConfig{
			OllamaURL:    ollamaURL,
			GroqAPIKey:   groqKey,
			ChunkSize:    chunkSize,
			ChunkOverlap: chunkOverlap,
		})
	}

	ctx := cmd.Context()

	if workers != 1 {
		res, err := runner.RunConcurrent(ctx, maxItems, workers, newLogger())
		if err != nil {
			return err
		}
		fmt.Printf("extracted %d document(s): %d ok, %d failed\n",
			res.Processed, res.Succeeded, res.Failed)
		if res.Failed > 0 {
			return fmt.Errorf("%d document(s) failed extraction", res.Failed)
		}
		return nil
	}

	sum, err := runner.RunAll(ctx, maxItems, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("extracted %d document(s): %d regex, %d ai, %d failed\n",
		sum.Total(), sum.Regex, sum.AI, sum.Failed)
	if sum.Failed > 0 {
		return fmt.Errorf("%d document(s) failed extraction", sum.Failed)
	}
	return nil
}
