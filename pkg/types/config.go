package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "legis-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ProbeConfig holds settings for the existence-probing stage.
type ProbeConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the publisher root; document URLs are
	// {BaseURL}/{type}-{year}-{number}.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// DocumentTypes lists the document category slugs to scan (e.g. loi, decret).
	DocumentTypes []string `json:"document_types" yaml:"document_types"`

	// MaxPerYear bounds the per-year number enumeration. The publisher
	// never states how many documents a year holds, so this is
	// configuration rather than derived knowledge.
	MaxPerYear int `json:"max_per_year" yaml:"max_per_year"`

	// FloorYear is the oldest year the previous-years scan reaches.
	FloorYear int `json:"floor_year" yaml:"floor_year"`

	// MaxItems bounds the work of one scan invocation. Exceeding it
	// checkpoints the cursor and stops.
	MaxItems int `json:"max_items" yaml:"max_items"`

	// CheckpointEvery is how many probed documents pass between cursor
	// checkpoints.
	CheckpointEvery int `json:"checkpoint_every" yaml:"checkpoint_every"`

	// MaxRetries bounds the 429 backoff attempts per probe.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// FetchConfig holds settings for the PDF download stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadDelay is the delay between consecutive downloads.
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`
}

// OCRConfig holds settings for the OCR stage. The engine itself is a
// black box; only its invocation is configured here.
type OCRConfig struct {
	// Command is the external OCR command; it receives the PDF path as its
	// final argument and writes text to stdout.
	Command string `json:"command" yaml:"command"`

	// Args are fixed arguments placed before the PDF path.
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`

	// ContainerImage, when set, runs the OCR tool in a container instead
	// of invoking Command directly.
	ContainerImage string `json:"container_image,omitempty" yaml:"container_image,omitempty"`

	// Timeout bounds a single OCR invocation.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// OllamaURL is the local model server endpoint. Empty disables the
	// local provider.
	OllamaURL string `json:"ollama_url,omitempty" yaml:"ollama_url,omitempty"`

	// GroqAPIKey authenticates the cloud provider. Empty disables it.
	GroqAPIKey string `json:"groq_api_key,omitempty" yaml:"groq_api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// ChunkSize is the maximum characters submitted per model call.
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// ChunkOverlap is the trailing-character overlap carried into the next
	// chunk head.
	ChunkOverlap int `json:"chunk_overlap" yaml:"chunk_overlap"`
}

// ExtractionConfig holds settings for the structured-extraction stage.
type ExtractionConfig struct {
	AIConfig `yaml:",inline"`

	// MinConfidence is the regex-path confidence below which the AI
	// fallback runs.
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`

	// MinArticleLength discards article spans shorter than this many
	// characters as noise.
	MinArticleLength int `json:"min_article_length" yaml:"min_article_length"`
}

// DoctorConfig holds thresholds for the issue detector.
type DoctorConfig struct {
	// MinConfidence flags consolidated or extracted documents below it.
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`

	// MaxUnknownWordRate flags extractions whose unrecognized-word rate
	// exceeds it.
	MaxUnknownWordRate float64 `json:"max_unknown_word_rate" yaml:"max_unknown_word_rate"`

	// StuckAfter is how long a document may sit in a non-terminal state
	// before the status detector flags it.
	StuckAfter time.Duration `json:"stuck_after" yaml:"stuck_after"`

	// MaxRetries bounds how many times the fixer rewinds one document for
	// the same issue type before skipping it (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// StoreConfig holds settings for the document and consolidation store.
type StoreConfig struct {
	// DataDir is the base directory holding index/ (SQLite database) and
	// the artifact subdirectories pdf/, ocr/, json/.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// BatchConfig holds settings for concurrent stage passes.
type BatchConfig struct {
	// Workers is the bounded worker count; 0 derives it from available
	// cores, capped.
	Workers int `json:"workers" yaml:"workers"`

	// MaxItems bounds the documents processed in one pass; 0 means no cap.
	MaxItems int `json:"max_items" yaml:"max_items"`
}

// Config aggregates all stage configurations.
type Config struct {
	Store      StoreConfig      `json:"store" yaml:"store"`
	Probe      ProbeConfig      `json:"probe" yaml:"probe"`
	Fetch      FetchConfig      `json:"fetch" yaml:"fetch"`
	OCR        OCRConfig        `json:"ocr" yaml:"ocr"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Doctor     DoctorConfig     `json:"doctor" yaml:"doctor"`
	Batch      BatchConfig      `json:"batch" yaml:"batch"`
}
