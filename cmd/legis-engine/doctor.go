package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/legis-engine/internal/doctor"
	"github.com/pdiddy/legis-engine/pkg/types"
)

const (
	defaultDoctorMinConfidence = 0.5
	defaultMaxUnknownWordRate  = 0.4
	defaultStuckAfter          = 24 * time.Hour
	defaultDoctorRetries       = 3
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose and repair documents the pipeline left behind",
	Long: `Doctor scans every document at rest and reports inconsistencies:
stuck statuses, artifacts missing for the claimed status, and quality
problems in extractions (low confidence, garbled text, article sequence
anomalies). With --fix it repairs the most severe auto-fixable issue
per document by rewinding the status one step and dropping the undone
artifact, so the next pipeline pass redoes the work. A retry budget
keeps one document from being rewound forever.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().Bool("fix", false, "apply repairs instead of only reporting")
	doctorCmd.Flags().Float64("min-confidence", 0, fmt.Sprintf("flag extractions below this confidence (default %.1f)", defaultDoctorMinConfidence))
	doctorCmd.Flags().Float64("max-unknown-word-rate", 0, fmt.Sprintf("flag extractions above this unrecognized-word rate (default %.1f)", defaultMaxUnknownWordRate))
	doctorCmd.Flags().Duration("stuck-after", 0, "flag documents idle in a non-terminal state longer than this (default 24h)")
	doctorCmd.Flags().Int("max-retries", 0, fmt.Sprintf("rewinds per document and issue type before giving up (default %d)", defaultDoctorRetries))

	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")
	if minConfidence == 0 {
		minConfidence = defaultDoctorMinConfidence
	}
	maxUnknownRate, _ := cmd.Flags().GetFloat64("max-unknown-word-rate")
	if maxUnknownRate == 0 {
		maxUnknownRate = defaultMaxUnknownWordRate
	}
	stuckAfter, _ := cmd.Flags().GetDuration("stuck-after")
	if stuckAfter == 0 {
		stuckAfter = defaultStuckAfter
	}
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	if maxRetries == 0 {
		maxRetries = defaultDoctorRetries
	}
	fix, _ := cmd.Flags().GetBool("fix")

	st, fs, err := openStores()
	if err != nil {
		return err
	}
	defer st.Close()

	d := &doctor.Doctor{
		Store: st,
		Files: fs,
		Cfg: types.DoctorConfig{
			MinConfidence:      minConfidence,
			MaxUnknownWordRate: maxUnknownRate,
			StuckAfter:         stuckAfter,
			MaxRetries:         maxRetries,
		},
		FixIssues: fix,
	}

	if _, err := d.Run(cmd.Context(), os.Stdout); err != nil {
		return err
	}
	return nil
}
