// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocr turns downloaded PDFs into raw text. The engine itself is a
// black box: an external tool invoked directly or through a container
// runtime. The pipeline only consumes its text and a quality hint.
package ocr

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode"

	"github.com/pdiddy/legis-engine/pkg/types"
)

// Engine extracts text from a PDF file.
type Engine interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// CommandEngine runs a configured external OCR command. The command
// receives the PDF path as its final argument and writes text to stdout.
type CommandEngine struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// NewEngine builds an engine from configuration: containerized when an
// image is configured, a direct command otherwise.
func NewEngine(cfg types.OCRConfig) (Engine, error) {
	if cfg.ContainerImage != "" {
		rt, err := detectRuntime(defaultExec)
		if err != nil {
			return nil, err
		}
		return newContainerEngine(rt, cfg.ContainerImage)
	}
	if cfg.Command == "" {
		return nil, fmt.Errorf("no OCR command or container image configured")
	}
	return &CommandEngine{Command: cfg.Command, Args: cfg.Args, Timeout: cfg.Timeout}, nil
}

// ExtractText invokes the external command and returns its stdout.
func (e *CommandEngine) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	args := make([]string, 0, len(e.Args)+1)
	args = append(args, e.Args...)
	args = append(args, pdfPath)

	out, err := exec.CommandContext(ctx, e.Command, args...).Output()
	if err != nil {
		return "", fmt.Errorf("running %s on %s: %w", e.Command, pdfPath, err)
	}
	return string(out), nil
}

// TextQuality scores raw OCR output in [0,1] as the fraction of tokens
// that look like words (mostly letters). It is a hint, not a verdict; the
// extractor's own confidence blend makes the real call.
func TextQuality(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}

	wordish := 0
	for _, f := range fields {
		letters := 0
		for _, r := range f {
			if unicode.IsLetter(r) {
				letters++
			}
		}
		if letters*2 >= len([]rune(f)) {
			wordish++
		}
	}
	return float64(wordish) / float64(len(fields))
}
