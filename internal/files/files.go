// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package files owns the artifact layout on disk. The pipeline core only
// ever asks for a reference and whether it exists; path construction and
// identifier validation live here.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	pdfDir  = "pdf"
	ocrDir  = "ocr"
	jsonDir = "json"
)

// Kind selects an artifact class.
type Kind string

const (
	KindPDF  Kind = Kind(pdfDir)
	KindOCR  Kind = Kind(ocrDir)
	KindJSON Kind = Kind(jsonDir)
)

var kindExt = map[Kind]string{
	KindPDF:  ".pdf",
	KindOCR:  ".txt",
	KindJSON: ".json",
}

// Store resolves artifact references under a base directory.
type Store struct {
	baseDir string
}

// NewStore returns a Store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Ref returns the artifact reference for a document, or an error when the
// identifier could not name a file safely. Identifiers containing path
// separators or parent references are rejected here so no caller can
// escape the base directory.
func (s *Store) Ref(kind Kind, documentID string) (string, error) {
	if err := validateID(documentID); err != nil {
		return "", err
	}
	ext, ok := kindExt[kind]
	if !ok {
		return "", fmt.Errorf("unknown artifact kind %q", kind)
	}
	return filepath.Join(s.baseDir, string(kind), documentID+ext), nil
}

// Exists reports whether the referenced artifact is present and non-empty.
func (s *Store) Exists(ref string) bool {
	info, err := os.Stat(ref)
	return err == nil && !info.IsDir() && info.Size() > 0
}

// Remove deletes the referenced artifact. A missing file is not an error;
// the fixer removes corrupted artifacts without caring whether a prior
// run already did.
func (s *Store) Remove(ref string) error {
	err := os.Remove(ref)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing artifact %s: %w", ref, err)
	}
	return nil
}

// EnsureDirs creates the artifact subdirectories.
func (s *Store) EnsureDirs() error {
	for _, d := range []string{pdfDir, ocrDir, jsonDir} {
		if err := os.MkdirAll(filepath.Join(s.baseDir, d), 0o755); err != nil {
			return fmt.Errorf("creating artifact directory %s: %w", d, err)
		}
	}
	return nil
}

func validateID(documentID string) error {
	if documentID == "" {
		return fmt.Errorf("empty document identifier")
	}
	if strings.ContainsAny(documentID, `/\`) || strings.Contains(documentID, "..") {
		return fmt.Errorf("unsafe document identifier %q", documentID)
	}
	return nil
}
