// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// containerRuntime runs the OCR image with the PDF piped through stdin.
// Docker and podman share the logic; they differ only in binary name and
// the subcommand used to check image existence.
type containerRuntime struct {
	bin           string
	imageCheckCmd []string
	exec          executor
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	return cmd.Run()
}

var defaultExec executor = &osExecutor{}

func (r *containerRuntime) available() bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	return r.exec.RunSilent(r.bin, "info") == nil
}

func (r *containerRuntime) imageExists(image string) error {
	args := append(append([]string{}, r.imageCheckCmd...), image)
	if err := r.exec.RunSilent(r.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, r.bin, err)
	}
	return nil
}

func (r *containerRuntime) run(image string, stdin io.Reader, stdout io.Writer) error {
	args := []string{"run", "--rm", "-i", image}
	if err := r.exec.RunPiped(r.bin, args, stdin, stdout); err != nil {
		return fmt.Errorf("running %s container %s: %w", r.bin, image, err)
	}
	return nil
}

// detectRuntime tries docker first, falls back to podman.
func detectRuntime(e executor) (*containerRuntime, error) {
	docker := &containerRuntime{bin: binDocker, imageCheckCmd: []string{"image", "inspect"}, exec: e}
	if docker.available() {
		return docker, nil
	}

	podman := &containerRuntime{bin: binPodman, imageCheckCmd: []string{"image", "exists"}, exec: e}
	if podman.available() {
		return podman, nil
	}

	return nil, fmt.Errorf(
		"no container runtime available: neither %s nor %s found or operational",
		binDocker, binPodman,
	)
}

// ContainerEngine pipes PDFs through a containerized OCR tool.
type ContainerEngine struct {
	runtime *containerRuntime
	image   string
}

func newContainerEngine(rt *containerRuntime, image string) (*ContainerEngine, error) {
	if err := rt.imageExists(image); err != nil {
		return nil, fmt.Errorf("OCR image not available in %s: %w", rt.bin, err)
	}
	return &ContainerEngine{runtime: rt, image: image}, nil
}

// ExtractText reads the PDF and pipes it through the OCR container.
func (e *ContainerEngine) ExtractText(_ context.Context, pdfPath string) (string, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := e.runtime.run(e.image, f, &out); err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", pdfPath, err)
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("OCR produced empty output for %s", pdfPath)
	}
	return out.String(), nil
}
