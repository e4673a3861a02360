// Package runtime manages local GGUF inference: discovering model files,
// resolving a selection to a concrete file, and keeping at most one loaded
// runtime whose backing file is watched for changes.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ragline/ragline/domain/chat"
	"github.com/ragline/ragline/internal/config"
)

// ErrNoModelsFound indicates the model directory contains no GGUF files.
var ErrNoModelsFound = errors.New("no GGUF model files found in model directory")

// Runtime is a loaded inference engine bound to one model file.
type Runtime interface {
	// Complete generates an answer for the message exchange. An empty string
	// return with nil error means the model produced no usable text.
	Complete(ctx context.Context, messages []chat.Message, sampling config.SamplingConfig) (string, error)

	// Close releases the runtime and its resources.
	Close() error
}

// Factory constructs a Runtime for a model file. The Cache calls it under
// its lock, so a Factory must not call back into the Cache.
type Factory func(ctx context.Context, modelPath string, cfg config.RuntimeConfig) (Runtime, error)

// NoCompatibleModelError indicates a model selection matched none of the
// discovered files. Available file names are carried for diagnostics.
type NoCompatibleModelError struct {
	requestedID   string
	requestedName string
	available     []string
}

// NewNoCompatibleModelError creates a NoCompatibleModelError.
func NewNoCompatibleModelError(requestedID, requestedName string, available []string) *NoCompatibleModelError {
	return &NoCompatibleModelError{
		requestedID:   requestedID,
		requestedName: requestedName,
		available:     available,
	}
}

// Available returns the discovered model file names.
func (e *NoCompatibleModelError) Available() []string { return e.available }

// Error implements error.
func (e *NoCompatibleModelError) Error() string {
	return fmt.Sprintf(
		"no compatible model for id=%q name=%q; available: %s",
		e.requestedID, e.requestedName, strings.Join(e.available, ", "),
	)
}

// LoadError indicates a model file could not be loaded into a runtime.
type LoadError struct {
	modelPath string
	err       error
}

// NewLoadError creates a LoadError.
func NewLoadError(modelPath string, err error) *LoadError {
	return &LoadError{modelPath: modelPath, err: err}
}

// ModelPath returns the file that failed to load.
func (e *LoadError) ModelPath() string { return e.modelPath }

// Error implements error.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load model %q: %v", e.modelPath, e.err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error { return e.err }
