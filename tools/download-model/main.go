// Standalone tool that downloads an ONNX embedding model into the local
// embed cache for hugot.
//
// Usage: go run ./tools/download-model [dest] [model]
//
// dest defaults to ~/.ragline/embed and model to
// sentence-transformers/all-MiniLM-L6-v2, the default local embedder.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knights-analytics/hugot"
)

func main() {
	dest := defaultDest()
	if len(os.Args) > 1 {
		dest = os.Args[1]
	}

	model := "sentence-transformers/all-MiniLM-L6-v2"
	if len(os.Args) > 2 {
		model = os.Args[2]
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create directory: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Downloading %s to %s...\n", model, dest)

	opts := hugot.NewDownloadOptions()
	opts.OnnxFilePath = "onnx/model.onnx"
	modelPath, err := hugot.DownloadModel(model, dest, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "download model: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Model downloaded to %s\n", modelPath)
}

func defaultDest() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".ragline", "embed")
	}
	return filepath.Join(home, ".ragline", "embed")
}
