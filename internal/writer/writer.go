// Package writer stores expansion results next to the files they were
// produced from.
package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type Writer struct {
	DryRun bool
	// OutputExtension replaces the extension of the input file. An empty
	// value rewrites the input in place.
	OutputExtension string
	Out             io.Writer
}

func New(dryRun bool, outputExtension string) *Writer {
	return &Writer{
		DryRun:          dryRun,
		OutputExtension: outputExtension,
		Out:             os.Stdout,
	}
}

// Target returns the path the expansion of filename is written to.
func (w *Writer) Target(filename string) string {
	if w.OutputExtension == "" {
		return filename
	}
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + w.OutputExtension
}

// Write stores output for filename and returns the path written. In dry
// run mode the output is printed instead.
func (w *Writer) Write(filename string, output []byte) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("cannot write output without a filename")
	}
	target := w.Target(filename)

	if w.DryRun {
		fmt.Fprintf(w.out(), "Would write %s (%d bytes):\n%s", target, len(output), output)
		return target, nil
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(filename); err == nil {
		mode = info.Mode().Perm()
	}

	if err := os.WriteFile(target, output, mode); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	fmt.Fprintf(w.out(), "Expanded %s -> %s\n", filename, target)
	return target, nil
}

func (w *Writer) out() io.Writer {
	if w.Out == nil {
		return io.Discard
	}
	return w.Out
}
