// Package pdf shells out to pdflatex as an optional post-generation check.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/docly-ai/texforge/internal/logger"
)

const compileTimeout = 60 * time.Second

// ErrCompilerNotFound indicates pdflatex is not installed on this host.
var ErrCompilerNotFound = errors.New("pdflatex not found in PATH")

// Compile writes tex into a temp directory and runs pdflatex over it.
// On success the produced PDF is copied next to outPath with a .pdf
// extension. Callers treat ErrCompilerNotFound as non-fatal.
func Compile(ctx context.Context, tex, outPath string) error {
	bin, err := exec.LookPath("pdflatex")
	if err != nil {
		return ErrCompilerNotFound
	}

	dir, err := os.MkdirTemp("", "texforge-compile-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	texFile := filepath.Join(dir, "document.tex")
	if err := os.WriteFile(texFile, []byte(tex), 0o644); err != nil {
		return fmt.Errorf("write tex file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, compileTimeout)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, bin,
		"-interaction=nonstopmode",
		"-halt-on-error",
		"-output-directory", dir,
		texFile,
	)
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		logger.FromContext(ctx).Warn("pdflatex failed",
			zap.Error(err),
			zap.String("tail", logTail(out.String())),
		)
		return fmt.Errorf("pdflatex: %w", err)
	}

	pdfPath := withExt(outPath, ".pdf")
	src := filepath.Join(dir, "document.pdf")
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read compiled pdf: %w", err)
	}
	if err := os.WriteFile(pdfPath, data, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func withExt(path, ext string) string {
	old := filepath.Ext(path)
	return path[:len(path)-len(old)] + ext
}

// logTail keeps the last chunk of pdflatex output, where the error lives.
func logTail(s string) string {
	const max = 800
	if len(s) <= max {
		return s
	}
	return s[len(s)-max:]
}
