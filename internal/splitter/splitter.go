// Package splitter breaks a predictions CSV into one file per vehicle class.
package splitter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ClassColumn is the grouping column in prediction exports.
const ClassColumn = "Vehicle Class"

// Result summarizes one split run.
type Result struct {
	Files map[string]string // class value -> written path
	Rows  int
}

// Split reads the predictions CSV at inputPath and writes one CSV per
// distinct vehicle class into outputDir. Each output keeps the full header.
func Split(inputPath, outputDir string, log *zap.Logger) (*Result, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	classIdx := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), ClassColumn) {
			classIdx = i
			break
		}
	}
	if classIdx < 0 {
		return nil, fmt.Errorf("missing required column %q", ClassColumn)
	}

	writers := make(map[string]*csv.Writer)
	files := make(map[string]*os.File)
	result := &Result{Files: make(map[string]string)}

	closeAll := func() {
		for class, w := range writers {
			w.Flush()
			files[class].Close()
		}
	}
	defer closeAll()

	lineNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("error at line %d: %w", lineNum, err)
		}
		lineNum++

		if classIdx >= len(record) {
			log.Warn("skipping short row", zap.Int("line", lineNum))
			continue
		}
		class := strings.TrimSpace(record[classIdx])
		if class == "" {
			class = "unclassified"
		}

		w, ok := writers[class]
		if !ok {
			path := filepath.Join(outputDir, SanitizeFilename(class)+"_predictions.csv")
			f, err := os.Create(path)
			if err != nil {
				return result, fmt.Errorf("failed to create %s: %w", path, err)
			}
			w = csv.NewWriter(f)
			if err := w.Write(header); err != nil {
				f.Close()
				return result, fmt.Errorf("failed to write header: %w", err)
			}
			writers[class] = w
			files[class] = f
			result.Files[class] = path
		}

		if err := w.Write(record); err != nil {
			return result, fmt.Errorf("error writing line %d: %w", lineNum, err)
		}
		result.Rows++
	}

	for _, w := range writers {
		w.Flush()
		if err := w.Error(); err != nil {
			return result, fmt.Errorf("flush error: %w", err)
		}
	}

	log.Info("split complete",
		zap.Int("rows", result.Rows),
		zap.Int("classes", len(result.Files)),
	)
	return result, nil
}

// SanitizeFilename strips characters that are illegal in file names on common
// filesystems, collapsing runs of whitespace to single underscores.
func SanitizeFilename(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' ||
			r == '"' || r == '<' || r == '>' || r == '|':
			// drop
		case r == ' ' || r == '\t':
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		default:
			b.WriteRune(r)
			lastUnderscore = false
		}
	}
	out := strings.Trim(b.String(), "_.")
	if out == "" {
		out = "unnamed"
	}
	return out
}
