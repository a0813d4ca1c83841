package database

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Chunking defaults.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// SplitText splits text on newlines and packs the lines into chunks of at
// most size bytes. Consecutive chunks share up to overlap bytes of trailing
// lines. Lines longer than size are cut at word or rune boundaries.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var pieces []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pieces = append(pieces, splitLong(line, size)...)
	}

	var chunks, window []string
	total := 0 // len(strings.Join(window, "\n"))
	withPiece := func(n int) int {
		if len(window) == 0 {
			return n
		}
		return total + 1 + n
	}

	for _, p := range pieces {
		if len(window) > 0 && withPiece(len(p)) > size {
			chunks = append(chunks, strings.Join(window, "\n"))
			for len(window) > 0 && (total > overlap || withPiece(len(p)) > size) {
				total -= len(window[0])
				if len(window) > 1 {
					total--
				}
				window = window[1:]
			}
		}
		total = withPiece(len(p))
		window = append(window, p)
	}
	if len(window) > 0 {
		chunks = append(chunks, strings.Join(window, "\n"))
	}
	return chunks
}

func splitLong(s string, size int) []string {
	var out []string
	for len(s) > size {
		cut := size
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		if sp := strings.LastIndexByte(s[:cut], ' '); sp > size/2 {
			cut = sp
		}
		out = append(out, strings.TrimSpace(s[:cut]))
		s = strings.TrimSpace(s[cut:])
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}

// LoadPath indexes a text document, or every .txt and .md file under a
// directory, replacing passages previously loaded from the same file name.
// It returns the number of passages stored.
func LoadPath(ctx context.Context, store Store, path string, size, overlap int) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat knowledge path: %w", err)
	}
	if !info.IsDir() {
		return loadFile(ctx, store, path, size, overlap)
	}

	total := 0
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		ext := strings.ToLower(filepath.Ext(p))
		if d.IsDir() || (ext != ".txt" && ext != ".md") {
			return nil
		}
		n, err := loadFile(ctx, store, p, size, overlap)
		total += n
		return err
	})
	if err != nil {
		return total, fmt.Errorf("failed to load knowledge directory: %w", err)
	}
	return total, nil
}

func loadFile(ctx context.Context, store Store, path string, size, overlap int) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return store.SaveChunks(ctx, filepath.Base(path), SplitText(string(data), size, overlap))
}
