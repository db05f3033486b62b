// Package textparse turns raw text and plain-text files into the ordered
// word sequences the presentation engine consumes. PDF extraction is left to
// an external collaborator; only the text path lives here.
package textparse

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dkrasnov/flashread/internal/common"
)

// MaxFileSize is the upload size ceiling (10 MB).
const MaxFileSize = 10 * 1024 * 1024

// Words splits text on whitespace, excluding empty tokens.
func Words(text string) []string {
	return strings.Fields(text)
}

// ReadFile validates and reads a plain-text file, enforcing the size ceiling
// and the extension allow-list, and returns its raw content.
func ReadFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > MaxFileSize {
		return "", fmt.Errorf("%w: maximum size is %d bytes", common.ErrorFileTooLarge, MaxFileSize)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text", ".md":
	default:
		return "", fmt.Errorf("%w: please use a plain-text file", common.ErrorUnsupportedFormat)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

// File reads and parses a plain-text file.
func File(path string) ([]string, error) {
	content, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Words(content), nil
}

// EstimateReadingTime formats the estimated reading time for wordCount words
// at the given pace as "m:ss".
func EstimateReadingTime(wordCount, wpm int) string {
	if wpm <= 0 {
		return "0:00"
	}
	totalSeconds := (wordCount*60 + wpm - 1) / wpm
	return fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60)
}

// Statistics summarizes a parsed word sequence.
type Statistics struct {
	WordCount         int
	CharacterCount    int
	AverageWordLength int
}

// GetStatistics computes word statistics for a parsed sequence.
func GetStatistics(words []string) Statistics {
	chars := 0
	for _, w := range words {
		chars += len(w)
	}
	avg := 0
	if len(words) > 0 {
		avg = (chars + len(words)/2) / len(words)
	}
	return Statistics{WordCount: len(words), CharacterCount: chars, AverageWordLength: avg}
}
