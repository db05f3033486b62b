// Package fingerprint derives a stable content identifier from a word
// sequence. The same logical document parsed on different devices (or
// re-extracted from a file with slightly different whitespace) produces the
// same fingerprint, which is what cross-device matching keys on.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// HeadTailWords is the number of words taken from each end of the document.
// Hashing the full content is needlessly expensive for large documents; the
// head, the tail and the total count are enough to tell real documents apart.
const HeadTailWords = 50

// FromWords returns the hex-encoded SHA-256 fingerprint of a word sequence.
//
// The digest input is the lowercased first and last HeadTailWords words
// joined by '|', followed by '|' and the total word count. For documents
// shorter than 2*HeadTailWords the head and tail overlap, which is fine:
// the construction stays deterministic. An empty sequence yields a valid
// (degenerate) fingerprint.
func FromWords(words []string) string {
	head := lowered(firstN(words, HeadTailWords))
	tail := lowered(lastN(words, HeadTailWords))

	parts := make([]string, 0, len(head)+len(tail))
	parts = append(parts, head...)
	parts = append(parts, tail...)

	payload := strings.Join(parts, "|") + "|" + strconv.Itoa(len(words))

	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// FromText splits text on whitespace (dropping empty tokens) and fingerprints
// the resulting words.
func FromText(text string) string {
	return FromWords(strings.Fields(text))
}

func firstN(words []string, n int) []string {
	if len(words) < n {
		n = len(words)
	}
	return words[:n]
}

func lastN(words []string, n int) []string {
	if len(words) < n {
		n = len(words)
	}
	return words[len(words)-n:]
}

func lowered(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}
