package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// ElisionMarker joins the head and tail of a bounded context block.
const ElisionMarker = "\n...\n"

// NoContext is embedded in the prompt when retrieval found nothing.
const NoContext = "NO CONTEXT"

// BuildContext renders hits as numbered entries in rank order. Entry i holds
// the hit's text with newlines flattened, followed by its citation URI.
func BuildContext(hits []domain.SearchHit) string {
	entries := make([]string, 0, len(hits))
	for i := range hits {
		text := strings.TrimSpace(flattenNewlines(hits[i].Text))
		entries = append(entries, fmt.Sprintf("[%d] %s\n<%s>", i+1, text, hits[i].CitationURI))
	}
	return strings.Join(entries, "\n\n")
}

func flattenNewlines(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}

// BoundContext returns text unchanged if it fits in maxChars characters.
// Otherwise it keeps the first 70% of the budget from the head and the rest
// from the tail, joined by ElisionMarker, so the result is exactly maxChars
// characters long. Lengths are counted in runes.
//
// maxChars below domain.MinContextChars is a programming error and panics.
func BoundContext(text string, maxChars int) string {
	if maxChars < domain.MinContextChars {
		panic(fmt.Sprintf("services: context budget %d below minimum %d", maxChars, domain.MinContextChars))
	}

	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}

	budget := maxChars - len([]rune(ElisionMarker))
	head := budget * 7 / 10
	tail := budget - head

	var b strings.Builder
	b.Grow(len(text))
	b.WriteString(string(runes[:head]))
	b.WriteString(ElisionMarker)
	b.WriteString(string(runes[len(runes)-tail:]))
	return b.String()
}
