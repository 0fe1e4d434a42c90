package core

import (
	"strings"
	"testing"
)

func TestSearchResult_Snippet(t *testing.T) {
	r := SearchResult{ID: "mem_1", Content: strings.Repeat("a", 300), Score: 0.9}

	snip := r.Snippet(200)
	if len([]rune(snip)) != 203 {
		t.Fatalf("expected 200 runes plus ellipsis, got %d", len([]rune(snip)))
	}
	if !strings.HasSuffix(snip, "...") {
		t.Error("truncated snippet should end with an ellipsis")
	}
}

func TestSearchResult_SnippetShortContent(t *testing.T) {
	r := SearchResult{ID: "mem_2", Content: "short note", Score: 0.7}

	if got := r.Snippet(200); got != "short note" {
		t.Errorf("short content should pass through untouched, got %q", got)
	}
	if got := r.Snippet(0); got != "short note" {
		t.Errorf("non-positive max should return the full content, got %q", got)
	}
}

func TestSearchResult_SnippetMultibyte(t *testing.T) {
	r := SearchResult{ID: "mem_3", Content: strings.Repeat("é", 10), Score: 0.5}

	snip := r.Snippet(4)
	if !strings.HasPrefix(snip, "éééé") || !strings.HasSuffix(snip, "...") {
		t.Errorf("truncation should respect rune boundaries, got %q", snip)
	}
}
