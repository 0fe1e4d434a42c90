package core

// SearchResult represents a retrieved memory entry view with its relevance
// score. Results are ordered by descending score; equal scores preserve
// insertion order.
type SearchResult struct {
	ID       string
	Content  string
	Score    float64
	Metadata map[string]any
}

// Snippet returns the content truncated to max runes, with a trailing
// ellipsis when truncation happened. Prompt builders use it to keep
// retrieved context blocks bounded.
func (r SearchResult) Snippet(max int) string {
	if max <= 0 {
		return r.Content
	}
	runes := []rune(r.Content)
	if len(runes) <= max {
		return r.Content
	}
	return string(runes[:max]) + "..."
}
