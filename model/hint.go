package model

import "strings"

// Hint biases provider-side model selection for a piece of work. Adapters map
// hints to concrete model ids; an unknown hint falls back to the default.
type Hint string

const (
	HintDefault  Hint = "default"
	HintCode     Hint = "code"
	HintCreative Hint = "creative"
)

var (
	codeKeywords     = []string{"code", "programming", "debug", "technical"}
	creativeKeywords = []string{"creative", "write", "story", "translate"}
)

// HintForTask inspects a task description and picks the model class suited
// for it. Plain keyword matching, deliberately cheap: the hint only nudges
// which configured model id an adapter uses.
func HintForTask(description string) Hint {
	lower := strings.ToLower(description)
	for _, kw := range codeKeywords {
		if strings.Contains(lower, kw) {
			return HintCode
		}
	}
	for _, kw := range creativeKeywords {
		if strings.Contains(lower, kw) {
			return HintCreative
		}
	}
	return HintDefault
}
