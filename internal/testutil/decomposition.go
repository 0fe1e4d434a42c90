package testutil

import (
	"encoding/json"
	"fmt"
)

// SubtaskSpec mirrors the subtask shape the request classifier emits.
type SubtaskSpec struct {
	Description string `json:"description"`
	Agent       string `json:"agent"`
	Priority    int    `json:"priority,omitempty"`
}

// DelegationJSON builds a classifier response that requests delegation to the
// given subtasks. Panics on marshal failure, which cannot happen for this
// shape; tests prefer the short call site.
func DelegationJSON(subtasks ...SubtaskSpec) string {
	payload := map[string]any{
		"needs_delegation": true,
		"subtasks":         subtasks,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal delegation payload: %v", err))
	}
	return string(data)
}

// DirectJSON builds a classifier response that declines delegation.
func DirectJSON() string {
	return `{"needs_delegation": false, "subtasks": []}`
}
