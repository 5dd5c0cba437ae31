package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("notifier not configured")

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Notifier delivers a file's classification to operators.
type Notifier interface {
	Channel() string
	Notify(ctx context.Context, fileID, status string, errs map[string]any) (SendResult, error)
}

var stageOrder = []string{"template", "null_check", "data_type_check"}

// FormatMessage renders the markdown text used by chat channels.
func FormatMessage(fileID, status string, errs map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**File ID:** %s\n**Status:** %s", fileID, status)
	if len(errs) == 0 {
		return b.String()
	}

	b.WriteString("\n**Errors:**")
	for _, key := range orderedKeys(errs) {
		switch v := errs[key].(type) {
		case map[string]any:
			fmt.Fprintf(&b, "\n- %s:", key)
			subKeys := make([]string, 0, len(v))
			for k := range v {
				subKeys = append(subKeys, k)
			}
			sort.Strings(subKeys)
			for _, k := range subKeys {
				fmt.Fprintf(&b, "\n    - %s → rows %s", k, render(v[k]))
			}
		default:
			fmt.Fprintf(&b, "\n- %s → %s", key, render(v))
		}
	}
	return b.String()
}

func orderedKeys(errs map[string]any) []string {
	keys := make([]string, 0, len(errs))
	seen := make(map[string]bool, len(stageOrder))
	for _, k := range stageOrder {
		if _, ok := errs[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range errs {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func render(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
