package toolhandler

import (
	"strings"

	"github.com/ejmockler/brutalist-mcp-go/pkg/cache"
)

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func boolArg(args map[string]interface{}, key string) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return false
}

func stringSliceArg(args map[string]interface{}, key string) []string {
	raw, ok := args[key]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// stringMapArg reads a per-agent override object (e.g. {"claude": "opus"})
// into a map, skipping any non-string values.
func stringMapArg(args map[string]interface{}, key string) map[string]string {
	raw, ok := args[key]
	if !ok {
		return nil
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]string, len(obj))
	for k, v := range obj {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// normalizePagination copies the catalog's limit_tokens field into the
// "limit" key paginate.ExtractPaginationParams reads, without mutating the
// caller's original args map.
func normalizePagination(args map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(args))
	for k, v := range args {
		out[k] = v
	}
	if _, hasLimit := out["limit"]; !hasLimit {
		if v, ok := out["limit_tokens"]; ok {
			out["limit"] = v
		}
	}
	return out
}

// filterArgs returns the subset of args whose keys are in fields, used to
// derive the cache key from only a tool's content-relevant fields.
func filterArgs(args map[string]interface{}, fields []string) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		if v, ok := args[f]; ok {
			out[f] = v
		}
	}
	return out
}

// renderHistory renders prior conversation turns as plain text context for
// the Orchestrator, pulling each turn's primary-argument value (rather than
// the full requestParams map) as the "user" side of the turn.
func renderHistory(history []cache.ConversationTurn, primaryArgField string) string {
	var b strings.Builder
	for _, turn := range history {
		prompt := stringArg(turn.Request, primaryArgField)
		if prompt == "" {
			prompt = stringArg(turn.Request, "context")
		}
		b.WriteString("User: ")
		b.WriteString(prompt)
		b.WriteString("\nAssistant: ")
		b.WriteString(turn.Response)
		b.WriteString("\n\n")
	}
	return b.String()
}
