package paginate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
)

// Params is the resolved, clamped pagination request.
type Params struct {
	Offset int
	Limit  int
	Cursor string
}

// ExtractPaginationParams clamps limit into [MIN,MAX], clamps offset to a
// non-negative value, and ignores non-numeric inputs (falling back to
// defaults rather than erroring — this system never rejects a request for
// a malformed pagination hint).
func ExtractPaginationParams(args map[string]interface{}, cfg config.PaginationConfig) Params {
	limit := cfg.DefaultLimitTokens
	if v, ok := numericArg(args["limit"]); ok {
		limit = int(v)
	}
	if limit < cfg.MinLimitTokens {
		limit = cfg.MinLimitTokens
	}
	if limit > cfg.MaxLimitTokens {
		limit = cfg.MaxLimitTokens
	}

	offset := 0
	if v, ok := numericArg(args["offset"]); ok {
		offset = int(v)
	}
	if offset < 0 {
		offset = 0
	}

	cursor, _ := args["cursor"].(string)

	params := Params{Offset: offset, Limit: limit, Cursor: cursor}
	if cursor != "" {
		if overrides, ok := ParseCursor(cursor); ok {
			if overrides.Offset != nil {
				params.Offset = clampInt(*overrides.Offset, 0, -1)
			}
			if overrides.Limit != nil {
				params.Limit = clampInt(*overrides.Limit, cfg.MinLimitTokens, cfg.MaxLimitTokens)
			}
		}
	}

	return params
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if max >= 0 && v > max {
		return max
	}
	return v
}

func numericArg(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// CursorOverrides is the decoded form of a pagination cursor.
type CursorOverrides struct {
	Offset *int
	Limit  *int
}

// ParseCursor accepts either "offset:<int>" or a JSON object with numeric
// offset/limit fields. Invalid input yields an empty, ok=false result —
// cursor parsing never panics or errors out to the caller.
func ParseCursor(s string) (CursorOverrides, bool) {
	if s == "" {
		return CursorOverrides{}, false
	}

	if strings.HasPrefix(s, "offset:") {
		n, err := strconv.Atoi(strings.TrimPrefix(s, "offset:"))
		if err != nil {
			return CursorOverrides{}, false
		}
		return CursorOverrides{Offset: &n}, true
	}

	var raw struct {
		Offset *float64 `json:"offset"`
		Limit  *float64 `json:"limit"`
	}
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return CursorOverrides{}, false
	}

	var out CursorOverrides
	if raw.Offset != nil {
		n := int(*raw.Offset)
		out.Offset = &n
	}
	if raw.Limit != nil {
		n := int(*raw.Limit)
		out.Limit = &n
	}
	if out.Offset == nil && out.Limit == nil {
		return CursorOverrides{}, false
	}
	return out, true
}

// Metadata describes one page's position within the full response.
type Metadata struct {
	Total       int
	Offset      int
	EndOffset   int
	Limit       int
	HasMore     bool
	NextCursor  string
	ChunkIndex  int
	TotalChunks int
}

// CreatePaginationMetadata builds the metadata envelope for one returned
// chunk. chunkSize is the size of the chunk actually returned; chunks/index
// describe its position when the caller already split the text (index is
// 0-based, -1 when not applicable).
func CreatePaginationMetadata(total int, params Params, chunkSize int, totalChunks, index int) Metadata {
	endOffset := params.Offset + chunkSize
	hasMore := endOffset < total

	meta := Metadata{
		Total:       total,
		Offset:      params.Offset,
		EndOffset:   endOffset,
		Limit:       params.Limit,
		HasMore:     hasMore,
		ChunkIndex:  index,
		TotalChunks: totalChunks,
	}
	if hasMore {
		meta.NextCursor = fmt.Sprintf("offset:%d", endOffset)
	}
	return meta
}

// FormatPaginationStatus produces the canonical one-line status string.
func FormatPaginationStatus(meta Metadata) string {
	if meta.TotalChunks <= 1 {
		return fmt.Sprintf("Complete response (%d characters)", meta.Total)
	}

	part := meta.ChunkIndex + 1
	startChar := meta.Offset + 1
	endChar := meta.EndOffset

	if meta.HasMore {
		return fmt.Sprintf("Part %d/%d: chars %d-%d of %d • Use offset parameter to continue", part, meta.TotalChunks, startChar, endChar, meta.Total)
	}
	return fmt.Sprintf("Part %d/%d: chars %d-%d of %d • Complete", part, meta.TotalChunks, startChar, endChar, meta.Total)
}
