package toolhandler

import (
	"fmt"
	"strings"
	"time"

	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
	"github.com/ejmockler/brutalist-mcp-go/pkg/orchestrator"
	"github.com/ejmockler/brutalist-mcp-go/pkg/paginate"
)

// paginatePage extracts the single page of text starting at params.Offset,
// boundary-aware, converting the token-based limit into
// the Chunker's char budget via cfg.CharsPerToken.
func paginatePage(total string, params paginate.Params, cfg config.PaginationConfig) (string, paginate.Metadata) {
	charLimit := int(float64(params.Limit) * cfg.CharsPerToken)
	if charLimit <= 0 {
		charLimit = len(total)
	}

	offset := params.Offset
	if offset > len(total) {
		offset = len(total)
	}
	remaining := total[offset:]

	chunker := paginate.NewChunker(charLimit, cfg.ChunkOverlapChars)
	chunks := chunker.Split(remaining)
	if len(chunks) == 0 {
		return "", paginate.CreatePaginationMetadata(len(total), params, 0, 1, 0)
	}

	page := chunks[0]
	chunkSize := page.EndOffset - page.StartOffset

	totalChunks := 1
	if charLimit > 0 {
		totalChunks = (len(total) + charLimit - 1) / charLimit
		if totalChunks < 1 {
			totalChunks = 1
		}
	}
	chunkIndex := 0
	if charLimit > 0 {
		chunkIndex = offset / charLimit
	}

	meta := paginate.CreatePaginationMetadata(len(total), params, chunkSize, totalChunks, chunkIndex)
	return page.Content, meta
}

// formatResponse builds the final text handed back to the MCP client: a
// "# Brutalist Analysis Results" header, optional Context ID, a Pagination
// Status line, a Token Estimate, and — when more remains — a Continue
// Reading hint naming the next offset and context_id. An optional
// per-critic execution summary follows when verbose, then the page itself.
func formatResponse(total string, params paginate.Params, cfg config.PaginationConfig, contextID string, verbose bool, result *orchestrator.Result) string {
	page, meta := paginatePage(total, params, cfg)

	var b strings.Builder
	b.WriteString("# Brutalist Analysis Results\n")
	if contextID != "" {
		fmt.Fprintf(&b, "Context ID: %s\n", contextID)
	}
	b.WriteString(paginate.FormatPaginationStatus(meta))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Token Estimate: %d\n", paginate.CountTokens(page, cfg.CharsPerToken))
	if meta.HasMore {
		if contextID != "" {
			fmt.Fprintf(&b, "Continue Reading: offset=%d, context_id=%s\n", meta.EndOffset, contextID)
		} else {
			fmt.Fprintf(&b, "Continue Reading: offset=%d\n", meta.EndOffset)
		}
	}
	b.WriteString("\n")

	if verbose && result != nil {
		for _, a := range result.Agents {
			status := "ok"
			if !a.Success {
				status = string(a.Classification)
			}
			fmt.Fprintf(&b, "- %s: %s (%s)\n", a.Agent, status, a.ExecutionTime.Round(time.Millisecond))
		}
		b.WriteString("\n")
	}

	b.WriteString(page)
	return b.String()
}
