package buffer

import (
	"fmt"
	"strings"

	"github.com/ejmockler/brutalist-mcp-go/pkg/semparse"
)

type coalesceKey struct {
	agent       string
	typ         semparse.EventType
	contentType semparse.ContentType
}

// coalesce merges events sharing (agent, type, contentType) within one
// flush batch into a single Event: up to 3 events join
// their content with "|"; more than 3 become an elision of first/last with
// a count of the elided middle.
func coalesce(class Class, events []semparse.StreamingEvent) []Event {
	order := make([]coalesceKey, 0, len(events))
	groups := make(map[coalesceKey][]semparse.StreamingEvent)
	for _, e := range events {
		k := coalesceKey{agent: e.Agent, typ: e.Type, contentType: e.ContentType}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], e)
	}

	out := make([]Event, 0, len(order))
	for _, k := range order {
		group := groups[k]
		out = append(out, mergeGroup(class, group))
	}
	return out
}

func mergeGroup(class Class, group []semparse.StreamingEvent) Event {
	last := group[len(group)-1]
	if len(group) == 1 {
		return Event{StreamingEvent: last, Class: class, CoalescedCount: 1}
	}

	first := group[0]
	var content string
	if len(group) <= 3 {
		parts := make([]string, len(group))
		for i, e := range group {
			parts[i] = e.Content
		}
		content = strings.Join(parts, "|")
	} else {
		content = fmt.Sprintf("%s … [%d similar events] … %s", first.Content, len(group)-2, last.Content)
	}

	merged := last
	merged.Content = content

	return Event{
		StreamingEvent: merged,
		Class:          class,
		CoalescedCount: len(group),
		Timespan:       last.Timestamp.Sub(first.Timestamp),
	}
}
