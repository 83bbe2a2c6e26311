package sse

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// frameWriter serializes Frames as the standard SSE id/event/data triple,
// flushing after every write so the client sees bytes immediately. Adapted
// from the client-side SSEWriter pattern used elsewhere in the example
// corpus for an http.ResponseWriter + http.Flusher target.
type frameWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newFrameWriter(w http.ResponseWriter) (*frameWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("sse: response writer does not support flushing")
	}
	return &frameWriter{w: w, flusher: flusher}, nil
}

func (fw *frameWriter) writeHeaders() {
	h := fw.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	fw.w.WriteHeader(http.StatusOK)
	fw.flusher.Flush()
}

func (fw *frameWriter) write(frame Frame) error {
	var buf bytes.Buffer
	if frame.ID != "" {
		buf.WriteString("id: " + frame.ID + "\n")
	}
	if frame.Event != "" {
		buf.WriteString("event: " + frame.Event + "\n")
	}
	for _, line := range strings.Split(string(frame.Data), "\n") {
		buf.WriteString("data: " + line + "\n")
	}
	buf.WriteString("\n")

	if _, err := io.Copy(fw.w, &buf); err != nil {
		return err
	}
	fw.flusher.Flush()
	return nil
}
