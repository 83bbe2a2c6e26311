package semparse

import "regexp"

// geminiThinkingAnnotation matches bracketed thinking annotations such as
// "[THINKING: weighing two approaches]" so they can be stripped while
// leaving surrounding markdown untouched.
var geminiThinkingAnnotation = regexp.MustCompile(`\[THINKING:[^\]]*\]`)

// geminiProcessor strips [THINKING:...] annotations, preserving markdown.
type geminiProcessor struct{}

func (geminiProcessor) Process(line string) string {
	return geminiThinkingAnnotation.ReplaceAllString(line, "")
}
