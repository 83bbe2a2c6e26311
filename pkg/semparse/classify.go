package semparse

import "regexp"

// classificationRule pairs a pattern with the classification it implies and
// the confidence that classification deserves when matched.
type classificationRule struct {
	pattern     *regexp.Regexp
	contentType ContentType
	severity    Severity
	confidence  float64
}

// classificationRules is checked in order; the first match wins. Order
// matters: errors and critical findings are checked before generic progress
// and debug text so a single alarming word doesn't get diluted by a looser
// later pattern.
var classificationRules = []classificationRule{
	{regexp.MustCompile(`(?i)\b(panic|fatal|crash|exception|stack trace)\b`), ContentError, SeverityNone, 0.9},
	{regexp.MustCompile(`(?i)\b(critical|severe|exploitable|remote code execution|rce)\b`), ContentFinding, SeverityCritical, 0.9},
	{regexp.MustCompile(`(?i)\b(high severity|security vulnerability|sql injection|authentication bypass)\b`), ContentFinding, SeverityHigh, 0.85},
	{regexp.MustCompile(`(?i)\b(bug|issue|problem|flaw|anti-pattern|code smell)\b`), ContentFinding, SeverityMedium, 0.75},
	{regexp.MustCompile(`(?i)\b(minor|nit|style|cosmetic|suggestion)\b`), ContentFinding, SeverityLow, 0.6},
	{regexp.MustCompile(`(?i)\b(milestone|checkpoint|phase complete|stage \d+ done)\b`), ContentMilestone, SeverityNone, 0.8},
	{regexp.MustCompile(`(?i)\b(scanning|walking|loading|reading file|fetching)\b`), ContentProgress, SeverityNone, 0.65},
	{regexp.MustCompile(`(?i)^\s*\[debug\]|(?i)\bdebug:`), ContentDebug, SeverityNone, 0.6},
	{regexp.MustCompile(`(?i)\b(debug|trace|verbose)\b`), ContentDebug, SeverityNone, 0.35},
}

// classify assigns a contentType, severity and confidence to a complete
// segment. Unmatched text defaults to low-confidence progress so it still
// participates in buffering rather than being silently dropped.
func classify(segment string) (ContentType, Severity, float64) {
	for _, rule := range classificationRules {
		if rule.pattern.MatchString(segment) {
			return rule.contentType, rule.severity, rule.confidence
		}
	}
	return ContentProgress, SeverityInfo, 0.3
}
