package learning

import "strings"

// MaxAttempts is the per-question attempt cap. The third wrong answer
// resolves the question and reveals the correct answer.
const MaxAttempts = 3

// normalizeAnswer lowercases and collapses whitespace runs to a single
// space. Grading is an exact match of normalized strings, with no fuzzy
// or partial matching.
func normalizeAnswer(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// gradeAnswer compares a submitted answer against the stored one.
func gradeAnswer(submitted, correct string) bool {
	return normalizeAnswer(submitted) == normalizeAnswer(correct)
}
