// Package extractor derives action item candidates from transcript text
// using a deterministic phrase heuristic. The same transcript always
// yields the same candidates in the same order.
package extractor

import (
	"strings"

	"github.com/recapd/recapd/pkg/models"
)

// Candidate is a possible action item found in a transcript sentence.
type Candidate struct {
	Title    string
	Priority models.ActionPriority
	Sentence string
}

var triggerPhrases = []string{
	"need to",
	"follow up",
	"schedule",
	"review",
	"action item",
	"todo",
	"assign",
	"prepare",
	"send",
	"finish",
}

var highPriorityMarkers = []string{
	"urgent",
	"asap",
	"important",
}

var lowPriorityMarkers = []string{
	"maybe",
	"consider",
	"could",
}

var titlePrefixes = []string{
	"action item:",
	"todo:",
	"we need to:",
	"task:",
}

// Extract scans the transcript sentence by sentence and returns the
// candidates that look like commitments or tasks.
func Extract(transcript string) []Candidate {
	candidates := []Candidate{}

	for _, sentence := range splitSentences(transcript) {
		lowered := strings.ToLower(sentence)

		if !containsAny(lowered, triggerPhrases) {
			continue
		}

		candidates = append(candidates, Candidate{
			Title:    title(sentence),
			Priority: priority(lowered),
			Sentence: sentence,
		})
	}

	return candidates
}

func splitSentences(transcript string) []string {
	sentences := []string{}

	var current strings.Builder

	flush := func() {
		sentence := strings.TrimSpace(current.String())
		current.Reset()

		if sentence != "" {
			sentences = append(sentences, sentence)
		}
	}

	for _, r := range transcript {
		switch r {
		case '.', '!', '?':
			flush()
		default:
			current.WriteRune(r)
		}
	}

	flush()

	return sentences
}

func containsAny(lowered string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}

	return false
}

func priority(lowered string) models.ActionPriority {
	if containsAny(lowered, highPriorityMarkers) {
		return models.PriorityHigh
	}

	if containsAny(lowered, lowPriorityMarkers) {
		return models.PriorityLow
	}

	return models.PriorityMedium
}

// title strips recognized boilerplate prefixes from the sentence so the
// action reads like a task, not a transcript line.
func title(sentence string) string {
	trimmed := strings.TrimSpace(sentence)

	for _, prefix := range titlePrefixes {
		if len(trimmed) >= len(prefix) && strings.EqualFold(trimmed[:len(prefix)], prefix) {
			return strings.TrimSpace(trimmed[len(prefix):])
		}
	}

	return trimmed
}
