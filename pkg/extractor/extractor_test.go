package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recapd/recapd/pkg/models"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		want       []Candidate
	}{
		{
			name:       "empty transcript",
			transcript: "",
			want:       []Candidate{},
		},
		{
			name:       "no triggers",
			transcript: "The weather was nice. Everyone said hello.",
			want:       []Candidate{},
		},
		{
			name:       "urgent follow up",
			transcript: "We need to schedule a follow up urgently.",
			want: []Candidate{
				{
					Title:    "We need to schedule a follow up urgently",
					Priority: models.PriorityHigh,
					Sentence: "We need to schedule a follow up urgently",
				},
			},
		},
		{
			name:       "hedged suggestion is low priority",
			transcript: "Maybe we could review the draft next week.",
			want: []Candidate{
				{
					Title:    "Maybe we could review the draft next week",
					Priority: models.PriorityLow,
					Sentence: "Maybe we could review the draft next week",
				},
			},
		},
		{
			name:       "plain commitment is medium priority",
			transcript: "I will send the report on Monday.",
			want: []Candidate{
				{
					Title:    "I will send the report on Monday",
					Priority: models.PriorityMedium,
					Sentence: "I will send the report on Monday",
				},
			},
		},
		{
			name:       "boilerplate prefix stripped from title",
			transcript: "Action item: prepare the quarterly deck!",
			want: []Candidate{
				{
					Title:    "prepare the quarterly deck",
					Priority: models.PriorityMedium,
					Sentence: "Action item: prepare the quarterly deck",
				},
			},
		},
		{
			name:       "todo prefix stripped case-insensitively",
			transcript: "TODO: finish the migration asap?",
			want: []Candidate{
				{
					Title:    "finish the migration asap",
					Priority: models.PriorityHigh,
					Sentence: "TODO: finish the migration asap",
				},
			},
		},
		{
			name:       "multiple sentences keep transcript order",
			transcript: "We need to assign an owner. Lunch was good. Please review the budget, it is important.",
			want: []Candidate{
				{
					Title:    "We need to assign an owner",
					Priority: models.PriorityMedium,
					Sentence: "We need to assign an owner",
				},
				{
					Title:    "Please review the budget, it is important",
					Priority: models.PriorityHigh,
					Sentence: "Please review the budget, it is important",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.transcript)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractIdempotent(t *testing.T) {
	transcript := "We need to schedule a follow up urgently. Maybe consider a retro. TODO: send minutes."

	first := Extract(transcript)
	require.NotEmpty(t, first)

	for range 5 {
		assert.Equal(t, first, Extract(transcript))
	}
}

func TestExtractScheduleFollowUpScenario(t *testing.T) {
	got := Extract("We need to schedule a follow up urgently.")

	require.Len(t, got, 1)
	assert.Equal(t, models.PriorityHigh, got[0].Priority)
	assert.Contains(t, got[0].Title, "schedule a follow up")
}
