package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/votechain/internal/domain"
)

func TestParseResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		resp            Response
		wantScores      []domain.RawScore
		wantUnparseable bool
	}{
		{
			name: "tool arguments",
			resp: Response{
				ToolArguments: `{"scores":[{"candidate_id":"cand-a","score":85,"reasoning":"strong"}]}`,
			},
			wantScores: []domain.RawScore{
				{CandidateID: "cand-a", Score: 85, Reasoning: "strong"},
			},
		},
		{
			name: "tool arguments preferred over content",
			resp: Response{
				ToolArguments: `{"scores":[{"candidate_id":"cand-a","score":85}]}`,
				Content:       `{"scores":[{"candidate_id":"cand-b","score":10}]}`,
			},
			wantScores: []domain.RawScore{{CandidateID: "cand-a", Score: 85}},
		},
		{
			name: "json embedded in prose content",
			resp: Response{
				Content: `Here are my scores: {"scores":[{"candidate_id":"cand-b","score":60,"reasoning":"ok"}]} hope that helps`,
			},
			wantScores: []domain.RawScore{
				{CandidateID: "cand-b", Score: 60, Reasoning: "ok"},
			},
		},
		{
			name: "markdown fenced content",
			resp: Response{
				Content: "```json\n{\"scores\":[{\"candidate_id\":\"cand-c\",\"score\":42}]}\n```",
			},
			wantScores: []domain.RawScore{{CandidateID: "cand-c", Score: 42}},
		},
		{
			name: "nested braces in reasoning string",
			resp: Response{
				Content: `{"scores":[{"candidate_id":"cand-a","score":70,"reasoning":"uses {braces} and \"quotes\""}]}`,
			},
			wantScores: []domain.RawScore{
				{CandidateID: "cand-a", Score: 70, Reasoning: `uses {braces} and "quotes"`},
			},
		},
		{
			name: "malformed tool arguments fall back to content",
			resp: Response{
				ToolArguments: `{"scores": [`,
				Content:       `{"scores":[{"candidate_id":"cand-a","score":55}]}`,
			},
			wantScores: []domain.RawScore{{CandidateID: "cand-a", Score: 55}},
		},
		{
			name:            "no json anywhere",
			resp:            Response{Content: "I cannot score these candidates."},
			wantUnparseable: true,
		},
		{
			name:            "empty score list",
			resp:            Response{ToolArguments: `{"scores":[]}`},
			wantUnparseable: true,
		},
		{
			name:            "empty response",
			resp:            Response{},
			wantUnparseable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseResponse(tt.resp)
			if tt.wantUnparseable {
				assert.True(t, got.Unparseable)
				assert.Empty(t, got.Scores)
				return
			}
			require.False(t, got.Unparseable)
			assert.Equal(t, tt.wantScores, got.Scores)
		})
	}
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare object",
			input: `{"a":1}`,
			want:  `{"a":1}`,
		},
		{
			name:  "surrounded by text",
			input: `sure thing {"a":1} done`,
			want:  `{"a":1}`,
		},
		{
			name:  "generic code fence",
			input: "```\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "unbalanced braces",
			input: `{"a": {"b": 1}`,
			want:  "",
		},
		{
			name:  "no object",
			input: "nothing here",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, extractJSON(tt.input))
		})
	}
}
