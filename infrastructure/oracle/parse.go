package oracle

import (
	"encoding/json"
	"strings"

	"github.com/ahrav/votechain/internal/domain"
)

// scorePayload mirrors the submit_scores function arguments.
type scorePayload struct {
	Scores []struct {
		CandidateID string `json:"candidate_id"`
		Score       int    `json:"score"`
		Reasoning   string `json:"reasoning"`
	} `json:"scores"`
}

// parseResponse turns a provider response into raw scores. The forced
// function arguments are the primary source; free-text content is
// scanned for an embedded JSON object when the provider ignored the
// function. A response that yields neither is marked Unparseable, which
// is a value, not an error: the reconciler substitutes the vote
// fallback for it.
func parseResponse(resp Response) domain.OracleResponse {
	if payload, ok := decodePayload(resp.ToolArguments); ok {
		return payload
	}
	if payload, ok := decodePayload(extractJSON(resp.Content)); ok {
		return payload
	}
	return domain.OracleResponse{Unparseable: true}
}

func decodePayload(raw string) (domain.OracleResponse, bool) {
	if strings.TrimSpace(raw) == "" {
		return domain.OracleResponse{}, false
	}

	var payload scorePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return domain.OracleResponse{}, false
	}
	if len(payload.Scores) == 0 {
		return domain.OracleResponse{}, false
	}

	scores := make([]domain.RawScore, 0, len(payload.Scores))
	for _, s := range payload.Scores {
		scores = append(scores, domain.RawScore{
			CandidateID: s.CandidateID,
			Score:       s.Score,
			Reasoning:   s.Reasoning,
		})
	}
	return domain.OracleResponse{Scores: scores}, true
}

// extractJSON pulls a JSON object out of a response that may wrap it in
// markdown fences or surrounding prose. It scans for balanced braces
// while respecting string literals and escape sequences.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if strings.Contains(response, "```json") {
		start := strings.Index(response, "```json") + 7
		if end := strings.Index(response[start:], "```"); end != -1 {
			return strings.TrimSpace(response[start : start+end])
		}
	}

	if strings.Contains(response, "```") {
		start := strings.Index(response, "```") + 3
		// Skip a language identifier on the fence line.
		if newline := strings.Index(response[start:], "\n"); newline != -1 {
			start += newline + 1
		}
		if end := strings.Index(response[start:], "```"); end != -1 {
			candidate := strings.TrimSpace(response[start : start+end])
			if strings.HasPrefix(candidate, "{") {
				return candidate
			}
		}
	}

	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}

	braceCount := 0
	inString := false
	escapeNext := false

	for i := start; i < len(response); i++ {
		char := response[i]

		if escapeNext {
			escapeNext = false
			continue
		}
		if char == '\\' {
			escapeNext = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}

		if !inString {
			switch char {
			case '{':
				braceCount++
			case '}':
				braceCount--
				if braceCount == 0 {
					return response[start : i+1]
				}
			}
		}
	}

	return ""
}
