package oracle

import (
	"fmt"
	"strings"

	"github.com/ahrav/votechain/internal/domain"
)

// scoreToolName is the function every provider is forced to call.
const scoreToolName = "submit_scores"

// scoreToolDescription describes the function to the provider.
const scoreToolDescription = "Submit the final scores for all candidates"

// judgeSystemPrompt establishes the judge persona shared by all
// providers.
const judgeSystemPrompt = "You are an impartial AI judge. " +
	"Evaluate candidates and return scores using the provided function."

// buildPrompt renders the evidence dossier the oracle scores against.
// Candidates are numbered one-based and each carries its authoritative
// id so the response can be matched back; the closing instruction
// exists because models still occasionally echo names instead.
func buildPrompt(criteria string, bundles []domain.EvidenceBundle) string {
	var b strings.Builder

	b.WriteString("Evaluate these candidates for a voting competition.\n\n")
	b.WriteString("EVALUATION CRITERIA (defined by room owner):\n")
	b.WriteString(criteria)
	b.WriteString("\n\nCANDIDATES TO EVALUATE:\n")

	for i, bundle := range bundles {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		writeCandidate(&b, i+1, bundle)
	}

	b.WriteString("\nScore each candidate from 0 to 100 based on:\n")
	b.WriteString("- How well they meet the stated criteria\n")
	b.WriteString("- The quality and sentiment of community evaluations\n")
	b.WriteString("- Vote count as a signal of community preference\n\n")
	b.WriteString("IMPORTANT: Use the exact UUID provided for each candidate.")

	return b.String()
}

func writeCandidate(b *strings.Builder, index int, bundle domain.EvidenceBundle) {
	description := bundle.Description
	if description == "" {
		description = "No description"
	}

	fmt.Fprintf(b, "\n[Candidate #%d] %s\n", index, bundle.Name)
	fmt.Fprintf(b, "- UUID: %s\n", bundle.CandidateID)
	fmt.Fprintf(b, "- Description: %s\n", description)
	fmt.Fprintf(b, "- Vote Count: %d\n", bundle.VoteCount)
	b.WriteString("- Community Evaluations:\n")

	if len(bundle.Evaluations) == 0 {
		b.WriteString("  No evaluations submitted\n")
		return
	}
	for i, eval := range bundle.Evaluations {
		fmt.Fprintf(b, "  %d. %s\n", i+1, eval)
	}
}
