package resolver

import (
	"fmt"
	"strings"
)

// OracleSystemPrompt frames the disambiguation request for the LLM.
const OracleSystemPrompt = "You are an exercise database expert. Return only the exercise_id or null."

// BuildPrompt renders the deterministic disambiguation prompt: the user's
// input followed by each candidate enumerated with a 1-based index and its
// id, name, equipment, target muscles and body parts.
func BuildPrompt(userInput string, candidates []Candidate) string {
	var lines strings.Builder
	for i, c := range candidates {
		if i > 0 {
			lines.WriteByte('\n')
		}
		fmt.Fprintf(&lines, "%d. ID: %s, Name: %q, Equipment: %s, Target: %s, Body Parts: %s",
			i+1, c.ExerciseID, c.Name, c.Equipment, c.TargetMuscles, c.BodyParts)
	}

	return fmt.Sprintf(`You are an exercise matching expert. Given a user's exercise description and a list of possible matches, select the BEST matching exercise.

User input: %q

Candidate exercises:
%s

Instructions:
- Consider exercise name similarity carefully
- Consider equipment mentioned (if any) in the user input
- Consider movement pattern and muscle groups
- If the user input is ambiguous, choose the most common variation
- If no good match exists among the candidates, return null

Return ONLY the exercise_id of the best match (e.g., "641mIfk"), or null if no match is appropriate.
Do not include any explanation or additional text.`, userInput, lines.String())
}

// cleanAnswer strips surrounding whitespace and quote characters from the
// oracle's raw answer.
func cleanAnswer(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.Trim(cleaned, `"'`)
	return strings.TrimSpace(cleaned)
}

// isNoMatchAnswer reports whether the oracle's answer is an explicit decline.
func isNoMatchAnswer(raw string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	return trimmed == "" || trimmed == "null" || trimmed == "none"
}
