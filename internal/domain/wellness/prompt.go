package wellness

// Journal prompts offered after a mood check-in.
const (
	PromptLowMood  = "What is bothering you today?"
	PromptGoodMood = "What went well today?"
)

// lowMoodBelow separates the two prompts.
const lowMoodBelow = 5

// JournalPrompt suggests a journaling question for a mood score.
func JournalPrompt(score MoodScore) string {
	if score < lowMoodBelow {
		return PromptLowMood
	}
	return PromptGoodMood
}
