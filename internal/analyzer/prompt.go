package analyzer

import (
	"fmt"
	"strings"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
)

func systemPrompt() string {
	names := make([]string, 0, len(models.Categories()))
	for _, c := range models.Categories() {
		names = append(names, string(c))
	}
	return fmt.Sprintf(`You are an automotive expert. A vehicle owner recorded a short video describing a problem.
You receive the transcription of what they said and one still frame from the video.
Identify the distinct mechanical problems.
For EACH problem give a category from this list: %s.
For EACH problem list 3-5 keywords relevant to that specific issue.
Set "Issues_related" to false when the problems are unrelated to one another, true otherwise.
Return JSON only:
{
  "issues": [
    {"problem": "Warped Rotors", "category": "Brakes", "keywords": ["vibration", "pulsation", "brake noise"]}
  ],
  "Issues_related": true
}
Return {"issues": []} when no mechanical problem is described.`, strings.Join(names, ", "))
}

func userPrompt(transcript string) string {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "Transcription: (no speech detected). Use the image."
	}
	return "Transcription: " + transcript
}
