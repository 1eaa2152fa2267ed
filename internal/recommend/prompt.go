package recommend

import "fmt"

// statsWindowDays is the rolling window embedded in the generation prompt
// and persisted alongside each recommendation.
const statsWindowDays = 7

// promptTemplate is the fixed advisor prompt. Only the latest stress status
// and the rolling-window counts are interpolated; the wording itself is
// configuration, not logic.
const promptTemplate = `You are an eye health advisor providing personalized recommendations based on eye stress analysis.

User data:
- Current stress detection: %s
- Stress frequency in the past week: %d out of %d analyses (%d%%)

Based on this information, please provide:
1. A brief assessment of the user's eye health situation
2. 3-5 practical recommendations to improve their eye health
3. Suggested lifestyle adjustments if they are showing signs of eye strain

Format your response in JSON with these fields:
- assessment: A paragraph summarizing their situation
- recommendations: An array of recommendation strings
- lifestyleAdjustments: An array of adjustment suggestions`

func buildPrompt(hasStress bool, stressCount, total, percentage int) string {
	status := "No stress detected"
	if hasStress {
		status = "Stress detected"
	}
	return fmt.Sprintf(promptTemplate, status, stressCount, total, percentage)
}
