package recommend

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// Payload is the structured advice recovered from a generation response.
// Sequences may be empty but are never nil.
type Payload struct {
	Assessment           string   `json:"assessment"`
	Recommendations      []string `json:"recommendations"`
	LifestyleAdjustments []string `json:"lifestyleAdjustments"`
}

// DefaultFallback is returned whenever a generation response cannot be
// decoded. Engines may substitute their own copy; the text itself carries no
// logic.
var DefaultFallback = Payload{
	Assessment: "We couldn't analyze your eye health data properly. Please try again later.",
	Recommendations: []string{
		"Take regular breaks from screen time",
		"Practice the 20-20-20 rule",
		"Ensure proper lighting",
	},
	LifestyleAdjustments: []string{
		"Maintain good posture",
		"Stay hydrated",
		"Ensure adequate sleep",
	},
}

var (
	jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	anyFenceRe  = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// ExtractPayload recovers a Payload from an arbitrary generation response.
// The model is asked for JSON but the format is not contractually
// guaranteed, so this runs a tolerant three-stage search: a ```json fence,
// then any fence, then the whole response. Any decode failure, including a
// missing assessment field, yields the fallback. This function never fails.
func ExtractPayload(raw string, fallback Payload) Payload {
	candidate := raw
	if m := jsonFenceRe.FindStringSubmatch(raw); m != nil {
		candidate = m[1]
	} else if m := anyFenceRe.FindStringSubmatch(raw); m != nil {
		candidate = m[1]
	}

	var payload Payload
	if err := json.Unmarshal([]byte(strings.TrimSpace(candidate)), &payload); err != nil {
		log.Warn().Err(err).Msg("Could not parse generation response, using fallback payload")
		return fallback
	}
	if payload.Assessment == "" {
		log.Warn().Msg("Generation response missing assessment, using fallback payload")
		return fallback
	}

	if payload.Recommendations == nil {
		payload.Recommendations = []string{}
	}
	if payload.LifestyleAdjustments == nil {
		payload.LifestyleAdjustments = []string{}
	}
	return payload
}
