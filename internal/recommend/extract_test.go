package recommend

import (
	"reflect"
	"testing"
)

const wellFormedJSON = `{
	"assessment": "Mild digital eye strain detected.",
	"recommendations": ["Blink more often", "Adjust monitor distance"],
	"lifestyleAdjustments": ["Sleep earlier"]
}`

var wellFormedPayload = Payload{
	Assessment:           "Mild digital eye strain detected.",
	Recommendations:      []string{"Blink more often", "Adjust monitor distance"},
	LifestyleAdjustments: []string{"Sleep earlier"},
}

func TestExtractPayloadJSONFence(t *testing.T) {
	raw := "Here is your plan:\n```json\n" + wellFormedJSON + "\n```\nStay healthy!"
	got := ExtractPayload(raw, DefaultFallback)
	if !reflect.DeepEqual(got, wellFormedPayload) {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestExtractPayloadPlainFence(t *testing.T) {
	raw := "```\n" + wellFormedJSON + "\n```"
	got := ExtractPayload(raw, DefaultFallback)
	if !reflect.DeepEqual(got, wellFormedPayload) {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestExtractPayloadBareJSON(t *testing.T) {
	got := ExtractPayload("  "+wellFormedJSON+"  ", DefaultFallback)
	if !reflect.DeepEqual(got, wellFormedPayload) {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestExtractPayloadMalformedFallsBack(t *testing.T) {
	cases := []string{
		"Sorry, I cannot help with that.",
		"```json\n{not json at all\n```",
		"",
		"```\n[1, 2, 3\n```",
	}
	for _, raw := range cases {
		got := ExtractPayload(raw, DefaultFallback)
		if !reflect.DeepEqual(got, DefaultFallback) {
			t.Fatalf("expected fallback for %q, got %+v", raw, got)
		}
	}
}

func TestExtractPayloadMissingAssessmentFallsBack(t *testing.T) {
	raw := `{"recommendations": ["rest"], "lifestyleAdjustments": []}`
	got := ExtractPayload(raw, DefaultFallback)
	if !reflect.DeepEqual(got, DefaultFallback) {
		t.Fatalf("expected fallback, got %+v", got)
	}
}

func TestExtractPayloadNormalizesNilSlices(t *testing.T) {
	raw := `{"assessment": "All clear."}`
	got := ExtractPayload(raw, DefaultFallback)
	if got.Assessment != "All clear." {
		t.Fatalf("unexpected assessment %q", got.Assessment)
	}
	if got.Recommendations == nil || got.LifestyleAdjustments == nil {
		t.Fatal("expected empty slices, got nil")
	}
	if len(got.Recommendations) != 0 || len(got.LifestyleAdjustments) != 0 {
		t.Fatalf("expected empty slices, got %+v", got)
	}
}

func TestExtractPayloadCustomFallback(t *testing.T) {
	custom := Payload{Assessment: "custom", Recommendations: []string{}, LifestyleAdjustments: []string{}}
	got := ExtractPayload("no json here", custom)
	if got.Assessment != "custom" {
		t.Fatalf("expected custom fallback, got %+v", got)
	}
}
