package recommend

import (
	"strings"
	"testing"
)

func TestBuildPromptInterpolatesWindowStats(t *testing.T) {
	prompt := buildPrompt(true, 1, 2, 50)

	if !strings.Contains(prompt, "Current stress detection: Stress detected") {
		t.Fatalf("prompt missing stress status: %s", prompt)
	}
	if !strings.Contains(prompt, "1 out of 2 analyses (50%)") {
		t.Fatalf("prompt missing window stats: %s", prompt)
	}
	if !strings.Contains(prompt, "Format your response in JSON") {
		t.Fatal("prompt missing JSON format instructions")
	}
}

func TestBuildPromptNoStressStatus(t *testing.T) {
	prompt := buildPrompt(false, 0, 5, 0)
	if !strings.Contains(prompt, "Current stress detection: No stress detected") {
		t.Fatalf("prompt missing status: %s", prompt)
	}
}
