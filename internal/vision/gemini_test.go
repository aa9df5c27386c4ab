package vision

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestResponseText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil response", nil, ""},
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{
			name: "joins text parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Text("plastic bottle"), genai.Text("|0.9")}},
			}}},
			want: "plastic bottle|0.9",
		},
		{
			name: "skips non-text parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.ImageData("png", []byte{1}), genai.Text("glass jar|0.7")}},
			}}},
			want: "glass jar|0.7",
		},
		{
			name: "first candidate with text wins",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: nil},
				{Content: &genai.Content{Parts: []genai.Part{genai.ImageData("png", []byte{1})}}},
				{Content: &genai.Content{Parts: []genai.Part{genai.Text("tin can|0.8")}}},
				{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored|0.1")}}},
			}},
			want: "tin can|0.8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := responseText(tt.resp); got != tt.want {
				t.Errorf("responseText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResponseText_ParsesAsLabel(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text("Banana Peel|85%\n")}},
	}}}

	label, err := ParseLabelResponse(responseText(resp))
	if err != nil {
		t.Fatalf("ParseLabelResponse: %v", err)
	}
	if label.Label != "banana peel" || label.Score != 0.85 {
		t.Errorf("label = %+v", label)
	}
}

func TestNewGeminiLabeler_RequiresAPIKey(t *testing.T) {
	if _, err := NewGeminiLabeler(context.Background(), Config{Provider: "gemini"}); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestGeminiLabeler_DefaultModel(t *testing.T) {
	p := &GeminiLabeler{config: Config{}}
	if p.Name() != "gemini" {
		t.Errorf("Name() = %q", p.Name())
	}
	if p.model() != "gemini-1.5-flash" {
		t.Errorf("model() = %q", p.model())
	}

	p.config.Model = "gemini-2.0-flash"
	if p.model() != "gemini-2.0-flash" {
		t.Errorf("model() = %q", p.model())
	}
}
