package gemini

import (
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/interera/interera/pkg/constants"
	"github.com/interera/interera/pkg/errors"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	if err == nil {
		t.Fatal("NewClient() expected error for missing API key")
	}
	if !errors.IsAPIKeyError(err) {
		t.Errorf("NewClient() error = %v, want API key error", err)
	}
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(Config{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if client.Model() != constants.DefaultModelID {
		t.Errorf("Model() = %q, want %q", client.Model(), constants.DefaultModelID)
	}
	if client.config.Timeout != constants.GenerateTimeout {
		t.Errorf("Timeout = %v, want %v", client.config.Timeout, constants.GenerateTimeout)
	}
}

func TestNewClientOverrides(t *testing.T) {
	client, err := NewClient(Config{
		APIKey:  "test-key",
		Model:   "gemini-exp",
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if client.Model() != "gemini-exp" {
		t.Errorf("Model() = %q, want gemini-exp", client.Model())
	}
	if client.config.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", client.config.Timeout)
	}
}

func TestExtractImage(t *testing.T) {
	client, _ := NewClient(Config{APIKey: "test-key"})

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{
					{Text: "Here is your furnished room."},
					{InlineData: &genai.Blob{Data: []byte("image-bytes"), MIMEType: "image/png"}},
				},
			},
		}},
	}

	data, mimeType, err := client.extractImage(resp)
	if err != nil {
		t.Fatalf("extractImage() error = %v", err)
	}
	if string(data) != "image-bytes" {
		t.Errorf("extractImage() data = %q", data)
	}
	if mimeType != "image/png" {
		t.Errorf("extractImage() mimeType = %q, want image/png", mimeType)
	}
}

func TestExtractImageLastWins(t *testing.T) {
	client, _ := NewClient(Config{APIKey: "test-key"})

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{
					{InlineData: &genai.Blob{Data: []byte("draft"), MIMEType: "image/png"}},
					{InlineData: &genai.Blob{Data: []byte("final"), MIMEType: "image/jpeg"}},
				},
			},
		}},
	}

	data, mimeType, err := client.extractImage(resp)
	if err != nil {
		t.Fatalf("extractImage() error = %v", err)
	}
	if string(data) != "final" {
		t.Errorf("extractImage() data = %q, want final", data)
	}
	if mimeType != "image/jpeg" {
		t.Errorf("extractImage() mimeType = %q, want image/jpeg", mimeType)
	}
}

func TestExtractImageMissingMIMEType(t *testing.T) {
	client, _ := NewClient(Config{APIKey: "test-key"})

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{
					{InlineData: &genai.Blob{Data: []byte("image-bytes")}},
				},
			},
		}},
	}

	_, mimeType, err := client.extractImage(resp)
	if err != nil {
		t.Fatalf("extractImage() error = %v", err)
	}
	if mimeType != constants.MIMEPNG {
		t.Errorf("extractImage() mimeType = %q, want %q fallback", mimeType, constants.MIMEPNG)
	}
}

func TestExtractImageNoImage(t *testing.T) {
	client, _ := NewClient(Config{APIKey: "test-key"})

	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{"nil response", nil},
		{"no candidates", &genai.GenerateContentResponse{}},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}},
		{
			"text only",
			&genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{
						Parts: []*genai.Part{{Text: "I cannot generate that image."}},
					},
				}},
			},
		},
		{
			"empty inline data",
			&genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{
						Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: "image/png"}}},
					},
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := client.extractImage(tt.resp)
			if err == nil {
				t.Fatal("extractImage() expected error")
			}
			if !errors.IsUpstream(err) {
				t.Errorf("extractImage() error = %v, want upstream error", err)
			}
		})
	}
}

func TestClose(t *testing.T) {
	client, _ := NewClient(Config{APIKey: "test-key"})
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	// Closing twice is safe.
	if err := client.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
