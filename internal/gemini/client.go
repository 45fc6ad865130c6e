// Package gemini provides the Google GenAI client used for interior image
// generation.
//
// The client targets the Gemini API backend with an API key. The underlying
// SDK client is created lazily and reused across calls.
package gemini

import (
	"context"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/interera/interera/pkg/constants"
	"github.com/interera/interera/pkg/errors"
	"github.com/interera/interera/pkg/logging"
)

// Media is an inline image attached to a generation request.
type Media struct {
	Data     []byte
	MIMEType string
}

// Config holds the client configuration.
type Config struct {
	// APIKey authenticates against the Gemini API. Required.
	APIKey string

	// Model is the model id used for generation. Defaults to the image
	// generation model.
	Model string

	// Timeout bounds a single generation call.
	Timeout time.Duration
}

// Client calls the Gemini API for image generation and model discovery.
type Client struct {
	config Config

	// GenAI client - reused across calls
	genaiClient *genai.Client

	mu sync.Mutex
}

// NewClient creates a client from config, applying defaults for anything
// unset. The API key is validated here so misconfiguration surfaces at
// startup rather than on the first request.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, &errors.AuthenticationError{
			Method:  "api-key",
			Message: "API key required for the Gemini API",
		}
	}
	if config.Model == "" {
		config.Model = constants.DefaultModelID
	}
	if config.Timeout <= 0 {
		config.Timeout = constants.GenerateTimeout
	}
	return &Client{config: config}, nil
}

// Model returns the model id used for generation.
func (c *Client) Model() string {
	return c.config.Model
}

// Close releases the cached SDK client.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// The GenAI client has no Close method; clearing the reference forces
	// re-initialization on next use.
	c.genaiClient = nil
	return nil
}

// getOrCreateClient returns the cached SDK client, creating it on first use.
func (c *Client) getOrCreateClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.genaiClient != nil {
		return c.genaiClient, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  c.config.APIKey,
	})
	if err != nil {
		return nil, errors.NewUpstreamError(constants.ProviderID, "init", "creating GenAI client", err)
	}

	c.genaiClient = client
	return client, nil
}

// Generate sends the prompt and any attached media to the model and returns
// the raw bytes and mime type of the image it produced. Text parts in the
// response are logged at debug level and otherwise discarded.
func (c *Client) Generate(ctx context.Context, prompt string, media ...Media) ([]byte, string, error) {
	client, err := c.getOrCreateClient(ctx)
	if err != nil {
		return nil, "", err
	}

	parts := make([]*genai.Part, 0, len(media)+1)
	parts = append(parts, genai.NewPartFromText(prompt))
	for _, m := range media {
		parts = append(parts, genai.NewPartFromBytes(m.Data, m.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	genCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	// Run the call in a goroutine so a wedged request cannot outlive the
	// timeout.
	type result struct {
		resp *genai.GenerateContentResponse
		err  error
	}
	resultChan := make(chan result, 1)

	go func() {
		resp, err := client.Models.GenerateContent(genCtx, c.config.Model, contents, nil)
		resultChan <- result{resp: resp, err: err}
	}()

	select {
	case res := <-resultChan:
		if res.err != nil {
			return nil, "", errors.NewUpstreamError(constants.ProviderID, "generate", "content generation failed", res.err)
		}
		return c.extractImage(res.resp)

	case <-genCtx.Done():
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", errors.NewTimeoutError("generate", c.config.Timeout.String(),
			"image generation timed out")
	}
}

// extractImage pulls the generated image out of a model response. When the
// response carries several inline images the last one wins.
func (c *Client) extractImage(resp *genai.GenerateContentResponse) ([]byte, string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, "", errors.NewUpstreamError(constants.ProviderID, "generate", "model returned no candidates", nil)
	}

	var (
		image    []byte
		mimeType string
	)
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			logging.Debug().
				Str("model_id", c.config.Model).
				Str("text", part.Text).
				Msg("Model returned text alongside image")
		}
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			image = part.InlineData.Data
			mimeType = part.InlineData.MIMEType
		}
	}

	if len(image) == 0 {
		return nil, "", errors.NewUpstreamError(constants.ProviderID, "generate", "model returned no image", nil)
	}
	if mimeType == "" {
		mimeType = constants.MIMEPNG
	}
	return image, mimeType, nil
}
