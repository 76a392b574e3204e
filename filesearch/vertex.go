package filesearch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

// VertexAnswerer answers queries with a Gemini model on Vertex AI, passing
// the store's files by URI.
type VertexAnswerer struct {
	client *genai.Client
	model  string
}

// NewVertexAnswerer connects to Vertex AI in project and location.
func NewVertexAnswerer(ctx context.Context, project, location, model string, opts ...option.ClientOption) (*VertexAnswerer, error) {
	if project == "" || location == "" {
		return nil, errors.New("filesearch: project and location are required")
	}
	client, err := genai.NewClient(ctx, project, location, opts...)
	if err != nil {
		return nil, fmt.Errorf("filesearch: genai client: %w", err)
	}
	return &VertexAnswerer{client: client, model: model}, nil
}

func (a *VertexAnswerer) Answer(ctx context.Context, query string, files []FileRecord) (string, error) {
	resp, err := a.client.GenerativeModel(a.model).GenerateContent(ctx, answerParts(query, files)...)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return responseText(resp)
}

// Close releases the genai client.
func (a *VertexAnswerer) Close() error { return a.client.Close() }

func answerParts(query string, files []FileRecord) []genai.Part {
	parts := make([]genai.Part, 0, len(files)+1)
	parts = append(parts, genai.Text(query))
	for _, f := range files {
		parts = append(parts, genai.FileData{MIMEType: f.MIMEType, FileURI: f.URI})
	}
	return parts
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty model response")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("model response has no text")
	}
	return b.String(), nil
}
