package filesearch

import (
	"testing"

	"cloud.google.com/go/vertexai/genai"
	"github.com/google/go-cmp/cmp"
)

func TestAnswerParts(t *testing.T) {
	files := []FileRecord{
		{URI: "gs://b/dbn/1-a.pdf", MIMEType: mimePDF},
		{URI: "gs://b/dbn/2-b.md", MIMEType: mimeText},
	}
	got := answerParts("що таке ДБН?", files)
	want := []genai.Part{
		genai.Text("що таке ДБН?"),
		genai.FileData{MIMEType: mimePDF, FileURI: "gs://b/dbn/1-a.pdf"},
		genai.FileData{MIMEType: mimeText, FileURI: "gs://b/dbn/2-b.md"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parts (-want +got):\n%s", diff)
	}
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text("Державні "),
				genai.FileData{FileURI: "gs://ignored"},
				genai.Text("будівельні норми"),
			}},
		}},
	}
	got, err := responseText(resp)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Державні будівельні норми" {
		t.Errorf("got %q", got)
	}

	for name, r := range map[string]*genai.GenerateContentResponse{
		"nil":           nil,
		"no candidates": {},
		"nil content":   {Candidates: []*genai.Candidate{{}}},
		"no text": {Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.FileData{FileURI: "gs://x"}}},
		}}},
	} {
		if _, err := responseText(r); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
