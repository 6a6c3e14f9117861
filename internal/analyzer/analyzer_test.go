package analyzer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/config"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/logger"
)

func newTestAnalyzer(t *testing.T, handler http.HandlerFunc) *Analyzer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg := &config.Config{OpenAI: config.OpenAIConfig{
		APIKey:             "test",
		BaseURL:            server.URL,
		TranscriptionModel: "whisper-1",
		AnalysisModel:      "demo-model",
		TimeoutSeconds:     5,
	}}
	return NewAnalyzer(cfg, logger.NewNopLogger())
}

func chatResponse(content string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"choices": []any{
			map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	}
}

func writeFrame(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame.jpg")
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}
	if err := os.WriteFile(path, jpeg, 0o600); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	return path
}

func TestAnalyze(t *testing.T) {
	var body map[string]any
	a := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		content := `{"issues":[{"problem":" Warped Rotors ","category":"brakes","keywords":["vibration","Pulsation","pulsation",""]},{"problem":"","category":"Engine","keywords":["x"]}],"Issues_related":true}`
		_ = json.NewEncoder(w).Encode(chatResponse(content))
	})

	analysis, err := a.Analyze(context.Background(), "my steering wheel shakes when braking", writeFrame(t))
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if len(analysis.Issues) != 1 {
		t.Fatalf("expected one issue, got %+v", analysis.Issues)
	}
	issue := analysis.Issues[0]
	if issue.Problem != "Warped Rotors" || issue.Category != models.CategoryBrakes {
		t.Fatalf("issue not normalized: %+v", issue)
	}
	if strings.Join(issue.Keywords, ",") != "vibration,Pulsation" {
		t.Fatalf("keywords not cleaned: %v", issue.Keywords)
	}
	if analysis.Unrelated() {
		t.Fatalf("expected related issues")
	}

	if got := body["model"]; got != "demo-model" {
		t.Fatalf("unexpected model %v", got)
	}
	format, _ := body["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Fatalf("expected JSON mode, got %v", body["response_format"])
	}
	raw, _ := json.Marshal(body["messages"])
	if !strings.Contains(string(raw), "data:image/jpeg;base64,") {
		t.Fatalf("frame not attached as data URL: %s", raw)
	}
}

func TestAnalyzeUnrelatedAndUnknownCategory(t *testing.T) {
	a := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		content := "```json\n" + `{"issues":[{"problem":"Slipping","category":"Transmission","keywords":["slip"]},{"problem":"Dent","category":"Body","keywords":["dent"]}],"Issues_related":false}` + "\n```"
		_ = json.NewEncoder(w).Encode(chatResponse(content))
	})

	analysis, err := a.Analyze(context.Background(), "two things", "")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if !analysis.Unrelated() {
		t.Fatalf("expected unrelated verdict")
	}
	if analysis.Issues[0].Category != "" {
		t.Fatalf("unknown category should be cleared, got %q", analysis.Issues[0].Category)
	}
}

func TestAnalyzeInvalidJSON(t *testing.T) {
	a := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse("not json"))
	})
	if _, err := a.Analyze(context.Background(), "text", ""); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestAnalyzeHTTPError(t *testing.T) {
	a := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "bad key"}})
	})
	if _, err := a.Analyze(context.Background(), "text", ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestTranscribe(t *testing.T) {
	a := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("unexpected model %q", got)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
		} else {
			_, _ = io.Copy(io.Discard, file)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"text": "  grinding noise when braking "})
	})

	audio := filepath.Join(t.TempDir(), "audio.mp3")
	if err := os.WriteFile(audio, []byte("ID3"), 0o600); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	text, err := a.Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if text != "grinding noise when braking" {
		t.Fatalf("unexpected transcript %q", text)
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct{ in, want string }{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}```", `{"a":1}`},
	}
	for _, tc := range cases {
		if got := stripCodeFence(tc.in); got != tc.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
