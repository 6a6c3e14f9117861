package analyzer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/config"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/logger"
	"github.com/gabriel-vasile/mimetype"
	"github.com/sashabaranov/go-openai"
)

const (
	defaultTimeout   = 2 * time.Minute
	maxKeywords      = 5
	defaultImageMIME = "image/jpeg"
)

var errEmptyResponse = errors.New("analyzer: empty completion")

// Analyzer wraps the speech-to-text and vision chat endpoints.
type Analyzer struct {
	client             *openai.Client
	transcriptionModel string
	analysisModel      string
	logger             logger.Logger
}

func NewAnalyzer(cfg *config.Config, log logger.Logger) *Analyzer {
	timeout := defaultTimeout
	if cfg.OpenAI.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second
	}
	clientCfg := openai.DefaultConfig(strings.TrimSpace(cfg.OpenAI.APIKey))
	if base := strings.TrimSpace(cfg.OpenAI.BaseURL); base != "" {
		clientCfg.BaseURL = strings.TrimRight(base, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	transcriptionModel := cfg.OpenAI.TranscriptionModel
	if transcriptionModel == "" {
		transcriptionModel = openai.Whisper1
	}
	analysisModel := cfg.OpenAI.AnalysisModel
	if analysisModel == "" {
		analysisModel = openai.GPT4o
	}
	return &Analyzer{
		client:             openai.NewClientWithConfig(clientCfg),
		transcriptionModel: transcriptionModel,
		analysisModel:      analysisModel,
		logger:             log,
	}
}

// Transcribe returns the spoken text of an audio file.
func (a *Analyzer) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := a.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    a.transcriptionModel,
		FilePath: audioPath,
	})
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// Analyze asks the vision model for the distinct mechanical problems described
// by the transcript and visible in the still frame.
func (a *Analyzer) Analyze(ctx context.Context, transcript, framePath string) (*models.Analysis, error) {
	userParts := []openai.ChatMessagePart{{
		Type: openai.ChatMessagePartTypeText,
		Text: userPrompt(transcript),
	}}
	if framePath != "" {
		dataURL, err := imageDataURL(framePath)
		if err != nil {
			return nil, err
		}
		userParts = append(userParts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL,
				Detail: openai.ImageURLDetailLow,
			},
		})
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.analysisModel,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt()},
			{Role: openai.ChatMessageRoleUser, MultiContent: userParts},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errEmptyResponse
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, errEmptyResponse
	}
	analysis, err := parseAnalysis(content)
	if err != nil {
		a.logger.Warnf("unparseable analysis response: %q", truncate(content, 200))
		return nil, err
	}
	return analysis, nil
}

func parseAnalysis(content string) (*models.Analysis, error) {
	content = stripCodeFence(content)
	var analysis models.Analysis
	if err := json.Unmarshal([]byte(content), &analysis); err != nil {
		return nil, fmt.Errorf("analysis decode: %w", err)
	}
	issues := make([]models.Issue, 0, len(analysis.Issues))
	for _, issue := range analysis.Issues {
		issue.Problem = strings.TrimSpace(issue.Problem)
		if issue.Problem == "" {
			continue
		}
		category, _ := models.ParseCategory(string(issue.Category))
		issue.Category = category
		issue.Keywords = cleanKeywords(issue.Keywords)
		issues = append(issues, issue)
	}
	analysis.Issues = issues
	return &analysis, nil
}

func cleanKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		key := strings.ToLower(k)
		if k == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, k)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func imageDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read frame: %w", err)
	}
	mime := mimetype.Detect(data).String()
	if !strings.HasPrefix(mime, "image/") {
		mime = defaultImageMIME
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
