// Package suggest asks Gemini which classification code fits a question
// photo. Suggestions are hints only; the user still types the code.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"sorubank-bot/api/internal/util"
)

const systemPrompt = `You classify photographed exam questions.
You get a taxonomy menu where every line is "<code> - <name>" and a photo of one question.
Pick the most specific code from the menu that fits the question.
Return STRICT JSON: {"code": string} with a code copied from the menu, or {"code": ""} if unsure.`

type Engine struct {
	APIKey string
	Model  string
	Log    *zap.Logger
}

// New returns nil when apiKey is empty so callers can skip suggestions.
func New(apiKey, model string, log *zap.Logger) *Engine {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{APIKey: apiKey, Model: strings.TrimSpace(model), Log: log.Named("suggest")}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// Suggest returns a candidate code for the photo, or "" when the model has
// none. The caller validates the code against the taxonomy.
func (e *Engine) Suggest(ctx context.Context, image []byte, menu string) (string, error) {
	if e == nil || e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	resp, err := m.GenerateContent(ctx,
		genai.Text("Menu:\n"+menu),
		&genai.Blob{MIMEType: util.SniffImageMIME(image), Data: image},
	)
	if err != nil {
		return "", fmt.Errorf("gemini suggest: %w", err)
	}
	code, err := parseAnswer(firstText(resp))
	if err != nil {
		return "", fmt.Errorf("gemini suggest: %w", err)
	}
	e.Log.Debug("suggestion", zap.String("code", code))
	return code, nil
}

var codeRe = regexp.MustCompile(`[^\s."'{}:,]+(?:\.[^\s."'{}:,]+){2,3}`)

// parseAnswer accepts the JSON answer, tolerating fences and bare codes.
func parseAnswer(txt string) (string, error) {
	txt = util.StripCodeFences(txt)
	if txt == "" {
		return "", errors.New("empty response")
	}
	var out struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal([]byte(txt), &out); err == nil {
		return strings.TrimSpace(out.Code), nil
	}
	if m := codeRe.FindString(txt); m != "" {
		return m, nil
	}
	return "", fmt.Errorf("no code in %q", txt)
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
