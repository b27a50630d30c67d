// Package transcribe turns a meeting recording into a transcript, a
// summary and a list of action items using Gemini.
//
// The transcript keeps the language spoken in the recording. The summary
// and the tasks are written in the requested Language.
package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// MaxInlineBytes is the largest recording sent inline with a request.
const MaxInlineBytes = 20 << 20

var (
	// ErrEmptyAudio is returned for a zero-length recording.
	ErrEmptyAudio = errors.New("transcribe: empty audio")

	// ErrTooLarge is returned for recordings above MaxInlineBytes.
	ErrTooLarge = errors.New("transcribe: audio too large for an inline request")

	// ErrInvalidResponse is returned when the model output does not match
	// Result.
	ErrInvalidResponse = errors.New("transcribe: invalid model response")

	// ErrIncomplete is returned when the model stopped before finishing.
	ErrIncomplete = errors.New("transcribe: response incomplete")
)

// Task is one action item.
type Task struct {
	Team   string `json:"team" jsonschema:"The team, department, or individual responsible for the action item."`
	Action string `json:"action" jsonschema:"A clear and concise description of the task to be performed."`
}

// Result is the structured output of a transcription.
type Result struct {
	Transcript string   `json:"transcript" jsonschema:"The full verbatim transcription of the meeting audio."`
	Summary    []string `json:"summary" jsonschema:"A concise bulleted list summarizing the key decisions and discussion points."`
	Tasks      []Task   `json:"tasks" jsonschema:"A list of all action items mentioned, assigned to a specific team or individual."`
}

// ContentGenerator is the part of the Gemini API the client needs.
// *genai.Models implements it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client sends recordings to Gemini.
type Client struct {
	gen    ContentGenerator
	model  string
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithModel sets the model name. It should not start with "models/".
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger. Nil means slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a Client that uses gen.
func New(gen ContentGenerator, opts ...Option) *Client {
	c := &Client{gen: gen, model: DefaultModel}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// NewGemini creates a Client backed by the Gemini API.
func NewGemini(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("transcribe: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("transcribe: create client: %w", err)
	}
	return New(client.Models, opts...), nil
}

// Model returns the model name in use.
func (c *Client) Model() string { return c.model }

// Prompt returns the instruction sent with the recording.
func Prompt(lang Language) string {
	return `You are an expert meeting assistant. Please process the attached meeting audio.
First, provide a full transcript of the original audio.
Second, create a bulleted list summarizing the key decisions and discussion points.
Third, extract all action items and list them, grouping them by the responsible team or individual.
Your entire response, including the summary, tasks, team names, and actions, must be translated into ` + lang.Name() + `. The transcript should remain in the original language of the audio.
Your entire response must be in JSON format conforming to the provided schema.`
}

// Transcribe sends audio, encoded as mediaType, to the model and returns
// the parsed result.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mediaType string, lang Language) (*Result, error) {
	if len(audio) == 0 {
		return nil, ErrEmptyAudio
	}
	if len(audio) > MaxInlineBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(audio))
	}
	if lang.IsZero() {
		lang = English
	}
	schema, err := responseSchema()
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(audio, mediaType),
			genai.NewPartFromText(Prompt(lang)),
		}, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	c.logger.Debug("transcribe request", "model", c.model, "media_type", mediaType,
		"bytes", len(audio), "language", lang.Name())
	resp, err := c.gen.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("transcribe: generate: %w", err)
	}
	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}
	res, err := ParseResult(text)
	if err != nil {
		c.logger.Warn("unparseable model response", "model", c.model, "response", truncate(text, 512), "err", err)
		return nil, err
	}
	if resp.UsageMetadata != nil {
		c.logger.Debug("transcribe usage",
			"prompt_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount)
	}
	return res, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrInvalidResponse)
	}
	cand := resp.Candidates[0]
	switch cand.FinishReason {
	case genai.FinishReasonStop, genai.FinishReasonUnspecified, "":
	case genai.FinishReasonMaxTokens:
		return "", fmt.Errorf("%w: max tokens", ErrIncomplete)
	default:
		return "", fmt.Errorf("%w: finish reason %s", ErrIncomplete, cand.FinishReason)
	}
	if cand.Content == nil {
		return "", fmt.Errorf("%w: empty content", ErrInvalidResponse)
	}
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		if p != nil && !p.Thought {
			sb.WriteString(p.Text)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// ParseResult decodes model output into a Result. Malformed JSON is
// repaired before giving up. The transcript must be present and the
// summary and tasks must be arrays.
func ParseResult(text string) (*Result, error) {
	var wire struct {
		Transcript *string   `json:"transcript"`
		Summary    *[]string `json:"summary"`
		Tasks      *[]Task   `json:"tasks"`
	}
	if err := unmarshalJSON([]byte(text), &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if wire.Transcript == nil || wire.Summary == nil || wire.Tasks == nil {
		return nil, fmt.Errorf("%w: missing transcript, summary or tasks", ErrInvalidResponse)
	}
	res := &Result{Transcript: *wire.Transcript, Summary: *wire.Summary}
	for _, t := range *wire.Tasks {
		t.Team = strings.TrimSpace(t.Team)
		t.Action = strings.TrimSpace(t.Action)
		if t.Action == "" {
			continue
		}
		res.Tasks = append(res.Tasks, t)
	}
	return res, nil
}

func unmarshalJSON(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	var syntax *json.SyntaxError
	if !errors.As(err, &syntax) {
		return err
	}
	fixed, rerr := jsonrepair.JSONRepair(string(data))
	if rerr != nil {
		return err
	}
	return json.Unmarshal([]byte(fixed), v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
