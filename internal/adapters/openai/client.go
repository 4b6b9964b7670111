package openai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/Chroma-Case/PLDGenerator/internal/config"
	"github.com/Chroma-Case/PLDGenerator/internal/domain"
	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/rs/zerolog"
)

const summaryPrompt = "You are the scrum master of a student project. Given the stories of the sprint and the charge of each member, " +
	"write a short progress summary in French (one or two paragraphs, no title, no list). " +
	"Mention what was delivered and what is late. Refer to members only by the names given."

type Client struct {
	key   string
	model string
	cli   openai.Client
	log   zerolog.Logger
}

// NewClient builds a chat completion client. opts are appended to the API key
// option, tests use them to point at a local server.
func NewClient(cfg config.Config, log zerolog.Logger, opts ...option.RequestOption) *Client {
	model := cfg.OpenAIModel
	if strings.TrimSpace(model) == "" {
		model = "gpt-4.1-mini"
	}
	base := []option.RequestOption{option.WithAPIKey(cfg.OpenAIKey)}
	if cfg.OpenAITimeout > 0 {
		base = append(base, option.WithRequestTimeout(cfg.OpenAITimeout))
	}
	cli := openai.NewClient(append(base, opts...)...)
	return &Client{key: cfg.OpenAIKey, model: model, cli: cli, log: log}
}

type storyDigest struct {
	Num       string   `json:"num,omitempty"`
	Name      string   `json:"name"`
	Need      string   `json:"need,omitempty"`
	DoD       []string `json:"dod,omitempty"`
	Charge    float64  `json:"charge"`
	Done      bool     `json:"done"`
	Assignees string   `json:"assignees,omitempty"`
}

type memberDigest struct {
	Name  string  `json:"name"`
	Done  float64 `json:"done"`
	Total float64 `json:"total"`
}

func payload(stories []*domain.Story, members []*domain.Member) string {
	p := struct {
		Stories []storyDigest  `json:"stories"`
		Members []memberDigest `json:"members"`
	}{Stories: []storyDigest{}, Members: []memberDigest{}}
	for _, s := range stories {
		p.Stories = append(p.Stories, storyDigest{
			Num: s.Num, Name: s.Name, Need: s.Need, DoD: s.DoD,
			Charge: s.Charge, Done: s.Done, Assignees: s.Assignees,
		})
	}
	for _, m := range members {
		p.Members = append(p.Members, memberDigest{Name: m.Name, Done: m.ChargeDone, Total: m.ChargeTotal})
	}
	b, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(b)
}

// Summarize drafts the progress summary of a sprint.
func (c *Client) Summarize(ctx context.Context, stories []*domain.Story, members []*domain.Member) (string, error) {
	if strings.TrimSpace(c.key) == "" {
		return "", errors.New("openai: missing key")
	}
	c.log.Info().Str("model", c.model).Int("stories", len(stories)).Msg("openai Summarize call")
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(summaryPrompt),
			openai.UserMessage(payload(stories, members)),
		},
	}
	resp, err := c.cli.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
