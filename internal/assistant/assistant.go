// Package assistant is the client for the AI text service. It turns a chat
// mention into an OpenAI chat-completions request carrying the trip as
// context and the action grammar the itinerary parser understands.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// Config holds the connection settings for the AI text service.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint; empty means the OpenAI default.
	BaseURL string
	// MaxRetries is passed to the SDK; the chat timeout bounds the total.
	MaxRetries int
}

// Client generates assistant replies with the OpenAI chat-completions API.
type Client struct {
	api   openai.Client
	model openai.ChatModel
}

// New constructs a Client. The API key must be set.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("assistant.New: API key is required")
	}
	model := openai.ChatModel(cfg.Model)
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{api: openai.NewClient(opts...), model: model}, nil
}

// Generate asks the model to answer query. history is the recent chat in
// chronological order; assistant messages are replayed as assistant turns.
// Every failure, including an empty answer, wraps domain.ErrUpstreamUnavailable.
func (c *Client) Generate(ctx context.Context, query string, trip domain.Trip, history []domain.Message) (string, error) {
	system, err := systemPrompt(trip)
	if err != nil {
		return "", fmt.Errorf("assistant.Client.Generate: %w: %v", domain.ErrUpstreamUnavailable, err)
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	msgs = append(msgs, openai.SystemMessage(system))
	for _, m := range history {
		if m.SenderID == domain.AssistantID {
			msgs = append(msgs, openai.AssistantMessage(m.Content))
			continue
		}
		msgs = append(msgs, openai.UserMessage(m.SenderName+": "+m.Content))
	}
	msgs = append(msgs, openai.UserMessage(query))

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: msgs,
		Model:    c.model,
	})
	if err != nil {
		return "", fmt.Errorf("assistant.Client.Generate: %w: %v", domain.ErrUpstreamUnavailable, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("assistant.Client.Generate: %w: empty completion", domain.ErrUpstreamUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

// tripContext is the trip as the model sees it.
type tripContext struct {
	Name      string          `json:"name"`
	Settings  domain.Settings `json:"settings"`
	Members   []string        `json:"members"`
	Itinerary []itemContext   `json:"itinerary"`
}

type itemContext struct {
	Title     string `json:"title"`
	Day       int    `json:"day"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	Status    string `json:"status"`
	Location  string `json:"location,omitempty"`
}

func systemPrompt(trip domain.Trip) (string, error) {
	tc := tripContext{
		Name:      trip.Name,
		Settings:  trip.Settings,
		Members:   make([]string, 0, len(trip.Members)),
		Itinerary: make([]itemContext, 0, len(trip.Itinerary)),
	}
	for _, m := range trip.Members {
		tc.Members = append(tc.Members, m.Name)
	}
	for _, it := range trip.Itinerary {
		tc.Itinerary = append(tc.Itinerary, itemContext{
			Title:     it.Title,
			Day:       it.Day,
			StartTime: it.StartTime,
			EndTime:   it.EndTime,
			Status:    it.Status.String(),
			Location:  it.Location,
		})
	}
	b, err := json.MarshalIndent(tc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode trip context: %w", err)
	}
	return fmt.Sprintf(promptTemplate, b), nil
}

const promptTemplate = `You are the travel assistant in a group trip planning chat.
Answer briefly and helpfully. The current trip is:

%s

Times are 24-hour "HH:MM". Days are numbered from 1.
When the group asks you to plan or change the itinerary, include exactly one
JSON object in a fenced json code block, using one of these shapes:

{"action": "add_items", "items": [{"title": "...", "description": "...", "location": "...", "day": 1, "startTime": "09:00", "endTime": "11:00"}]}

{"action": "smart_schedule", "isOptions": true, "newItems": [...items as above...], "itemsToRemove": ["exact title"], "reschedule": [{"originalTitle": "...", "day": 1, "newStartTime": "14:00", "newEndTime": "15:00"}]}

{"action": "update_items", "updates": [{"originalTitle": "...", "day": 1, "newStartTime": "14:00", "newEndTime": "15:00"}]}

Use smart_schedule with isOptions true when offering alternatives for the same
time slot. Outside the code block, reply in plain conversational text.`
