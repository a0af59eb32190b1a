package main

import (
	"context"
	"net/http"

	"github.com/ivanoskov/equilibra/internal/app"
	"github.com/ivanoskov/equilibra/internal/bot"
	"github.com/ivanoskov/equilibra/internal/config"
	"github.com/ivanoskov/equilibra/internal/logging"
)

// Request is the API Gateway event.
type Request struct {
	Body string `json:"body"`
}

// Response is returned to API Gateway.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// Handler processes one webhook update per invocation.
func Handler(ctx context.Context, request Request) (*Response, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return errorResponse(err)
	}
	if err := cfg.Validate(); err != nil {
		return errorResponse(err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		return errorResponse(err)
	}
	logger := logging.New(cfg.LogLevel, "")

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return errorResponse(err)
	}
	defer a.Close()

	b, err := bot.NewBot(cfg.TelegramToken, a.BotDeps(), logger)
	if err != nil {
		return errorResponse(err)
	}

	if err := b.HandleWebhook(ctx, []byte(request.Body)); err != nil {
		logger.Error().Err(err).Msg("failed to handle webhook")
		return errorResponse(err)
	}

	return &Response{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func errorResponse(err error) (*Response, error) {
	return &Response{
		StatusCode: http.StatusInternalServerError,
		Body:       err.Error(),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func main() {
	// The cloud runtime calls Handler directly.
}
