package logger

import (
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func Setup(dev bool) zerolog.Logger {
	var logger zerolog.Logger
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Caller().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	return logger
}

var _ http.RoundTripper = (*HTTPRequests)(nil)

// HTTPRequests is a RoundTripper that logs every outbound collaborator
// request with its duration and status, tagging each with a request id so
// failures can be correlated with collaborator logs.
type HTTPRequests struct {
	next   http.RoundTripper
	logger zerolog.Logger
}

func NewHTTPRequests(next http.RoundTripper, logger zerolog.Logger) *HTTPRequests {
	if next == nil {
		next = http.DefaultTransport
	}
	return &HTTPRequests{next: next, logger: logger}
}

func (h *HTTPRequests) RoundTrip(req *http.Request) (*http.Response, error) {
	started := time.Now()

	requestID := uuid.NewString()
	req = req.Clone(req.Context())
	req.Header.Set("X-Request-Id", requestID)

	resp, err := h.next.RoundTrip(req)

	if err != nil {
		h.logger.Error().
			Err(err).
			Str("request_id", requestID).
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Dur("duration", time.Since(started)).
			Msg("http call")

		return resp, err
	}

	h.logger.Info().
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(started)).
		Msg("http call")

	return resp, err
}
