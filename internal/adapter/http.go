package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/MKhiriev/go-trace-keeper/internal/logger"
	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
	"github.com/MKhiriev/go-trace-keeper/models"
)

// Config configures the HTTP adapter.
type Config struct {
	// BaseURL is the server address. A missing scheme defaults to http.
	BaseURL string

	// Timeout bounds a single request.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that opens the
	// circuit breaker.
	FailureThreshold uint32

	// OpenTimeout is how long the breaker stays open before a trial request
	// is let through.
	OpenTimeout time.Duration
}

const (
	defaultTimeout          = 15 * time.Second
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 30 * time.Second
)

type httpServerAdapter struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker[*resty.Response]

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of [ServerAdapter].
// It normalises and validates cfg.BaseURL and fills unset timeouts and
// thresholds with defaults.
//
// Returns an error if cfg.BaseURL is empty or cannot be parsed as a valid URL.
func NewHTTPServerAdapter(cfg Config, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaultOpenTimeout
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		OnBeforeRequest(propagateTraceID)

	return &httpServerAdapter{
		client:  client,
		breaker: newBreaker(baseURL, cfg, logger),
		logger:  logger,
	}, nil
}

func newBreaker(name string, cfg Config, log *logger.Logger) *gobreaker.CircuitBreaker[*resty.Response] {
	return gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// propagateTraceID sends the trace id of the request context, if any.
func propagateTraceID(_ *resty.Client, r *resty.Request) error {
	if id := tracelog.TraceIDFromContext(r.Context()); id != "" {
		r.SetHeader(tracelog.TraceIDHeader, id)
	}
	return nil
}

// do runs send through the circuit breaker. Transport errors and 5xx
// responses count as failures; other error statuses do not.
func (h *httpServerAdapter) do(send func() (*resty.Response, error)) (*resty.Response, error) {
	resp, err := h.breaker.Execute(func() (*resty.Response, error) {
		resp, err := send()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return resp, mapHTTPError(resp)
		}
		return resp, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrServerUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	return resp, mapHTTPError(resp)
}

func (h *httpServerAdapter) Health(ctx context.Context) (models.HealthResponse, error) {
	var health models.HealthResponse

	resp, err := h.do(func() (*resty.Response, error) {
		return h.client.R().SetContext(ctx).Get("/health")
	})
	if err != nil {
		return health, fmt.Errorf("health request: %w", err)
	}

	if err = decode(resp, &health); err != nil {
		return health, err
	}
	return health, nil
}

func (h *httpServerAdapter) Deferred(ctx context.Context) (string, error) {
	resp, err := h.do(func() (*resty.Response, error) {
		return h.client.R().SetContext(ctx).Get("/api/test1")
	})
	if err != nil {
		return "", fmt.Errorf("deferred request: %w", err)
	}
	return resp.String(), nil
}

func (h *httpServerAdapter) Hello(ctx context.Context, name string) (string, error) {
	resp, err := h.do(func() (*resty.Response, error) {
		return h.client.R().
			SetContext(ctx).
			SetPathParam("name", name).
			Get("/api/test/hello/{name}")
	})
	if err != nil {
		return "", fmt.Errorf("hello request: %w", err)
	}
	return resp.String(), nil
}

func (h *httpServerAdapter) Greet(ctx context.Context, name string, age int) (string, error) {
	resp, err := h.do(func() (*resty.Response, error) {
		return h.client.R().
			SetContext(ctx).
			SetQueryParam("name", name).
			SetQueryParam("age", strconv.Itoa(age)).
			Get("/api/test/greet")
	})
	if err != nil {
		return "", fmt.Errorf("greet request: %w", err)
	}
	return resp.String(), nil
}

func (h *httpServerAdapter) Submit(ctx context.Context, username, password string) (string, error) {
	resp, err := h.do(func() (*resty.Response, error) {
		return h.client.R().
			SetContext(ctx).
			SetFormData(map[string]string{"username": username, "password": password}).
			Post("/api/test/form")
	})
	if err != nil {
		return "", fmt.Errorf("form request: %w", err)
	}
	return resp.String(), nil
}

func (h *httpServerAdapter) Echo(ctx context.Context, person models.Person) (models.Person, error) {
	var echoed models.Person

	resp, err := h.do(func() (*resty.Response, error) {
		return h.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(person).
			Post("/api/test/json")
	})
	if err != nil {
		return echoed, fmt.Errorf("echo request: %w", err)
	}

	if err = decode(resp, &echoed); err != nil {
		return echoed, err
	}
	return echoed, nil
}

func (h *httpServerAdapter) Complex(ctx context.Context, id, action string, payload map[string]any) (models.ComplexResponse, error) {
	var out models.ComplexResponse

	resp, err := h.do(func() (*resty.Response, error) {
		return h.client.R().
			SetContext(ctx).
			SetPathParam("id", id).
			SetQueryParam("action", action).
			SetHeader("Content-Type", "application/json").
			SetBody(payload).
			Post("/api/test/complex/{id}")
	})
	if err != nil {
		return out, fmt.Errorf("complex request: %w", err)
	}

	if err = decode(resp, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Stream collects every item of the stream. An error line sent by the server
// ends the stream; the items read so far are returned with the error.
func (h *httpServerAdapter) Stream(ctx context.Context, n int) ([]int, error) {
	resp, err := h.do(func() (*resty.Response, error) {
		return h.client.R().
			SetContext(ctx).
			SetQueryParam("n", strconv.Itoa(n)).
			Get("/api/test/stream")
	})
	if err != nil {
		return nil, fmt.Errorf("stream request: %w", err)
	}

	items := make([]int, 0, n)
	dec := json.NewDecoder(bytes.NewReader(resp.Body()))
	for {
		var line json.RawMessage
		if err = dec.Decode(&line); errors.Is(err, io.EOF) {
			return items, nil
		} else if err != nil {
			return items, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
		}

		if bytes.HasPrefix(bytes.TrimSpace(line), []byte("{")) {
			var er models.ErrorResponse
			if err = json.Unmarshal(line, &er); err != nil {
				return items, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
			}
			return items, fmt.Errorf("%w: stream failed: %s", ErrInternalServerError, er.Error)
		}

		var item int
		if err = json.Unmarshal(line, &item); err != nil {
			return items, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
		}
		items = append(items, item)
	}
}

func (h *httpServerAdapter) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	var user models.User

	resp, err := h.do(func() (*resty.Response, error) {
		return h.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(req).
			Post("/api/users")
	})
	if err != nil {
		return user, fmt.Errorf("register request: %w", err)
	}

	if err = decode(resp, &user); err != nil {
		return user, err
	}
	return user, nil
}

func (h *httpServerAdapter) FindUser(ctx context.Context, login string) (models.User, error) {
	var user models.User

	resp, err := h.do(func() (*resty.Response, error) {
		return h.client.R().
			SetContext(ctx).
			SetPathParam("login", login).
			Get("/api/users/{login}")
	})
	if err != nil {
		return user, fmt.Errorf("find user request: %w", err)
	}

	if err = decode(resp, &user); err != nil {
		return user, err
	}
	return user, nil
}

func decode(resp *resty.Response, v any) error {
	if err := json.Unmarshal(resp.Body(), v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return nil
}
