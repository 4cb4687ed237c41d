// Package gateway is the client of the payment gateway and the callback
// signing scheme both sides share.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"net/http"
	"net/url"
	"time"
)

var ErrUnavailable = errors.New("gateway unavailable")

type Service struct {
	apiURL     string
	httpClient *http.Client
	logger     zerolog.Logger
	breaker    *gobreaker.CircuitBreaker
}

func (s *Service) LoggerComponent() string {
	return "Gateway.Service"
}

func NewService(apiURL string, opts ...ServiceOption) (*Service, error) {
	if _, err := url.ParseRequestURI(apiURL); err != nil {
		return nil, fmt.Errorf("gateway url: %w", err)
	}

	c := &Service{
		apiURL:     apiURL,
		httpClient: http.DefaultClient,
		logger:     log.Logger,
	}

	for _, o := range opts {
		o(c)
	}

	c.logger = c.logger.With().Str("component", c.LoggerComponent()).Logger()

	if c.breaker == nil {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "gateway",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
			},
		})
	}

	return c, nil
}

type ServiceOption func(*Service)

func WithLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

func WithHTTPClient(c *http.Client) ServiceOption {
	return func(s *Service) {
		s.httpClient = c
	}
}

func WithBreaker(b *gobreaker.CircuitBreaker) ServiceOption {
	return func(s *Service) {
		s.breaker = b
	}
}

func (s *Service) CreatePayment(ctx context.Context, provider string, in *CreatePaymentRequest, out *PaymentResponse) error {
	l := s.logger.With().
		Str("method", "CreatePayment").
		Str("external_ref", in.ExternalRef).
		Logger()
	ctx = l.WithContext(ctx)

	return s.call(ctx, http.MethodPost, fmt.Sprintf("/api/payments/%s", url.PathEscape(provider)), in, out)
}

func (s *Service) GetPayment(ctx context.Context, in *GetPaymentRequest, out *PaymentResponse) error {
	l := s.logger.With().
		Str("method", "GetPayment").
		Str("external_ref", in.ExternalRef).
		Logger()
	ctx = l.WithContext(ctx)

	endpoint := fmt.Sprintf("/api/payments/%s/%s", url.PathEscape(in.Provider), url.PathEscape(in.ExternalRef))
	if err := s.call(ctx, http.MethodGet, endpoint, nil, out); err != nil {
		return err
	}

	l.Debug().
		Str("outcome", out.Outcome).
		Str("status", out.Status).
		Msg("GetPayment success")

	return nil
}

// call runs the request through the circuit breaker. Client side errors do
// not count as gateway failures.
func (s *Service) call(ctx context.Context, method, endpoint string, in interface{}, out interface{}) error {
	var clientErr error

	_, err := s.breaker.Execute(func() (interface{}, error) {
		err := s.genericCall(ctx, method, endpoint, in, out)
		var re *RemoteError
		if errors.As(err, &re) && re.StatusCode < http.StatusInternalServerError && re.StatusCode != http.StatusTooManyRequests {
			clientErr = err
			return nil, nil
		}
		return nil, err
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	if err != nil {
		return err
	}

	return clientErr
}

type RemoteError struct {
	ResponseBody string
	StatusCode   int
}

func NewRemoteError(responseBody string, statusCode int) *RemoteError {
	return &RemoteError{ResponseBody: responseBody, StatusCode: statusCode}
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("gateway responded %d: %s", e.StatusCode, e.ResponseBody)
}

func (s *Service) genericCall(ctx context.Context, method, endpoint string, in interface{}, out interface{}) error {
	l := zerolog.Ctx(ctx).With().Str("http_method", method).Str("endpoint", endpoint).Logger()
	ctx = l.WithContext(ctx)

	res, err := s.request(ctx, method, endpoint, in)
	if err != nil {
		l.Error().Err(err).
			Msg("Service request failed")
		return fmt.Errorf("request: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode >= 400 {
		resBody := readString(res.Body)
		l.Error().
			Int("http_status", res.StatusCode).
			Str("http_body", resBody).
			Msg("Service responded with error")
		return NewRemoteError(resBody, res.StatusCode)
	}

	if err := readJSON(res.Body, out); err != nil {
		return fmt.Errorf("body read: %w", err)
	}

	return nil
}

func (s *Service) request(
	ctx context.Context,
	method string,
	endpoint string,
	bodyParams interface{},
) (*http.Response, error) {
	fullURL := s.apiURL + endpoint
	l := zerolog.Ctx(ctx).With().
		Str("url", fullURL).
		Logger()
	l.Debug().Msg("HTTP request")

	var body []byte
	if bodyParams != nil {
		rawJSON, err := json.Marshal(bodyParams)
		if err != nil {
			return nil, fmt.Errorf("json encode: %w", err)
		}
		body = rawJSON
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")

	l.Debug().Str("request_body", string(body)).Msg("Doing request")

	res, err := s.httpClient.Do(req)
	if err != nil {
		l.Error().Err(err).
			Msg("Call failed")
		return nil, fmt.Errorf("do request: %w", err)
	}

	return res, nil
}
