package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"netprofile/internal/domain/entity"
	oracle "netprofile/internal/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrOracleRejected is returned when the oracle answers with a non-success status.
var ErrOracleRejected = errors.New("gas oracle rejected the request")

// GasOracleClient defines the interface for reading reference gas prices.
type GasOracleClient interface {
	GetGasOracle(ctx context.Context) (entity.GasReference, error)
}

// gasOracleClientImpl is the implementation of GasOracleClient for Etherscan-compatible APIs.
type gasOracleClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewGasOracleClient creates a new instance of gasOracleClientImpl.
func NewGasOracleClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) GasOracleClient {
	return &gasOracleClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		logger:  logger.Named("GasOracleClient"),
	}
}

func (c *gasOracleClientImpl) requestURL() string {
	q := url.Values{}
	q.Set("module", "gastracker")
	q.Set("action", "gasoracle")
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}
	return c.baseURL + "?" + q.Encode()
}

// GetGasOracle implements the GasOracleClient interface.
func (c *gasOracleClientImpl) GetGasOracle(ctx context.Context) (entity.GasReference, error) {
	requestURL := c.requestURL()
	logURL := c.baseURL

	c.logger.Debug("Requesting gas oracle", zap.String("url", logURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute request to gas oracle", zap.String("url", logURL), zap.Error(err))
			return entity.GasReference{}, fmt.Errorf("failed to execute request to %s: %w", logURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Failed to execute request to gas oracle (with default timeout)", zap.String("url", logURL), zap.Error(err))
			return entity.GasReference{}, fmt.Errorf("failed to execute request to %s with default timeout: %w", logURL, err)
		}
	}

	rawBody := resp.Body()

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("Gas oracle request failed",
			zap.String("url", logURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody),
		)
		return entity.GasReference{}, fmt.Errorf("gas oracle request to %s failed with status %d: %s", logURL, resp.StatusCode(), string(rawBody))
	}

	var envelope oracle.GasOracleEnvelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		c.logger.Error("Failed to unmarshal gas oracle response", zap.ByteString("responseBody", rawBody), zap.Error(err))
		return entity.GasReference{}, fmt.Errorf("failed to unmarshal gas oracle response from %s: %w", logURL, err)
	}
	if envelope.Status != "1" {
		var reason string
		if err := json.Unmarshal(envelope.Result, &reason); err != nil || reason == "" {
			reason = envelope.Message
		}
		c.logger.Warn("Gas oracle returned an error status", zap.String("status", envelope.Status), zap.String("reason", reason))
		return entity.GasReference{}, fmt.Errorf("%w: %s", ErrOracleRejected, reason)
	}

	var result oracle.GasOracleResult
	if err := json.Unmarshal(envelope.Result, &result); err != nil {
		return entity.GasReference{}, fmt.Errorf("failed to unmarshal gas oracle result from %s: %w", logURL, err)
	}

	ref, err := toGasReference(result)
	if err != nil {
		return entity.GasReference{}, fmt.Errorf("gas oracle response from %s: %w", logURL, err)
	}
	ref.Source = c.baseURL
	ref.FetchedAt = time.Now().UTC()

	c.logger.Debug("Gas oracle response decoded",
		zap.Uint64("lastBlock", ref.LastBlock),
		zap.Float64("proposeGwei", ref.ProposeGwei))
	return ref, nil
}

func toGasReference(r oracle.GasOracleResult) (entity.GasReference, error) {
	var (
		ref entity.GasReference
		err error
	)
	if r.LastBlock != "" {
		if ref.LastBlock, err = strconv.ParseUint(r.LastBlock, 10, 64); err != nil {
			return ref, fmt.Errorf("invalid LastBlock %q: %w", r.LastBlock, err)
		}
	}
	if ref.SafeGwei, err = parseGwei("SafeGasPrice", r.SafeGasPrice); err != nil {
		return ref, err
	}
	if ref.ProposeGwei, err = parseGwei("ProposeGasPrice", r.ProposeGasPrice); err != nil {
		return ref, err
	}
	if ref.FastGwei, err = parseGwei("FastGasPrice", r.FastGasPrice); err != nil {
		return ref, err
	}
	if ref.ProposeGwei <= 0 {
		return ref, fmt.Errorf("ProposeGasPrice must be positive, got %q", r.ProposeGasPrice)
	}
	return ref, nil
}

func parseGwei(field, v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, v, err)
	}
	return f, nil
}
