package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/toncenter/ton-activity-go/index/models"
)

// Client talks to the toncenter v3 API of one network.
type Client struct {
	Settings RequestSettings
	log      *logrus.Logger
}

func NewClient(settings RequestSettings, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{Settings: settings, log: log}
}

// Clients holds one client per network.
type Clients map[models.Network]*Client

func (c Clients) Get(network models.Network) (*Client, error) {
	if client, ok := c[network]; ok && client != nil {
		return client, nil
	}
	return nil, models.IndexError{Code: 400, Message: fmt.Sprintf("network %q is not configured", network)}
}

type ActionsRequest struct {
	Account    string
	StartUtime *int64
	EndUtime   *int64
	Limit      int
}

func (c *Client) FetchTraces(ctx context.Context, msgHash models.HashType) (*models.TracesResponse, error) {
	params := url.Values{}
	params.Set("msg_hash", string(msgHash))
	params.Set("include_actions", "true")
	var res models.TracesResponse
	if err := c.get(ctx, c.Settings.Endpoint, "/api/v3/traces", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// FetchPendingTraces looks up a trace the indexer has not finalized yet.
func (c *Client) FetchPendingTraces(ctx context.Context, extMsgHash models.HashType) (*models.TracesResponse, error) {
	params := url.Values{}
	params.Set("ext_msg_hash", string(extMsgHash))
	var res models.TracesResponse
	if err := c.get(ctx, c.Settings.Endpoint, "/api/v3/pendingTraces", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) FetchActions(ctx context.Context, req ActionsRequest) (*models.ActionsResponse, error) {
	params := url.Values{}
	params.Set("account", req.Account)
	params.Set("limit", strconv.Itoa(c.Settings.Limit(req.Limit)))
	params.Set("sort", "desc")
	params.Set("include_accounts", "true")
	if req.StartUtime != nil {
		params.Set("start_utime", strconv.FormatInt(*req.StartUtime, 10))
	}
	if req.EndUtime != nil {
		params.Set("end_utime", strconv.FormatInt(*req.EndUtime, 10))
	}
	var res models.ActionsResponse
	if err := c.get(ctx, c.Settings.Endpoint, "/api/v3/actions", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) FetchActionsByIds(ctx context.Context, ids []models.HashType) (*models.ActionsResponse, error) {
	params := url.Values{}
	for _, id := range ids {
		params.Add("action_id", string(id))
	}
	params.Set("limit", strconv.Itoa(max(1, len(ids))))
	var res models.ActionsResponse
	if err := c.get(ctx, c.Settings.Endpoint, "/api/v3/actions", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetWalletInformation(ctx context.Context, address string) (*models.WalletInformation, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("use_v2", "false")
	var res models.WalletInformation
	if err := c.get(ctx, c.Settings.Endpoint, "/api/v3/walletInformation", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) EmulateTrace(ctx context.Context, req models.EmulateRequest) (*models.EmulateTraceResponse, error) {
	var res models.EmulateTraceResponse
	if err := c.post(ctx, c.Settings.emulateEndpoint(), "/api/emulate/v1/emulateTrace", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) SendBoc(ctx context.Context, boc string) (*models.SendMessageResult, error) {
	var res models.SendMessageResult
	if err := c.post(ctx, c.Settings.Endpoint, "/api/v3/message", models.SendMessageRequest{Boc: boc}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) EstimateFee(ctx context.Context, req models.EstimateFeeRequest) (*models.EstimateFeeResult, error) {
	var res models.EstimateFeeResult
	if err := c.post(ctx, c.Settings.Endpoint, "/api/v3/estimateFee", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) buildUrl(endpoint, path string, params url.Values) (string, error) {
	if len(endpoint) == 0 {
		return "", models.IndexError{Code: 500, Message: "toncenter endpoint is not specified"}
	}
	baseUrl, err := url.Parse(endpoint)
	if err != nil {
		return "", models.IndexError{Code: 500, Message: err.Error()}
	}
	baseUrl.Path += path
	if params == nil {
		params = url.Values{}
	}
	if len(c.Settings.ApiKey) > 0 {
		params.Set("api_key", c.Settings.ApiKey)
	}
	baseUrl.RawQuery = params.Encode()
	return baseUrl.String(), nil
}

// timeout is the configured timeout shortened to the context deadline.
func (c *Client) timeout(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	timeout := c.Settings.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return 0, context.DeadlineExceeded
		}
		if timeout <= 0 || left < timeout {
			timeout = left
		}
	}
	return timeout, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out interface{}) error {
	reqUrl, err := c.buildUrl(endpoint, path, params)
	if err != nil {
		return err
	}
	timeout, err := c.timeout(ctx)
	if err != nil {
		return err
	}
	agent := fiber.Get(reqUrl)
	if timeout > 0 {
		agent.Timeout(timeout)
	}
	return c.do(path, agent, out)
}

func (c *Client) post(ctx context.Context, endpoint, path string, req interface{}, out interface{}) error {
	reqUrl, err := c.buildUrl(endpoint, path, nil)
	if err != nil {
		return err
	}
	timeout, err := c.timeout(ctx)
	if err != nil {
		return err
	}
	reqBody, err := json.Marshal(req)
	if err != nil {
		return models.IndexError{Code: 500, Message: fmt.Sprintf("failed to send request: %s", err.Error())}
	}
	agent := fiber.Post(reqUrl)
	if timeout > 0 {
		agent.Timeout(timeout)
	}
	agent.Add("Content-Type", "application/json")
	agent.Body(reqBody)
	return c.do(path, agent, out)
}

func (c *Client) do(path string, agent *fiber.Agent, out interface{}) error {
	start := time.Now()
	code, body, errs := agent.Bytes()
	log := c.log.WithFields(logrus.Fields{
		"path":     path,
		"status":   code,
		"duration": time.Since(start),
	})
	if len(errs) > 0 {
		log.WithError(errs[0]).Warn("toncenter request failed")
		return models.IndexError{Code: 500, Message: errs[0].Error()}
	}
	if code != fiber.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		message := string(body)
		if err := json.Unmarshal(body, &apiErr); err == nil && len(apiErr.Error) > 0 {
			message = apiErr.Error
		}
		log.WithField("error", message).Debug("toncenter returned error")
		return models.IndexError{Code: code, Message: message}
	}
	log.Debug("toncenter request")
	if err := json.Unmarshal(body, out); err != nil {
		return models.IndexError{Code: 500, Message: fmt.Sprintf("failed to decode %s response: %s", path, err.Error())}
	}
	return nil
}
