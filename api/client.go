package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/camkit/camkit/core"
	"github.com/camkit/camkit/device"
	"github.com/camkit/camkit/logging"
	"github.com/camkit/camkit/trait"
)

// DefaultBaseURL is the production endpoint of the camera management service.
const DefaultBaseURL = "https://cameramanagement.example.com/v1"

// Structure is a building or home the devices are assigned to.
type Structure struct {
	Name   string                     `json:"name"`
	Traits map[string]json.RawMessage `json:"traits"`
}

// Options configures the API client.
type Options struct {
	// BaseURL of the management service without trailing slash.
	BaseURL string
	// Timeout applied to every request.
	Timeout time.Duration
	// HTTPClient overrides the underlying resty client.
	HTTPClient *resty.Client
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Client talks to the camera management service on behalf of one project.
type Client struct {
	projectID string
	tokens    TokenProvider
	http      *resty.Client
	logger    logging.Logger
}

var (
	_ core.Fetcher          = (*Client)(nil)
	_ trait.CommandExecutor = (*Client)(nil)
)

// NewClient creates an API client for the project using tokens for auth.
func NewClient(projectID string, tokens TokenProvider, optFns ...func(o *Options)) *Client {
	opts := Options{
		BaseURL: DefaultBaseURL,
		Timeout: 30 * time.Second,
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	http := opts.HTTPClient
	if http == nil {
		http = resty.New()
	}
	http.SetBaseURL(opts.BaseURL)
	http.SetTimeout(opts.Timeout)
	http.SetHeader("Content-Type", "application/json")

	return &Client{
		projectID: projectID,
		tokens:    tokens,
		http:      http,
		logger:    opts.Logger,
	}
}

// ProjectID returns the project the client is scoped to.
func (c *Client) ProjectID() string { return c.projectID }

func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	req := c.http.R().SetContext(ctx)
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve token: %w", err)
		}
		req.SetAuthToken(token)
	}
	return req, nil
}

func apiErr(op string, resp *resty.Response) error {
	return &core.APIError{
		Op:         op,
		StatusCode: resp.StatusCode(),
		Message:    resp.String(),
	}
}

type deviceListResponse struct {
	Devices []device.Data `json:"devices"`
}

// GetDevices lists all devices of the project.
func (c *Client) GetDevices(ctx context.Context) ([]device.Data, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	var out deviceListResponse
	resp, err := req.
		SetResult(&out).
		Get(fmt.Sprintf("/enterprises/%s/devices", c.projectID))
	if err != nil {
		return nil, &core.APIError{Op: "GetDevices", Err: err}
	}
	if resp.IsError() {
		return nil, apiErr("GetDevices", resp)
	}
	return out.Devices, nil
}

// GetDevice fetches a single device by its full resource name.
func (c *Client) GetDevice(ctx context.Context, name string) (device.Data, error) {
	req, err := c.request(ctx)
	if err != nil {
		return device.Data{}, err
	}
	var out device.Data
	resp, err := req.
		SetResult(&out).
		Get("/" + name)
	if err != nil {
		return device.Data{}, &core.APIError{Op: "GetDevice", Err: err}
	}
	if resp.IsError() {
		return device.Data{}, apiErr("GetDevice", resp)
	}
	return out, nil
}

type structureListResponse struct {
	Structures []Structure `json:"structures"`
}

// GetStructures lists all structures of the project.
func (c *Client) GetStructures(ctx context.Context) ([]Structure, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	var out structureListResponse
	resp, err := req.
		SetResult(&out).
		Get(fmt.Sprintf("/enterprises/%s/structures", c.projectID))
	if err != nil {
		return nil, &core.APIError{Op: "GetStructures", Err: err}
	}
	if resp.IsError() {
		return nil, apiErr("GetStructures", resp)
	}
	return out.Structures, nil
}

// ExecuteCommand runs a device command and decodes the response body into
// result when result is non-nil.
func (c *Client) ExecuteCommand(ctx context.Context, deviceID, command string, params any, result any) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}
	body := map[string]any{"command": command}
	if params != nil {
		body["params"] = params
	}
	req.SetBody(body)
	if result != nil {
		req.SetResult(result)
	}
	resp, err := req.Post("/" + deviceID + ":executeCommand")
	if err != nil {
		return &core.APIError{Op: "ExecuteCommand", Err: err}
	}
	if resp.IsError() {
		return apiErr("ExecuteCommand", resp)
	}
	return nil
}

// FetchBytes downloads the media behind the descriptor. URLs produced by the
// GenerateImage command carry their own short lived token sent as basic auth;
// inline preview URLs are fetched with the client's bearer token.
func (c *Client) FetchBytes(ctx context.Context, desc core.ImageDescriptor) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if desc.Token != "" {
		req.SetHeader("Authorization", "Basic "+desc.Token)
	} else if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, core.NewFetchError(desc.URL, 0, "resolve token", err)
		}
		req.SetAuthToken(token)
	}
	resp, err := req.Get(desc.URL)
	if err != nil {
		return nil, core.NewFetchError(desc.URL, 0, "request failed", err)
	}
	if resp.IsError() {
		return nil, core.NewFetchError(desc.URL, resp.StatusCode(), resp.Status(), nil)
	}
	c.logger.Debug("fetched media", "url", desc.URL, "bytes", len(resp.Body()))
	return resp.Body(), nil
}
