package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrUnavailable means the service could not be reached at all.
var ErrUnavailable = errors.New("service unavailable")

// APIError is a non-200 answer from the service.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Payload is the raw JSON body of a successful response.
type Payload json.RawMessage

// Decode unmarshals the payload into v.
func (p Payload) Decode(v any) error {
	return json.Unmarshal(p, v)
}

// Message returns the "message" field, if any.
func (p Payload) Message() string {
	var body struct {
		Message string `json:"message"`
	}
	if err := p.Decode(&body); err != nil {
		return ""
	}
	return body.Message
}

// InventoryItem mirrors one entry of GET /get-inventory.
type InventoryItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type InventoryPayload struct {
	Inventory []InventoryItem `json:"inventory"`
}

// APIClient performs single HTTP calls against the inventory service. It
// never retries and sets no timeout of its own.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Call POSTs body as JSON to endpoint, or GETs endpoint when body is nil.
func (c *APIClient) Call(ctx context.Context, endpoint string, body any) (Payload, error) {
	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")

	method := http.MethodGet
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		method = http.MethodPost
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		if !json.Valid(data) {
			return nil, fmt.Errorf("%s %s: response is not JSON", method, endpoint)
		}
		return Payload(data), nil
	}

	apiErr := &APIError{Status: resp.StatusCode, Message: "Unknown error"}
	var errBody struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if json.Unmarshal(data, &errBody) == nil {
		if errBody.Error != "" {
			apiErr.Message = errBody.Error
		}
		apiErr.Code = errBody.Code
	}
	return nil, apiErr
}

// Ping reports whether the liveness route answers 200.
func (c *APIClient) Ping(ctx context.Context) error {
	_, err := c.Call(ctx, "/", nil)
	return err
}
