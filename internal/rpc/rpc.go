package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"signalbox/internal/env"
	"signalbox/internal/models"
)

// HTTPClient talks to the keeper API over its unix socket or TCP listener
type HTTPClient interface {
	Get(path string, params map[string]interface{}) (*HTTPResponse, error)
	Post(path string, data interface{}) (*HTTPResponse, error)
	Put(path string, data interface{}) (*HTTPResponse, error)
	Close() error
}

// HTTPConfig describes where the keeper listens
type HTTPConfig struct {
	Address string        // socket path or host:port
	Network string        // unix, tcp
	Timeout time.Duration // per request
	BaseURL string
}

/**
 * Build the client configuration from the server settings
 * @param {string} socket - Configured control socket, empty uses env.DefaultSocketPath
 * @param {string} address - Configured TCP address, used when the socket does not exist
 * @returns {*HTTPConfig} Returns a unix config when the socket exists, tcp otherwise
 */
func DefaultHTTPConfig(socket, address string) *HTTPConfig {
	if socket == "" {
		socket = env.DefaultSocketPath()
	}
	c := &HTTPConfig{
		Address: socket,
		Network: "unix",
		Timeout: 30 * time.Second,
		BaseURL: "http://localhost",
	}
	if _, err := os.Stat(socket); err == nil {
		return c
	}
	c.Network = "tcp"
	c.Address = tcpAddress(address)
	return c
}

// tcpAddress turns a listen address like ":8081" into a dialable one.
func tcpAddress(address string) string {
	if address == "" {
		return "127.0.0.1:8081"
	}
	if strings.HasPrefix(address, ":") {
		return "127.0.0.1" + address
	}
	return address
}

// HTTPResponse is a decoded API reply
type HTTPResponse struct {
	StatusCode int                 `json:"status_code"`
	Headers    map[string][]string `json:"headers"`
	Body       []byte              `json:"body"`
	Code       string              `json:"code"`
	Error      string              `json:"error"`
}

// OK reports a 2xx status.
func (r *HTTPResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals a successful body, or returns the API error.
func (r *HTTPResponse) Decode(v interface{}) error {
	if !r.OK() {
		return r.Err()
	}
	if v == nil || len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// Err renders a failed response as an error, nil on success.
func (r *HTTPResponse) Err() error {
	if r.OK() {
		return nil
	}
	if r.Code != "" {
		return fmt.Errorf("%s (%s, http %d)", r.Error, r.Code, r.StatusCode)
	}
	return fmt.Errorf("%s (http %d)", r.Error, r.StatusCode)
}

func buildURL(baseURL, path string, params map[string]interface{}) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	if u.Path == "" {
		u.Path = path
	} else {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	}

	if params != nil {
		q := u.Query()
		for key, value := range params {
			switch v := value.(type) {
			case string:
				q.Set(key, v)
			default:
				q.Set(key, fmt.Sprintf("%v", v))
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func serializeData(data interface{}) (io.Reader, error) {
	if data == nil {
		return nil, nil
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize data: %w", err)
	}
	return bytes.NewReader(jsonData), nil
}

func deserializeResponse(resp *http.Response) (*HTTPResponse, error) {
	defer resp.Body.Close()
	httpResp := &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	httpResp.Body = body
	if httpResp.OK() {
		return httpResp, nil
	}
	if len(body) == 0 {
		httpResp.Error = resp.Status
	} else {
		var errBody models.ErrorResponse
		if err := json.Unmarshal(body, &errBody); err != nil {
			httpResp.Error = strings.TrimSpace(string(body))
		} else {
			httpResp.Code = errBody.Code
			httpResp.Error = errBody.Error
		}
	}
	if httpResp.Error == "" {
		httpResp.Error = "Unknown error"
	}
	return httpResp, nil
}
