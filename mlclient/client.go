// Package mlclient is the gateway-side client for the inference service.
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"kadupul/ml"
)

// ModelInfo mirrors the inference service's /model-info payload.
type ModelInfo struct {
	ModelName    string   `json:"model_name"`
	Algorithm    string   `json:"algorithm"`
	NNeighbors   int      `json:"n_neighbors"`
	FeatureNames []string `json:"feature_names"`
	TargetNames  []string `json:"target_names"`
}

// Client calls the inference service over HTTP. Predict calls are
// bounded by the predict timeout, health and info calls by the shorter
// probe timeout.
type Client struct {
	baseURL     string
	client      *http.Client
	probeClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: 10 * time.Second},
		probeClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Predict invokes the remote model with a validated feature vector.
func (c *Client) Predict(ctx context.Context, features []float64) (*ml.Prediction, error) {
	payload, err := json.Marshal(map[string][]float64{"features": features})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, remoteError(resp)
	}

	var result ml.Prediction
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("malformed inference response: %w", err)
	}
	if result.Name == "" || len(result.Probabilities) == 0 {
		return nil, errors.New("malformed inference response: missing prediction fields")
	}
	return &result, nil
}

// Health probes the service's /health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.probeClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference service returned status %d", resp.StatusCode)
	}
	return nil
}

// ModelInfo fetches the served model's metadata.
func (c *Client) ModelInfo(ctx context.Context) (*ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/model-info", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.probeClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, remoteError(resp)
	}

	var info ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

func remoteError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("inference service error: %s", payload.Error)
	}
	return fmt.Errorf("inference service returned status %d", resp.StatusCode)
}
