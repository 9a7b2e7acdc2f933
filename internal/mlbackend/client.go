package mlbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable marks the Python ML backend as unreachable or failing.
// Callers decide whether to surface the outage or fall back to simulation.
var ErrUnavailable = errors.New("ml backend unavailable")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type TrainRequest struct {
	WorkspaceID  uint     `json:"workspace_id"`
	DatasetID    uint     `json:"dataset_id"`
	FilePath     string   `json:"file_path"`
	ProblemType  string   `json:"problem_type"`
	TargetColumn string   `json:"target_column,omitempty"`
	Algorithms   []string `json:"algorithms"`
	TestSize     float64  `json:"test_size,omitempty"`
}

type EpochPoint struct {
	Epoch    int     `json:"epoch"`
	Loss     float64 `json:"loss"`
	Accuracy float64 `json:"accuracy"`
}

type AlgorithmResult struct {
	AlgorithmID      string       `json:"algorithmId"`
	AlgorithmName    string       `json:"algorithmName"`
	Success          bool         `json:"success"`
	Accuracy         float64      `json:"accuracy"`
	Precision        *float64     `json:"precision,omitempty"`
	Recall           *float64     `json:"recall,omitempty"`
	F1Score          *float64     `json:"f1Score,omitempty"`
	ConfusionMatrix  [][]int      `json:"confusionMatrix,omitempty"`
	TrainingDuration int          `json:"trainingDuration"`
	ModelFilePath    string       `json:"modelFilePath"`
	Epochs           []EpochPoint `json:"epochs,omitempty"`
}

type TrainResponse struct {
	Results []AlgorithmResult `json:"results"`
}

type PredictRequest struct {
	ModelPath     string                   `json:"model_path"`
	AlgorithmType string                   `json:"algorithm_type"`
	Data          []map[string]interface{} `json:"data"`
}

type Prediction struct {
	Input      map[string]interface{} `json:"input"`
	Prediction interface{}            `json:"prediction"`
	Confidence float64                `json:"confidence"`
}

type PredictResponse struct {
	Predictions []Prediction `json:"predictions"`
}

type ParsedEntity struct {
	Entity string `json:"entity"`
	Value  string `json:"value"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

type ParseResult struct {
	Intent     string         `json:"intent"`
	Confidence float64        `json:"confidence"`
	Entities   []ParsedEntity `json:"entities"`
}

func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request failed: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) TrainModels(ctx context.Context, trainReq TrainRequest) (*TrainResponse, error) {
	var parsed TrainResponse
	if err := c.postJSON(ctx, "/api/ml/train", trainReq, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (c *Client) Predict(ctx context.Context, predictReq PredictRequest) (*PredictResponse, error) {
	var parsed PredictResponse
	if err := c.postJSON(ctx, "/api/ml/predict", predictReq, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (c *Client) Parse(ctx context.Context, modelPath, text string) (*ParseResult, error) {
	body := map[string]string{
		"model_path": modelPath,
		"text":       text,
	}
	var parsed ParseResult
	if err := c.postJSON(ctx, "/api/rasa/parse", body, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

// ExportModel returns the serialized model file in the requested format
// (pickle or h5) as raw bytes.
func (c *Client) ExportModel(ctx context.Context, modelPath, format string) ([]byte, error) {
	body := map[string]string{
		"model_path":    modelPath,
		"export_format": format,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal export request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/models/export", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build export request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read export response failed: %w", err)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: export status %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("export model status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}

func (c *Client) ModelMetadata(ctx context.Context, modelPath string) (map[string]interface{}, error) {
	body := map[string]string{"model_path": modelPath}
	var parsed map[string]interface{}
	if err := c.postJSON(ctx, "/models/metadata", body, &parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response failed: %w", err)
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: %s status %d", ErrUnavailable, path, resp.StatusCode)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s status %d: %s", path, resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s response failed: %w", path, err)
	}
	return nil
}
