package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/lockedin/go-focus-monitor/internal/core/model"
	"github.com/lockedin/go-focus-monitor/internal/util"
)

// OllamaConfig configures the Ollama-backed classifier.
type OllamaConfig struct {
	BaseURL  string        `yaml:"base_url" json:"base_url"`
	Model    string        `yaml:"model" json:"model"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
	TextOnly bool          `yaml:"text_only" json:"text_only"` // classify the window title without the screenshot
}

// Validate fills zero values with defaults.
func (c *OllamaConfig) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:11434"
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Model == "" {
		c.Model = "minicpm-v"
	}
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
	return nil
}

// OllamaClient implements Client against a local Ollama server.
type OllamaClient struct {
	cfg        OllamaConfig
	httpClient *http.Client
}

// NewOllamaClient creates an Ollama classifier client.
func NewOllamaClient(cfg OllamaConfig) (*OllamaClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &OllamaClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// generateRequest is the wire format of Ollama's /api/generate call.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Images  []string        `json:"images,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Healthy checks that the Ollama server is reachable.
func (c *OllamaClient) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: server returned status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// Classify sends the capture and profile criteria to the model and
// parses the one-word label out of the reply.
func (c *OllamaClient) Classify(ctx context.Context, capture model.Capture, profile model.ProfileSnapshot) (model.Verdict, error) {
	reqBody := generateRequest{
		Model:  c.cfg.Model,
		Prompt: buildPrompt(capture, profile),
		Stream: false,
		Options: generateOptions{
			Temperature: 0.3,
			TopP:        0.9,
			NumPredict:  32,
		},
	}
	if !c.cfg.TextOnly && len(capture.Payload) > 0 {
		reqBody.Images = []string{base64.StdEncoding.EncodeToString(capture.Payload)}
	}

	data, err := sonic.Marshal(reqBody)
	if err != nil {
		return model.Verdict{}, fmt.Errorf("failed to marshal classification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/generate", bytes.NewReader(data))
	if err != nil {
		return model.Verdict{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Verdict{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.Verdict{}, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Verdict{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var genResp generateResponse
	if err := sonic.Unmarshal(body, &genResp); err != nil {
		return model.Verdict{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	label, err := parseLabel(genResp.Response)
	if err != nil {
		return model.Verdict{}, err
	}

	util.LogDebugf("Classified capture seq=%d as %s in %v", capture.Sequence, label, time.Since(start).Round(time.Millisecond))

	return model.Verdict{
		Sequence:   capture.Sequence,
		Label:      label,
		Rationale:  strings.TrimSpace(genResp.Response),
		ReceivedAt: time.Now(),
	}, nil
}

// parseLabel extracts the verdict label from the model's free-text
// reply. The prompt asks for one word, but models ramble; the first
// recognized keyword wins.
func parseLabel(response string) (model.VerdictLabel, error) {
	lower := strings.ToLower(response)
	switch {
	case strings.Contains(lower, "distracted"):
		return model.VerdictDistracted, nil
	case strings.Contains(lower, "normal"), strings.Contains(lower, "productive"):
		return model.VerdictProductive, nil
	default:
		return "", fmt.Errorf("%w: unrecognized label in %q", ErrMalformed, strings.TrimSpace(response))
	}
}
