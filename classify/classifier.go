package classify

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

// Classifier assigns a category label to free-text incident descriptions.
// The model itself is a frozen external collaborator; this package only
// defines the calling contract and a remote-endpoint implementation.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Func adapts a plain function into a Classifier.
type Func func(ctx context.Context, text string) (string, error)

func (f Func) Classify(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// HTTPClassifier calls a remote model service that accepts description text
// and returns a category label.
type HTTPClassifier struct {
	endpoint string
	client   *http.Client
}

func NewHTTPClassifier(endpoint string) *HTTPClassifier {
	return &HTTPClassifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClassifier) Classify(ctx context.Context, text string) (string, error) {
	payload, _ := json.Marshal(map[string]string{"text": text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("classifier status %d: %s", resp.StatusCode, string(b))
	}
	var parsed struct {
		Label string `json:"label"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	label := strings.TrimSpace(parsed.Label)
	if label == "" {
		return "", errors.New("empty label from classifier")
	}
	return label, nil
}
