package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vortex-feed/internal/domain/entity"
	"github.com/oksasatya/vortex-feed/pkg/helpers"
)

// Client asks the AI moderation endpoint for a trust verdict.
type Client struct {
	url    string
	http   *http.Client
	logger *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:    strings.TrimRight(baseURL, "/") + "/ai/verify-content",
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type verdictBody struct {
	TrustScore  *float64 `json:"trust_score"`
	TrustTag    string   `json:"trust_tag"`
	Explanation string   `json:"explanation"`
}

// Verify never fails; any problem yields the neutral verdict.
func (c *Client) Verify(ctx context.Context, text string) entity.Verdict {
	v, err := c.verify(ctx, text)
	if err != nil {
		helpers.LogWarn(c.logger, "AI moderation unavailable", err, nil)
		return entity.NeutralVerdict()
	}
	return v
}

func (c *Client) verify(ctx context.Context, text string) (entity.Verdict, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return entity.Verdict{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return entity.Verdict{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return entity.Verdict{}, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode != http.StatusOK {
		return entity.Verdict{}, fmt.Errorf("moderation status %d", res.StatusCode)
	}

	var body verdictBody
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return entity.Verdict{}, err
	}
	if body.TrustScore == nil || body.TrustTag == "" || body.Explanation == "" {
		return entity.Verdict{}, errors.New("incomplete moderation verdict")
	}
	score := int(*body.TrustScore)
	score = max(0, min(100, score))
	return entity.Verdict{TrustScore: score, TrustTag: body.TrustTag, Explanation: body.Explanation}, nil
}
