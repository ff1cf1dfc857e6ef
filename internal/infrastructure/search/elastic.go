package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vortex-feed/internal/domain/entity"
	"github.com/oksasatya/vortex-feed/pkg/helpers"
)

// Elastic indexes visible posts for full-text search over content and author name.
type Elastic struct {
	es     *elasticsearch.Client
	index  string
	logger *logrus.Logger
}

func NewElastic(es *elasticsearch.Client, index string, logger *logrus.Logger) *Elastic {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &Elastic{es: es, index: index, logger: logger}
}

type postDoc struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	DisplayName string `json:"display_name"`
	Address     string `json:"address"`
	TrustScore  int    `json:"trust_score"`
	Timestamp   string `json:"timestamp"`
}

// Index upserts posts with one bulk request.
func (e *Elastic) Index(ctx context.Context, posts []entity.Post) error {
	if len(posts) == 0 {
		return nil
	}
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, p := range posts {
		if p.Deleted {
			continue
		}
		meta := map[string]any{"index": map[string]string{"_index": e.index, "_id": p.ID}}
		doc := postDoc{
			ID:          p.ID,
			Content:     p.Content,
			DisplayName: p.Author.DisplayName,
			Address:     p.Author.Address,
			TrustScore:  p.TrustScore,
			Timestamp:   p.Timestamp.Format(time.RFC3339Nano),
		}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}
	if body.Len() == 0 {
		return nil
	}

	req := esapi.BulkRequest{Index: e.index, Body: &body, Refresh: "false"}
	res, err := req.Do(ctx, e.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es bulk index: %s", res.Status())
	}
	e.logger.WithField("count", len(posts)).Debug("posts indexed")
	return nil
}

// Remove drops a post from the index. A missing document is not an error.
func (e *Elastic) Remove(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: e.index, DocumentID: id}
	res, err := req.Do(ctx, e.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// Search returns matching post ids, best match first.
func (e *Elastic) Search(ctx context.Context, q string, size int) ([]string, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"content", "display_name^2"},
			},
		},
		"size":    size,
		"_source": false,
	}
	b, _ := json.Marshal(query)

	res, err := e.es.Search(
		e.es.Search.WithContext(ctx),
		e.es.Search.WithIndex(e.index),
		e.es.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
