// Package search keeps an Elasticsearch index of approved classes.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// ClassIndex reads and writes class documents in one index.
type ClassIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewClassIndex(es *elasticsearch.Client, index string) *ClassIndex {
	return &ClassIndex{es: es, index: index}
}

type classDoc struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	InstructorName  string    `json:"instructorName"`
	InstructorEmail string    `json:"instructorEmail"`
	Price           float64   `json:"price"`
	Status          string    `json:"status"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// EnsureIndex creates the index with its mapping if it does not exist yet.
func (x *ClassIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.es.Indices.Exists([]string{x.index}, x.es.Indices.Exists.WithContext(c))
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	mapping := `{"mappings":{"properties":{
		"name":{"type":"text"},
		"description":{"type":"text"},
		"instructorName":{"type":"text"},
		"instructorEmail":{"type":"keyword"},
		"price":{"type":"double"},
		"status":{"type":"keyword"},
		"updatedAt":{"type":"date"}}}}`
	res, err = x.es.Indices.Create(x.index, x.es.Indices.Create.WithBody(strings.NewReader(mapping)), x.es.Indices.Create.WithContext(c))
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
		return fmt.Errorf("create index %s: %s", x.index, res.Status())
	}
	return nil
}

// Index upserts c. Classes that are not approved are removed instead so
// search never surfaces them.
func (x *ClassIndex) Index(ctx context.Context, c *entity.Class) error {
	if c.Status != entity.ClassApproved {
		return x.Delete(ctx, c.ID)
	}
	b, err := json.Marshal(classDoc{
		ID:              c.ID,
		Name:            c.Name,
		Description:     c.Description,
		InstructorName:  c.InstructorName,
		InstructorEmail: c.InstructorEmail,
		Price:           c.Price,
		Status:          string(c.Status),
		UpdatedAt:       c.UpdatedAt,
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: c.ID, Body: bytes.NewReader(b), Refresh: "false"}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(ctx, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index class %s: %s", c.ID, res.Status())
	}
	return nil
}

func (x *ClassIndex) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.index, DocumentID: id}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(ctx, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete class %s: %s", id, res.Status())
	}
	return nil
}

// Search returns the ids of matching approved classes, best hit first.
func (x *ClassIndex) Search(ctx context.Context, q string, size int) ([]string, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     q,
						"fields":    []string{"name^2", "description", "instructorName"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"status": string(entity.ClassApproved)},
				},
			},
		},
		"size":    size,
		"_source": false,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.es.Search(x.es.Search.WithContext(c), x.es.Search.WithIndex(x.index), x.es.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search classes: %s", res.Status())
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
