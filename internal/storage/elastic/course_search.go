package elastic

import (
	"CourseHub/internal/models"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
)

type CourseSearchRepo struct {
	client *elasticsearch.Client
	index  string
}

func NewCourseSearchRepository(client *elasticsearch.Client, index string) *CourseSearchRepo {
	return &CourseSearchRepo{client: client, index: index}
}

var textField = map[string]any{
	"type":            "text",
	"analyzer":        "edge_ngram_analyzer",
	"search_analyzer": "standard",
}

func (r *CourseSearchRepo) CreateIndexIfNotExist(ctx context.Context) error {
	existsRes, err := esapi.IndicesExistsRequest{Index: []string{r.index}}.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("error checking index existence: %w", err)
	}
	defer existsRes.Body.Close()

	switch {
	case existsRes.StatusCode == http.StatusOK:
		return nil
	case existsRes.StatusCode != http.StatusNotFound:
		return fmt.Errorf("index existence check failed with status code %d", existsRes.StatusCode)
	}

	mapping := map[string]any{
		"settings": map[string]any{
			"analysis": map[string]any{
				"analyzer": map[string]any{
					"edge_ngram_analyzer": map[string]any{
						"tokenizer": "edge_ngram_tokenizer",
						"filter":    []string{"lowercase"},
					},
				},
				"tokenizer": map[string]any{
					"edge_ngram_tokenizer": map[string]any{
						"type":        "edge_ngram",
						"min_gram":    2,
						"max_gram":    20,
						"token_chars": []string{"letter", "digit"},
					},
				},
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"title":       textField,
				"description": textField,
				"instructor":  textField,
				"category":    map[string]any{"type": "keyword"},
				"level":       map[string]any{"type": "keyword"},
				"created_at":  map[string]any{"type": "date"},
			},
		},
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}
	res, err := esapi.IndicesCreateRequest{Index: r.index, Body: bytes.NewReader(body)}.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("mapping creation failed: %s", res.String())
	}
	return nil
}

func (r *CourseSearchRepo) Index(ctx context.Context, course models.Course) error {
	doc := map[string]any{
		"title":       course.Title,
		"description": course.Description,
		"instructor":  course.Instructor,
		"category":    course.Category,
		"level":       course.Level,
		"created_at":  course.CreatedAt,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}
	req := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: course.ID.String(),
		Refresh:    "true",
		Body:       bytes.NewReader(data),
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("index request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index error: %s", res.String())
	}
	return nil
}

func (r *CourseSearchRepo) Delete(ctx context.Context, id uuid.UUID) error {
	req := esapi.DeleteRequest{
		Index:      r.index,
		DocumentID: id.String(),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete error: %s", res.String())
	}
	return nil
}

// Search returns one page of matching course ids in relevance order, plus
// the total number of hits.
func (r *CourseSearchRepo) Search(ctx context.Context, query string, limit, offset int) ([]uuid.UUID, int, error) {
	if limit <= 0 {
		limit = 10
	}
	q := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":                query,
				"fields":               []string{"title^3", "instructor^2", "description"},
				"type":                 "best_fields",
				"fuzziness":            "AUTO",
				"operator":             "or",
				"minimum_should_match": "2<75%",
			},
		},
		"from":             offset,
		"size":             limit,
		"track_total_hits": true,
		"_source":          false,
	}
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(q); err != nil {
		return nil, 0, fmt.Errorf("encode search body: %w", err)
	}
	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(buf),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		return nil, 0, fmt.Errorf("search error: %s", string(bodyBytes))
	}
	var esRes struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esRes); err != nil {
		return nil, 0, fmt.Errorf("decode response: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(esRes.Hits.Hits))
	for _, h := range esRes.Hits.Hits {
		if id, err := uuid.Parse(h.ID); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, esRes.Hits.Total.Value, nil
}
