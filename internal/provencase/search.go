package provencase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"proposal-workers/internal/engine/catalog"
	"proposal-workers/internal/models"
)

var (
	ErrMissingIndex = errors.New("index name is required")
	ErrSearchFailed = errors.New("PROVEN_CASE_SEARCH_FAILED")
)

// SimilarityQuery describes what "similar project" means for an audit:
// same sector, design flow in the same order of magnitude.
type SimilarityQuery struct {
	Sector     catalog.Sector
	DesignFlow float64
	MaxResults int
}

// Search runs proven-case similarity lookups against Elasticsearch.
type Search struct {
	client *elasticsearch.Client
	index  string
}

func NewSearch(client *elasticsearch.Client, index string) *Search {
	return &Search{client: client, index: index}
}

// SimilarCases returns proven cases ranked by similarity to the query.
// With boost_mode "replace" the hit score is the gauss decay value, which
// is already a 0..1 similarity.
func (s *Search) SimilarCases(ctx context.Context, query SimilarityQuery) ([]models.ProvenCase, error) {
	if s.index == "" {
		return nil, ErrMissingIndex
	}

	queryBody := BuildSimilarityQuery(query)
	body, _ := json.Marshal(queryBody)

	size := query.MaxResults
	if size <= 0 {
		size = 5
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchFailed, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchFailed, err)
	}

	return parsed.toProvenCases(), nil
}

// BuildSimilarityQuery builds the Elasticsearch query body: hard filter on
// sector, gaussian decay on design flow so closer projects score higher.
func BuildSimilarityQuery(query SimilarityQuery) map[string]interface{} {
	scale := query.DesignFlow / 2
	if scale <= 0 {
		scale = 1
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"function_score": map[string]interface{}{
				"query": map[string]interface{}{
					"bool": map[string]interface{}{
						"filter": []interface{}{
							map[string]interface{}{
								"term": map[string]interface{}{"sector": string(query.Sector)},
							},
						},
					},
				},
				"functions": []interface{}{
					map[string]interface{}{
						"gauss": map[string]interface{}{
							"design_flow": map[string]interface{}{
								"origin": query.DesignFlow,
								"scale":  scale,
							},
						},
					},
				},
				"boost_mode": "replace",
			},
		},
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string  `json:"_id"`
			Score  float64 `json:"_score"`
			Source struct {
				Name       string  `json:"name"`
				Sector     string  `json:"sector"`
				DesignFlow float64 `json:"design_flow"`
				CapexUSD   float64 `json:"capex_usd"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (r searchResponse) toProvenCases() []models.ProvenCase {
	var results []models.ProvenCase
	for _, hit := range r.Hits.Hits {
		similarity := hit.Score
		if similarity > 1 {
			similarity = 1
		}
		if similarity < 0 {
			similarity = 0
		}
		results = append(results, models.ProvenCase{
			ID:         hit.ID,
			Name:       hit.Source.Name,
			Sector:     catalog.Sector(hit.Source.Sector),
			DesignFlow: hit.Source.DesignFlow,
			CapexUSD:   hit.Source.CapexUSD,
			Similarity: similarity,
		})
	}
	return results
}
