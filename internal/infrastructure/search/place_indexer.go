package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/places-api/internal/domain/entity"
	"github.com/oksasatya/places-api/internal/domain/service"
	"github.com/oksasatya/places-api/pkg/helpers"
)

const requestTimeout = 3 * time.Second

// PlaceIndexer mirrors places into an Elasticsearch index for full text search.
type PlaceIndexer struct {
	ES        *elasticsearch.Client
	IndexName string
}

// NewPlaceIndexer returns Noop when Elasticsearch is not configured.
func NewPlaceIndexer(es *elasticsearch.Client, index string) service.PlaceIndexer {
	if es == nil || index == "" {
		return Noop{}
	}
	return &PlaceIndexer{ES: es, IndexName: index}
}

const placesMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "title":       {"type": "text"},
      "description": {"type": "text"},
      "address":     {"type": "text"},
      "location":    {"type": "geo_point"},
      "creator":     {"type": "keyword"},
      "created_at":  {"type": "date"},
      "updated_at":  {"type": "date"}
    }
  }
}`

// EnsureIndex creates the places index with its mapping if it is missing.
func (ix *PlaceIndexer) EnsureIndex(ctx context.Context) error {
	return helpers.ESEnsureIndex(ctx, ix.ES, ix.IndexName, placesMapping)
}

type placeDoc struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	Location    geoPoint  `json:"location"`
	CreatorID   string    `json:"creator"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type geoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func document(p *entity.Place) (string, error) {
	doc := placeDoc{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Address:     p.Address,
		Location:    geoPoint{Lat: p.Location.Lat, Lon: p.Location.Lng},
		CreatorID:   p.CreatorID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	b, err := json.Marshal(doc)
	return string(b), err
}

func (ix *PlaceIndexer) Index(ctx context.Context, p *entity.Place) error {
	body, err := document(p)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: ix.IndexName, DocumentID: p.ID, Body: strings.NewReader(body), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, ix.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func (ix *PlaceIndexer) Remove(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: ix.IndexName, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, ix.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// Search runs a multi_match over title, description and address and
// returns matching place ids by score.
func (ix *PlaceIndexer) Search(ctx context.Context, q string, size int) ([]string, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description", "address"},
			},
		},
		"size":    size,
		"_source": false,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := ix.ES.Search(ix.ES.Search.WithContext(c), ix.ES.Search.WithIndex(ix.IndexName), ix.ES.Search.WithBody(strings.NewReader(string(b))))
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

// Noop is used when Elasticsearch is not configured.
type Noop struct{}

func (Noop) Index(context.Context, *entity.Place) error            { return nil }
func (Noop) Remove(context.Context, string) error                  { return nil }
func (Noop) Search(context.Context, string, int) ([]string, error) { return []string{}, nil }

var (
	_ service.PlaceIndexer = (*PlaceIndexer)(nil)
	_ service.PlaceIndexer = Noop{}
)
