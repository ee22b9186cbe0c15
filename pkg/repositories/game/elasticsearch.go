package game

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/fadedpez/twentyone/internal/logging"
	"github.com/fadedpez/twentyone/pkg/entities"
)

// ElasticsearchConfig holds configuration options for the Elasticsearch repository
type ElasticsearchConfig struct {
	URL         string
	Username    string
	Password    string
	IndexPrefix string
	// Transport overrides the HTTP transport, mainly for tests
	Transport http.RoundTripper
}

// DefaultElasticsearchConfig returns a default configuration for Elasticsearch
func DefaultElasticsearchConfig() *ElasticsearchConfig {
	return &ElasticsearchConfig{
		URL:         "http://localhost:9200",
		IndexPrefix: "twentyone",
	}
}

const roundIndexMapping = `{
	"mappings": {
		"properties": {
			"id": { "type": "keyword" },
			"session_id": { "type": "keyword" },
			"number": { "type": "integer" },
			"started_at": { "type": "date" },
			"completed_at": { "type": "date" },
			"dealer_value": { "type": "integer" },
			"dealer_bust": { "type": "boolean" }
		}
	}
}`

const betIndexMapping = `{
	"mappings": {
		"properties": {
			"round_id": { "type": "keyword" },
			"session_id": { "type": "keyword" },
			"player_name": { "type": "keyword" },
			"hand_index": { "type": "integer" },
			"hand_value": { "type": "integer" },
			"type": { "type": "keyword" },
			"resolution": { "type": "keyword" },
			"amount": { "type": "scaled_float", "scaling_factor": 100 },
			"payout": { "type": "scaled_float", "scaling_factor": 100 },
			"completed_at": { "type": "date" }
		}
	}
}`

// ElasticsearchRepository mirrors round history into Elasticsearch for
// analytics while a base repository stays the source of truth for reads
type ElasticsearchRepository struct {
	baseRepo   Repository
	client     *elasticsearch.Client
	roundIndex string
	betIndex   string
	logger     *logging.Logger
}

// NewElasticsearchRepository creates the client and ensures both indices exist
func NewElasticsearchRepository(baseRepo Repository, config *ElasticsearchConfig, logger *logging.Logger) (*ElasticsearchRepository, error) {
	if config == nil {
		config = DefaultElasticsearchConfig()
	}
	if logger == nil {
		logger = logging.Default
	}

	cfg := elasticsearch.Config{
		Addresses: []string{config.URL},
		Transport: config.Transport,
	}

	// Add authentication if provided
	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating Elasticsearch client: %w", err)
	}

	prefix := config.IndexPrefix
	if prefix == "" {
		prefix = "twentyone"
	}

	repo := &ElasticsearchRepository{
		baseRepo:   baseRepo,
		client:     client,
		roundIndex: prefix + "_rounds",
		betIndex:   prefix + "_bets",
		logger:     logger,
	}

	ctx := context.Background()
	if err := repo.ensureIndex(ctx, repo.roundIndex, roundIndexMapping); err != nil {
		return nil, fmt.Errorf("error initializing indices: %w", err)
	}
	if err := repo.ensureIndex(ctx, repo.betIndex, betIndexMapping); err != nil {
		return nil, fmt.Errorf("error initializing indices: %w", err)
	}

	return repo, nil
}

// ensureIndex creates index with mapping if it doesn't exist
func (r *ElasticsearchRepository) ensureIndex(ctx context.Context, index, mapping string) error {
	res, err := r.client.Indices.Exists([]string{index}, r.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("error checking if index %s exists: %w", index, err)
	}
	res.Body.Close()

	if res.StatusCode != http.StatusNotFound {
		return nil
	}

	req := esapi.IndicesCreateRequest{
		Index: index,
		Body:  strings.NewReader(mapping),
	}

	res, err = req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("error creating index %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index %s: %s", index, res.String())
	}

	r.logger.Info("Created Elasticsearch index %s", index)
	return nil
}

// esBetDocument is a bet flattened with its round context for aggregations
type esBetDocument struct {
	*entities.BetResult
	SessionID   string `json:"session_id"`
	CompletedAt string `json:"completed_at"`
}

// SaveRoundResult saves to the base repository, then indexes the round and
// its bets with one bulk request
func (r *ElasticsearchRepository) SaveRoundResult(ctx context.Context, result *entities.RoundResult) error {
	if err := r.baseRepo.SaveRoundResult(ctx, result); err != nil {
		return err
	}

	body, err := r.bulkBody(result)
	if err != nil {
		return err
	}

	req := esapi.BulkRequest{
		Body: bytes.NewReader(body),
	}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("error indexing round %s: %w", result.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing round %s: %s", result.ID, res.String())
	}

	var bulkRes struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkRes); err != nil {
		return fmt.Errorf("error parsing bulk response: %w", err)
	}
	if bulkRes.Errors {
		return fmt.Errorf("error indexing round %s: bulk response reported item failures", result.ID)
	}

	return nil
}

// bulkBody builds the NDJSON payload for a round and its bets
func (r *ElasticsearchRepository) bulkBody(result *entities.RoundResult) ([]byte, error) {
	var buf bytes.Buffer
	completedAt := result.CompletedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00")

	write := func(index, id string, doc interface{}) error {
		meta := map[string]map[string]string{"index": {"_index": index}}
		if id != "" {
			meta["index"]["_id"] = id
		}
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		docJSON, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		buf.Write(metaJSON)
		buf.WriteByte('\n')
		buf.Write(docJSON)
		buf.WriteByte('\n')
		return nil
	}

	if err := write(r.roundIndex, result.ID, result); err != nil {
		return nil, fmt.Errorf("error encoding round %s: %w", result.ID, err)
	}
	for i, bet := range result.Bets {
		doc := esBetDocument{BetResult: bet, SessionID: result.SessionID, CompletedAt: completedAt}
		if err := write(r.betIndex, fmt.Sprintf("%s-%d", result.ID, i), doc); err != nil {
			return nil, fmt.Errorf("error encoding bet for %s: %w", bet.PlayerName, err)
		}
	}

	return buf.Bytes(), nil
}

// GetRoundResults delegates to the base repository
func (r *ElasticsearchRepository) GetRoundResults(ctx context.Context, sessionID string, limit int) ([]*entities.RoundResult, error) {
	return r.baseRepo.GetRoundResults(ctx, sessionID, limit)
}

// GetPlayerBetResults delegates to the base repository
func (r *ElasticsearchRepository) GetPlayerBetResults(ctx context.Context, sessionID, playerName string) ([]*entities.BetResult, error) {
	return r.baseRepo.GetPlayerBetResults(ctx, sessionID, playerName)
}

// Close closes the base repository
func (r *ElasticsearchRepository) Close() error {
	return r.baseRepo.Close()
}
