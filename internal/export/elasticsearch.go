package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/rs/zerolog"

	"github.com/ivanoskov/equilibra/internal/model"
)

const (
	esIndex      = "equilibra-transactions"
	esFlushBytes = 2048
	esMaxRetries = 5
)

type ElasticsearchV8 struct {
	addresses []string
	logger    zerolog.Logger
}

func NewElasticsearchV8(logger zerolog.Logger, urls ...string) *ElasticsearchV8 {
	if len(urls) == 0 {
		urls = []string{"http://localhost:9200"}
	}
	return &ElasticsearchV8{
		addresses: urls,
		logger:    logger.With().Str("component", "export").Logger(),
	}
}

func (e *ElasticsearchV8) client() (*elasticsearch.Client, error) {
	retryBackoff := backoff.NewExponentialBackOff()

	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     e.addresses,
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},
		MaxRetries: esMaxRetries,
	})
}

// Write bulk-indexes txns keyed by transaction id, so re-exports overwrite.
func (e *ElasticsearchV8) Write(ctx context.Context, txns []model.Transaction) error {
	es, err := e.client()
	if err != nil {
		return fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         esIndex,
		FlushBytes:    esFlushBytes,
		Client:        es,
		NumWorkers:    4,
		FlushInterval: 10 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	if res, err := es.Indices.Create(esIndex); err != nil {
		e.logger.Debug().Err(err).Str("index", esIndex).Msg("index create failed")
	} else {
		res.Body.Close()
	}

	for _, t := range txns {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to encode transaction %s: %w", t.ID, err)
		}

		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: t.ID,
			Body:       bytes.NewReader(data),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					e.logger.Error().Err(err).Str("id", item.DocumentID).Msg("failed to index transaction")
					return
				}
				e.logger.Error().
					Str("id", item.DocumentID).
					Str("type", res.Error.Type).
					Str("reason", res.Error.Reason).
					Msg("failed to index transaction")
			},
		})
		if err != nil {
			return fmt.Errorf("failed to queue transaction %s: %w", t.ID, err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("failed to flush bulk indexer: %w", err)
	}

	stats := bi.Stats()
	if stats.NumFailed > 0 {
		return fmt.Errorf("failed indexing %d of %d transactions", stats.NumFailed, len(txns))
	}
	e.logger.Info().Uint64("indexed", stats.NumFlushed).Msg("transactions exported")
	return nil
}
