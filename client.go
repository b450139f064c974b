// Package docsearch embeds the document search engine: Redis-backed indices,
// search sessions restored from URL parameters, and the filter catalog.
package docsearch

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/db"
	dbRedis "github.com/kailas-cloud/docsearch/internal/db/redis"
	documentrepo "github.com/kailas-cloud/docsearch/internal/repository/document"
	searchrepo "github.com/kailas-cloud/docsearch/internal/repository/search"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	"github.com/kailas-cloud/docsearch/internal/usecase/search"
)

// Client is the docsearch entry point.
type Client struct {
	store     db.Store
	documents *documentrepo.Repo
	searches  *searchrepo.Repo
	download  searchrepo.DownloadList
	settings  search.Settings
	logger    *zap.Logger
}

// New connects to Redis and waits until it answers.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("docsearch: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.db,
		Logger:   cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("docsearch: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, cfg.readiness); err != nil {
		store.Close()
		return nil, fmt.Errorf("docsearch: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	return &Client{
		store:     store,
		documents: documentrepo.New(store, cfg.keyPrefix),
		searches:  searchrepo.New(store, cfg.keyPrefix, documentrepo.FieldTypes()),
		download:  searchrepo.DownloadList(cfg.download),
		settings:  cfg.settings,
		logger:    cfg.logger,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Settings returns the session settings.
func (c *Client) Settings() search.Settings { return c.settings }

// Session starts a search session in its initial state, with starring and
// download checks wired to the database.
func (c *Client) Session() *search.Store {
	return search.NewStore(c.searches, c.settings,
		search.WithLogger(c.logger),
		search.WithStarTagger(c.searches),
		search.WithDownloadPolicy(c.download),
	)
}

// Documents returns the document service.
func (c *Client) Documents() *DocumentService {
	return &DocumentService{repo: c.documents}
}

// Indices returns the index management service.
func (c *Client) Indices() *IndexService {
	return &IndexService{repo: c.documents}
}

// Health returns a health service checking the default index.
func (c *Client) Health() *healthuc.Service {
	return healthuc.New(c.store, c.documents, c.settings.Index)
}
