package docsearch

import (
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs     []string
	username  string
	password  string
	db        int
	keyPrefix string
	readiness time.Duration

	settings search.Settings
	download []string
	logger   *zap.Logger
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		keyPrefix: domain.DefaultKeyPrefix,
		readiness: defaultReadinessTimeout,
		settings:  search.DefaultSettings(),
		logger:    zap.NewNop(),
	}
}

// WithRedis sets the Redis addresses to connect to.
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) {
		c.addrs = addrs
	}
}

// WithPassword sets the Redis ACL credentials. An empty username uses the default user.
func WithPassword(username, password string) Option {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
	}
}

// WithDB selects the Redis logical database.
func WithDB(db int) Option {
	return func(c *clientConfig) {
		c.db = db
	}
}

// WithKeyPrefix namespaces every key and index name. Defaults to "docsearch:".
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) {
		if prefix != "" {
			c.keyPrefix = prefix
		}
	}
}

// WithReadinessTimeout bounds how long New waits for the database.
func WithReadinessTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.readiness = d
		}
	}
}

// WithLogger sets the logger used by the client and its sessions.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDefaults replaces the session settings.
func WithDefaults(s search.Settings) Option {
	return func(c *clientConfig) {
		c.settings = s
	}
}

// WithDownloadIndices lists the indices whose documents may be downloaded. "*" allows all.
func WithDownloadIndices(indices ...string) Option {
	return func(c *clientConfig) {
		c.download = indices
	}
}
