package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

const (
	clientName      = "docsearch"
	readyBackoff    = 100 * time.Millisecond
	maxReadyBackoff = 2 * time.Second
)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	// Logger receives connection diagnostics. Nil discards them.
	Logger *zap.Logger
}

// Store implements db.Store over rueidis against Redis 8+ or a RediSearch-enabled server.
type Store struct {
	client rueidis.Client
	logger *zap.Logger

	mu         sync.Mutex
	textSearch *bool
}

// NewStore creates a Redis store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		ClientName:   clientName,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH and FT.AGGREGATE parsing expects RESP2 arrays
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{client: client, logger: logger}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings until the server answers, backing off between attempts.
// The last ping error is reported when the timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	wait := readyBackoff
	for attempt := 1; ; attempt++ {
		err := s.Ping(ctx)
		if err == nil {
			if attempt > 1 {
				s.logger.Info("database ready", zap.Int("attempts", attempt))
			}
			return nil
		}
		s.logger.Debug("database not ready", zap.Int("attempt", attempt), zap.Error(err))

		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database after %d attempts: %w", attempt, err)
		case <-time.After(wait):
		}
		wait = min(wait*2, maxReadyBackoff)
	}
}

// SupportsTextSearch reports whether the server has the search module loaded.
// FT._LIST is queried once; transient failures are retried on the next call.
func (s *Store) SupportsTextSearch(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.textSearch != nil {
		return *s.textSearch
	}

	err := s.do(ctx, s.b().Arbitrary("FT._LIST").Build()).Error()
	switch {
	case err == nil:
		ok := true
		s.textSearch = &ok
	case isUnknownCommand(err):
		ok := false
		s.textSearch = &ok
	default:
		s.logger.Warn("search module check failed", zap.Error(err))
		return false
	}
	return *s.textSearch
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// searchError wraps a failed FT.* command, flagging servers without the search module.
func searchError(op string, err error) error {
	if isUnknownCommand(err) {
		return &db.Error{Op: op, Err: fmt.Errorf("%w: %w", db.ErrSearchUnavailable, err)}
	}
	return &db.Error{Op: op, Err: err}
}

func isUnknownCommand(err error) bool {
	return isRedisErr(err, "unknown command")
}

// isRedisErr checks if err is a Redis server error containing substr (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
