package docsearch

import (
	"slices"
	"time"

	"github.com/kailas-cloud/docsearch/internal/config"
	"github.com/kailas-cloud/docsearch/internal/usecase/search"
)

// SettingsFromConfig builds session settings from the search section of the
// configuration. The filter catalog, sort orders and layout keep their defaults.
func SettingsFromConfig(cfg config.SearchConfig) search.Settings {
	s := search.DefaultSettings()
	if cfg.DefaultIndex != "" {
		s.Index = cfg.DefaultIndex
	}
	if cfg.DefaultSize > 0 {
		s.Size = cfg.DefaultSize
	}
	if cfg.MaxSize > 0 {
		s.MaxSize = cfg.MaxSize
	}
	if cfg.DefaultSort != "" {
		s.Sort = cfg.DefaultSort
	}
	if len(cfg.Fields) > 0 {
		s.FieldSets = make(map[string][]string, len(cfg.Fields))
		for _, fs := range cfg.Fields {
			s.FieldSets[fs.Key] = slices.Clone(fs.Fields)
		}
	}
	if cfg.DefaultField != "" {
		s.Field = cfg.DefaultField
	}
	if cfg.PollIntervalSec > 0 {
		s.PollInterval = time.Duration(cfg.PollIntervalSec) * time.Second
	}
	if cfg.ResetExcluded != nil {
		s.ResetExcluded = slices.Clone(cfg.ResetExcluded)
	}
	return s
}

// FromConfig returns the client options described by a configuration.
func FromConfig(cfg config.Config) []Option {
	return []Option{
		WithRedis(cfg.Database.Addrs...),
		WithPassword(cfg.Database.Username, cfg.Database.Password),
		WithDB(cfg.Database.DB),
		WithKeyPrefix(cfg.Storage.KeyPrefix),
		WithReadinessTimeout(time.Duration(cfg.Database.ReadinessTimeout) * time.Second),
		WithDefaults(SettingsFromConfig(cfg.Search)),
		WithDownloadIndices(cfg.Search.DownloadIndices...),
	}
}
