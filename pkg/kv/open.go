package kv

import (
	"context"

	"github.com/matzehuels/deskkit/pkg/config"
	"github.com/matzehuels/deskkit/pkg/errors"
)

// Open builds the store selected by cfg.Backend, scoped to cfg.Namespace
// when one is set. The none backend returns a NullStore, which disables
// history and the vault.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case config.BackendNone:
		return NewNullStore(), nil
	case config.BackendMemory:
		s = NewMemoryStore()
	case config.BackendFile, "":
		if cfg.Path == "" {
			return nil, errors.New(errors.ErrCodeInvalidPath, "file store requires a path")
		}
		s, err = NewFileStore(cfg.Path)
	case config.BackendRedis:
		s, err = NewRedisStore(ctx, RedisOptions{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	case config.BackendMongo:
		s, err = NewMongoStore(ctx, MongoOptions{URI: cfg.MongoURI, Database: cfg.MongoDatabase, Collection: cfg.MongoCollection})
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "open %s store", cfg.Backend)
	}
	return Scoped(s, cfg.Namespace), nil
}
