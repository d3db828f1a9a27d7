package app

import (
	"context"
	"fmt"

	"github.com/vovakirdan/msgboard/internal/config"
	"github.com/vovakirdan/msgboard/internal/core"
	"github.com/vovakirdan/msgboard/internal/store"
	"github.com/vovakirdan/msgboard/internal/store/mongo"
	"github.com/vovakirdan/msgboard/internal/store/sqlite"
)

// OpenStore creates a handle for the configured driver. The handle is not
// pinged; callers go through store.ConnectWithRetry.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverMongo, "":
		return mongo.New(ctx, mongo.Options{
			URI:                    cfg.URI(),
			Database:               cfg.Database,
			Collection:             cfg.Collection,
			ServerSelectionTimeout: cfg.ServerSelectionTimeout,
		})
	case config.DriverSQLite:
		return sqlite.New(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func storeTarget(cfg config.StoreConfig) string {
	if cfg.Driver == config.DriverSQLite {
		return cfg.SQLitePath
	}
	return cfg.URI() + cfg.Database + "." + cfg.Collection
}

// ListRecords opens the configured datastore once and returns up to limit
// records, newest first.
func ListRecords(ctx context.Context, cfg config.StoreConfig, limit int) ([]core.Record, error) {
	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer st.Close(context.WithoutCancel(ctx))

	if err := st.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	lister, ok := st.(store.RecordLister)
	if !ok {
		return nil, fmt.Errorf("store driver %q cannot list records", cfg.Driver)
	}
	return lister.ListRecords(ctx, limit)
}
