package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/quote-intake/internal/blob"
	"github.com/sells-group/quote-intake/internal/db"
	"github.com/sells-group/quote-intake/internal/intake"
	"github.com/sells-group/quote-intake/internal/ocr"
	"github.com/sells-group/quote-intake/internal/store"
)

// intakeEnv holds the collaborators built for a command. Store and Source are
// nil when the command does not need them.
type intakeEnv struct {
	Store   store.Store
	Source  blob.Source
	Service *intake.Service
}

// Close releases resources held by the environment.
func (e *intakeEnv) Close() {
	if e.Source != nil {
		_ = e.Source.Close()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "intake.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, db.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// envOptions selects the collaborators initEnv builds.
type envOptions struct {
	mode   string
	store  bool
	source bool
}

// initEnv validates config for the mode (skipped when empty), then builds the store (migrated),
// the blob source and the intake service. Callers should defer env.Close().
func initEnv(ctx context.Context, opts envOptions) (*intakeEnv, error) {
	if opts.mode != "" {
		if err := cfg.Validate(opts.mode); err != nil {
			return nil, err
		}
	}

	env := &intakeEnv{}
	if opts.store {
		st, err := initStore(ctx)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
		env.Store = st
	}

	if opts.source {
		src, err := blob.NewSource(ctx, cfg.Blob)
		if err != nil {
			env.Close()
			return nil, eris.Wrap(err, "init blob source")
		}
		env.Source = src
	}

	extractor, err := ocr.NewExtractor(cfg.OCR)
	if err != nil {
		env.Close()
		return nil, eris.Wrap(err, "init pdf text extractor")
	}

	env.Service = intake.New(env.Source, extractor, env.Store, intake.Options{
		MailContainer:       cfg.Blob.MailContainer,
		AttachmentContainer: cfg.Blob.AttachmentContainer,
		Extract:             cfg.Extract,
	})
	return env, nil
}
