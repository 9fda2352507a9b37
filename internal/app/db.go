package app

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/daily-pick/internal/config"
	"github.com/riskibarqy/daily-pick/internal/domain/group"
	"github.com/riskibarqy/daily-pick/internal/domain/pick"
	"github.com/riskibarqy/daily-pick/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/daily-pick/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/daily-pick/internal/platform/dburl"
	"github.com/riskibarqy/daily-pick/internal/platform/logging"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

const (
	dbMaxOpenConns    = 10
	dbMaxIdleConns    = 5
	dbConnMaxLifetime = 30 * time.Minute
	dbPingTimeout     = 5 * time.Second

	maxTracedQueryLength = 512
)

type stores struct {
	groups group.Repository
	picks  pick.Repository
	close  func() error
}

// openStores uses Postgres when DB_URL is set and the in-memory repositories otherwise.
func openStores(ctx context.Context, cfg config.Config, logger *logging.Logger) (stores, error) {
	if cfg.DBURL == "" {
		logger.Warn("DB_URL empty, using in-memory store; data is lost on restart")
		return stores{
			groups: memory.NewGroupRepository(),
			picks:  memory.NewPickRepository(),
			close:  func() error { return nil },
		}, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return stores{}, err
	}
	logger.Info("postgres store ready", "db_name", dburl.Name(cfg.DBURL))

	return stores{
		groups: postgres.NewGroupRepository(db),
		picks:  postgres.NewPickRepository(db),
		close:  db.Close,
	}, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres", connString(cfg),
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dburl.Name(cfg.DBURL)),
		otelsql.WithQueryFormatter(traceQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	otelsql.ReportDBStatsMetrics(db.DB)
	return db, nil
}

func connString(cfg config.Config) string {
	if !cfg.DBDisablePreparedBinary {
		return cfg.DBURL
	}
	return dburl.DisableBinaryResults(cfg.DBURL)
}

// traceQuery collapses whitespace so span attributes stay on one line.
func traceQuery(query string) string {
	query = strings.Join(strings.Fields(query), " ")
	if len(query) <= maxTracedQueryLength {
		return query
	}
	cut := maxTracedQueryLength
	for cut > 0 && !utf8.RuneStart(query[cut]) {
		cut--
	}
	return query[:cut] + "..."
}
