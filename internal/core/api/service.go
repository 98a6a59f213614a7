// Package api provides the HTTP handlers for the percolation service.
package api

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/oakmoss/percolate/internal/core/config"
	"github.com/oakmoss/percolate/internal/core/db"
	"github.com/oakmoss/percolate/internal/engine"
	"github.com/oakmoss/percolate/internal/types"
)

// Service is a thin orchestration layer: handlers delegate to the
// engine for semantics and to the database for durability.
type Service struct {
	db      *sqlx.DB
	queries *db.Queries
	engine  *engine.Engine
	cfg     *config.ServerConfig
	logger  *slog.Logger
}

// NewService creates a service instance with its dependencies.
func NewService(database *sqlx.DB, queries *db.Queries, eng *engine.Engine, cfg *config.ServerConfig, logger *slog.Logger) (*Service, error) {
	if database == nil {
		return nil, fmt.Errorf("database cannot be nil")
	}
	if queries == nil {
		return nil, fmt.Errorf("queries cannot be nil")
	}
	if eng == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		db:      database,
		queries: queries,
		engine:  eng,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// LoadCorpus replays the stored corpus into the engine: domains first,
// then expressions in ascending id order. Called once at startup before
// the server accepts requests.
func (s *Service) LoadCorpus() error {
	var domains []struct {
		Name     string `db:"name"`
		Kind     string `db:"kind"`
		Nullable bool   `db:"nullable"`
		MinValue *int64 `db:"min_value"`
		MaxValue *int64 `db:"max_value"`
	}
	if err := s.queries.Select("list-domains", &domains); err != nil {
		return fmt.Errorf("failed to load domains: %w", err)
	}

	for _, d := range domains {
		var min, max int64
		if d.MinValue != nil {
			min = *d.MinValue
		}
		if d.MaxValue != nil {
			max = *d.MaxValue
		}

		var err error
		switch types.ParseDomainKind(d.Kind) {
		case types.DomainSymbol:
			err = s.engine.AddSymbolDomain(d.Name, d.Nullable)
		case types.DomainInteger:
			err = s.engine.AddIntegerDomain(d.Name, d.Nullable, min, max)
		case types.DomainSymbolList:
			err = s.engine.AddSymbolListDomain(d.Name, d.Nullable)
		case types.DomainIntegerList:
			err = s.engine.AddIntegerListDomain(d.Name, d.Nullable, min, max)
		default:
			return fmt.Errorf("stored domain %q has unknown kind %q", d.Name, d.Kind)
		}
		if err != nil {
			return fmt.Errorf("failed to replay domain %q: %w", d.Name, err)
		}
	}

	var exprs []struct {
		ExpressionID int64  `db:"expression_id"`
		Expression   string `db:"expression"`
	}
	if err := s.queries.Select("list-expressions", &exprs); err != nil {
		return fmt.Errorf("failed to load expressions: %w", err)
	}

	for _, e := range exprs {
		if err := s.engine.Insert(e.ExpressionID, e.Expression); err != nil {
			return fmt.Errorf("failed to replay expression %d: %w", e.ExpressionID, err)
		}
	}

	s.logger.Info("corpus loaded",
		"domains", len(domains),
		"expressions", len(exprs))

	return nil
}
