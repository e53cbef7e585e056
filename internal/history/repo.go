// Package history records visitor interactions and video job outcomes in
// Postgres. The log is optional: when no database is configured the nil repo
// swallows writes, and a failed insert never fails the request that
// triggered it.
package history

import (
	"context"

	"github.com/rs/zerolog"

	"server/internal/infra"
	"server/internal/sqlinline"
)

// Interaction kinds.
const (
	KindChat  = "chat"
	KindVoice = "voice"
)

// Interaction is one logged visitor exchange.
type Interaction struct {
	Kind     string
	SiteID   string
	SiteName string
	UserText string
	BotText  string
	Language string
}

type Repo struct {
	sql    infra.SQLExecutor
	logger zerolog.Logger
}

// NewRepo returns a Repo over the given executor, or nil when sql is nil.
func NewRepo(sql infra.SQLExecutor, logger zerolog.Logger) *Repo {
	if sql == nil {
		return nil
	}
	return &Repo{sql: sql, logger: logger}
}

// RecordInteraction logs one chat or voice exchange. Best effort.
func (r *Repo) RecordInteraction(ctx context.Context, in Interaction) {
	if r == nil {
		return
	}
	var id string
	row := r.sql.QueryRow(ctx, sqlinline.QInsertInteraction,
		in.Kind, in.SiteID, in.SiteName, in.UserText, in.BotText, in.Language)
	if err := row.Scan(&id); err != nil {
		r.logger.Warn().Err(err).Str("kind", in.Kind).Msg("history: record interaction failed")
	}
}

// RecordVideoEvent logs a terminal video job outcome. Best effort.
func (r *Repo) RecordVideoEvent(ctx context.Context, hash, siteID, status, message string) {
	if r == nil {
		return
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QInsertVideoEvent, hash, siteID, status, message); err != nil {
		r.logger.Warn().Err(err).Str("hash", hash).Msg("history: record video event failed")
	}
}
