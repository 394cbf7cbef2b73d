package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/rpsls-game/internal/domain/score"
	qb "github.com/riskibarqy/rpsls-game/internal/platform/querybuilder"
)

type ScoreRepository struct {
	db *sqlx.DB
}

func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

func (r *ScoreRepository) Append(ctx context.Context, entry score.Entry) (score.Entry, error) {
	if err := ctx.Err(); err != nil {
		return score.Entry{}, err
	}
	if err := entry.Validate(); err != nil {
		return score.Entry{}, err
	}
	entry.Identity = score.NormalizeIdentity(entry.Identity)
	entry.PlayedAt = entry.PlayedAt.UTC()

	query, args, err := insertScoreEntryQuery(entry)
	if err != nil {
		return score.Entry{}, crerr.Wrap(err, "build insert score entry query")
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&entry.ID); err != nil {
		return score.Entry{}, crerr.Wrap(err, "insert score entry")
	}
	return entry, nil
}

func (r *ScoreRepository) RecentEntries(ctx context.Context, identity string, limit int) ([]score.Entry, error) {
	query, args, err := recentEntriesQuery(identity, limit)
	if err != nil {
		return nil, crerr.Wrap(err, "build recent score entries query")
	}

	var rows []scoreEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "select recent score entries")
	}

	out := make([]score.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, scoreEntryFromRow(row))
	}
	return out, nil
}

func (r *ScoreRepository) PurgeByIdentity(ctx context.Context, identity string) (int64, error) {
	identity = score.NormalizeIdentity(identity)
	if identity == "" {
		return 0, score.ErrIdentityRequired
	}

	query, args, err := purgeQuery(identity)
	if err != nil {
		return 0, crerr.Wrap(err, "build purge score entries query")
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, crerr.Wrap(err, "purge score entries")
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, crerr.Wrap(err, "count purged score entries")
	}
	return deleted, nil
}

func (r *ScoreRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func insertScoreEntryQuery(entry score.Entry) (string, []any, error) {
	return qb.InsertModel(scoreEntriesTable, scoreEntryToRow(entry), qb.Dollar, "RETURNING id")
}

func recentEntriesQuery(identity string, limit int) (string, []any, error) {
	b := qb.Select(scoreEntryColumns...).
		From(scoreEntriesTable).
		OrderBy("played_at DESC", "id DESC").
		Limit(score.NormalizeLimit(limit))
	if identity = score.NormalizeIdentity(identity); identity != "" {
		b = b.Where(qb.Eq("identity", identity))
	}
	return b.ToSQL()
}

func purgeQuery(identity string) (string, []any, error) {
	return qb.DeleteFrom(scoreEntriesTable).
		Where(qb.Eq("identity", score.NormalizeIdentity(identity))).
		ToSQL()
}
