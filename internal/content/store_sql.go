package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutSet(ctx context.Context, set Set) error {
	if set.CreatedAt == 0 {
		set.CreatedAt = time.Now().Unix()
	}
	body, err := json.Marshal(set)
	if err != nil {
		return errors.Wrap(err, "encode set")
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO question_sets (id,title,kind,level,question_count,body_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, kind=EXCLUDED.kind, level=EXCLUDED.level,
			question_count=EXCLUDED.question_count, body_json=EXCLUDED.body_json`,
		set.ID, set.Title, string(set.Kind), set.Level, len(set.Questions), string(body), set.CreatedAt)
	return errors.Wrapf(err, "put set %s", set.ID)
}

func (s *SQLStore) GetSet(ctx context.Context, id string) (Set, error) {
	row := s.db.QueryRowContext(ctx, `SELECT body_json FROM question_sets WHERE id=$1`, id)
	var body string
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Set{}, errors.Wrap(ErrNotFound, id)
		}
		return Set{}, errors.Wrapf(err, "get set %s", id)
	}
	var set Set
	if err := json.Unmarshal([]byte(body), &set); err != nil {
		return Set{}, errors.Wrapf(err, "decode set %s", id)
	}
	return set, nil
}

func (s *SQLStore) ListSets(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,title,kind,level,question_count,body_json FROM question_sets ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list sets")
	}
	defer rows.Close()
	out := []Summary{}
	for rows.Next() {
		var (
			sum  Summary
			kind string
			body string
		)
		if err := rows.Scan(&sum.ID, &sum.Title, &kind, &sum.Level, &sum.QuestionCount, &body); err != nil {
			return nil, errors.Wrap(err, "scan set")
		}
		sum.Kind = Kind(kind)
		var timing struct {
			TimeLimitSec     int `json:"time_limit_sec"`
			EstimatedMinutes int `json:"estimated_minutes"`
		}
		if json.Unmarshal([]byte(body), &timing) == nil {
			sum.TimeLimitSec = timing.TimeLimitSec
			sum.EstimatedMinutes = timing.EstimatedMinutes
		}
		out = append(out, sum)
	}
	return out, errors.Wrap(rows.Err(), "list sets")
}
