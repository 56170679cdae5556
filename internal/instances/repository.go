package instances

import (
	"context"
	"database/sql"
	"errors"
)

// Repository is read-only access to configured bot instances.
// Implementations return ErrNotFound for an unknown id; callers treat both
// absence and lookup failure as "use the default prompts".
type Repository interface {
	GetByID(ctx context.Context, id string) (Instance, error)
}

// NOTE: PostgresRepo assumes a bot_instances table:
//
//   CREATE TABLE bot_instances (
//     id            TEXT PRIMARY KEY,
//     name          TEXT NOT NULL,
//     greeting      TEXT NOT NULL DEFAULT '',
//     reason_prompt TEXT NOT NULL DEFAULT '',
//     closing       TEXT NOT NULL DEFAULT '',
//     created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
//     updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
//   );
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Instance, error) {
	if id == "" {
		return Instance{}, ErrNotFound
	}
	const q = `
SELECT id, name, greeting, reason_prompt, closing, created_at, updated_at
FROM bot_instances
WHERE id = $1
`
	var inst Instance
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&inst.ID,
		&inst.Name,
		&inst.Prompts.Greeting,
		&inst.Prompts.ReasonPrompt,
		&inst.Prompts.Closing,
		&inst.CreatedAt,
		&inst.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Instance{}, ErrNotFound
		}
		return Instance{}, err
	}
	return inst, nil
}
