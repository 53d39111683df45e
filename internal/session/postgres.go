package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/bistrobook/internal/db"
	"github.com/example/bistrobook/internal/wizard"
)

// Postgres keeps sessions in the wizard_sessions table. Rows older than TTL
// read as missing; a zero TTL never expires.
type Postgres struct {
	DB  *db.DB
	TTL time.Duration
}

func (s *Postgres) Load(ctx context.Context, id string) (wizard.State, error) {
	var raw []byte
	err := s.DB.QueryRow(ctx, `
SELECT state FROM wizard_sessions
WHERE id=$1 AND ($2::bigint <= 0 OR updated_at > now() - make_interval(secs => $2::bigint))`,
		id, int64(s.TTL/time.Second)).Scan(&raw)
	if err != nil {
		if db.IsNotFound(err) {
			return wizard.State{}, ErrNotFound
		}
		return wizard.State{}, fmt.Errorf("session: load %s: %w", id, err)
	}
	var st wizard.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return wizard.State{}, fmt.Errorf("session: decode %s: %w", id, err)
	}
	return st, nil
}

func (s *Postgres) Save(ctx context.Context, id string, st wizard.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", id, err)
	}
	err = s.DB.Exec(ctx, `
INSERT INTO wizard_sessions(id, state, updated_at) VALUES ($1, $2, now())
ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, updated_at = now()`, id, raw)
	if err != nil {
		return fmt.Errorf("session: save %s: %w", id, err)
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, id string) error {
	if err := s.DB.Exec(ctx, `DELETE FROM wizard_sessions WHERE id=$1`, id); err != nil {
		return fmt.Errorf("session: delete %s: %w", id, err)
	}
	return nil
}

func (s *Postgres) Sweep(ctx context.Context, before time.Time) (int64, error) {
	n, err := s.DB.ExecCount(ctx, `DELETE FROM wizard_sessions WHERE updated_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("session: sweep: %w", err)
	}
	return n, nil
}
