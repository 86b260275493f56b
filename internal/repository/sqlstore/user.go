package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/alive-sleep/internal/model"
	"github.com/sakif/alive-sleep/internal/repository"
)

var _ repository.UserRepository = (*UserStore)(nil)

type UserStore struct {
	conn *Connector
}

const userColumns = `id, auth_id_hash, last_login_at, created_at, updated_at`

// GetOrCreate is a single INSERT ... ON CONFLICT DO UPDATE. Two first logins
// racing for the same hash both land on the one row the UNIQUE constraint
// allows; neither can create a duplicate. created_at and id are only written
// by the INSERT branch.
func (s *UserStore) GetOrCreate(ctx context.Context, authIDHash string, now time.Time) (*model.User, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return nil, err
	}

	ms := toMillis(now)
	row := db.QueryRowContext(ctx, rebind(s.conn.Driver(), `
		INSERT INTO users (id, auth_id_hash, last_login_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (auth_id_hash) DO UPDATE SET
			last_login_at = excluded.last_login_at,
			updated_at    = excluded.updated_at
		RETURNING `+userColumns),
		xid.New().String(), authIDHash, ms, ms, ms,
	)

	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: upserting user: %w", err)
	}
	return u, nil
}

func (s *UserStore) FindByHash(ctx context.Context, authIDHash string) (*model.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE auth_id_hash = ?`, authIDHash)
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (s *UserStore) getOne(ctx context.Context, query string, arg string) (*model.User, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return nil, err
	}

	u, err := scanUser(db.QueryRowContext(ctx, rebind(s.conn.Driver(), query), arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: getting user: %w", err)
	}
	return u, nil
}

// ListIDs returns every user id in creation order. The weekly job walks it.
func (s *UserStore) ListIDs(ctx context.Context) ([]string, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT id FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating user ids: %w", err)
	}
	return ids, nil
}

func scanUser(sc scanner) (*model.User, error) {
	var (
		u                           model.User
		lastLogin, created, updated int64
	)
	if err := sc.Scan(&u.ID, &u.AuthIDHash, &lastLogin, &created, &updated); err != nil {
		return nil, err
	}
	u.LastLoginAt = fromMillis(lastLogin)
	u.CreatedAt = fromMillis(created)
	u.UpdatedAt = fromMillis(updated)
	return &u, nil
}
