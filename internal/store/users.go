package store

import "context"

func (s *Store) CreateUser(ctx context.Context, name, token string, isBot bool) (string, error) {
	id := NewID()
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO users (id, name, token_hash, is_bot)
		VALUES ($1, $2, $3, $4)`,
		id, name, HashToken(token), isBot)
	return id, err
}

func (s *Store) GetUserByToken(ctx context.Context, token string) (*User, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, name, token_hash, is_bot, created_at
		FROM users WHERE token_hash = $1`,
		HashToken(token))
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.TokenHash, &u.IsBot, &u.CreatedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*User, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, name, token_hash, is_bot, created_at
		FROM users WHERE id = $1`, id)
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.TokenHash, &u.IsBot, &u.CreatedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &u, nil
}
