package db

import "context"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL,
		password TEXT NOT NULL,
		CONSTRAINT users_username_key UNIQUE (username)
	)`,
	`CREATE TABLE IF NOT EXISTS tours (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		location TEXT NOT NULL,
		description TEXT,
		created_by_id BIGINT REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS points_of_interest (
		id BIGSERIAL PRIMARY KEY,
		tour_id BIGINT NOT NULL REFERENCES tours(id),
		name TEXT NOT NULL,
		description TEXT,
		latitude TEXT NOT NULL,
		longitude TEXT NOT NULL,
		photo_filename TEXT,
		audio_filename TEXT,
		video_filename TEXT,
		display_order INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS points_of_interest_tour_order_idx
		ON points_of_interest (tour_id, display_order)`,
}

// EnsureSchema creates the tables the services expect. Points are not
// declared ON DELETE CASCADE; tour deletion removes them explicitly.
func EnsureSchema(ctx context.Context, q Querier) error {
	for _, stmt := range schemaStatements {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
