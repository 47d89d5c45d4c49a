package migrations

import (
	"context"
	"time"

	"git.agora.community/agora/agora/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(Initial{})
}

type Initial struct{}

func (m Initial) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2025, 11, 4, 20, 13, 44, 0, time.UTC))
}

func (m Initial) Name() string {
	return "Initial"
}

func (m Initial) Description() string {
	return "Creates users, boards, posts, and comments"
}

func (m Initial) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		CREATE TABLE users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email VARCHAR(255) NOT NULL UNIQUE,
			username VARCHAR(100) NOT NULL UNIQUE,
			display_name VARCHAR(100) NOT NULL DEFAULT '',
			password TEXT NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			deleted_at TIMESTAMP WITH TIME ZONE
		);

		CREATE TABLE boards (
			id SERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			slug VARCHAR(100) NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			write_permission VARCHAR(10) NOT NULL DEFAULT 'member'
				CHECK (write_permission IN ('all', 'member', 'admin')),
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE posts (
			id SERIAL PRIMARY KEY,
			board_id INT NOT NULL REFERENCES boards (id),
			user_id UUID NOT NULL REFERENCES users (id),
			title VARCHAR(200) NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX posts_board_created ON posts (board_id, created_at DESC);
		CREATE INDEX posts_user ON posts (user_id);

		CREATE TABLE comments (
			id SERIAL PRIMARY KEY,
			post_id INT NOT NULL REFERENCES posts (id),
			user_id UUID NOT NULL REFERENCES users (id),
			parent_id INT REFERENCES comments (id),
			content TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX comments_post_created ON comments (post_id, created_at);
		CREATE INDEX comments_parent ON comments (parent_id);
		CREATE INDEX comments_user ON comments (user_id);
	`)
	return err
}

func (m Initial) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		DROP TABLE comments;
		DROP TABLE posts;
		DROP TABLE boards;
		DROP TABLE users;
	`)
	return err
}
