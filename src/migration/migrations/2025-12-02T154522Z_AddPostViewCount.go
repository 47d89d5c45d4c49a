package migrations

import (
	"context"
	"time"

	"git.agora.community/agora/agora/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(AddPostViewCount{})
}

type AddPostViewCount struct{}

func (m AddPostViewCount) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2025, 12, 2, 15, 45, 22, 0, time.UTC))
}

func (m AddPostViewCount) Name() string {
	return "AddPostViewCount"
}

func (m AddPostViewCount) Description() string {
	return "Tracks how many times each post has been viewed"
}

func (m AddPostViewCount) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		ALTER TABLE posts
		ADD COLUMN view_count INT NOT NULL DEFAULT 0;
	`)
	return err
}

func (m AddPostViewCount) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		ALTER TABLE posts
		DROP COLUMN view_count;
	`)
	return err
}
