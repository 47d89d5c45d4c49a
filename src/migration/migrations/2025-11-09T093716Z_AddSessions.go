package migrations

import (
	"context"
	"time"

	"git.agora.community/agora/agora/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(AddSessions{})
}

type AddSessions struct{}

func (m AddSessions) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2025, 11, 9, 9, 37, 16, 0, time.UTC))
}

func (m AddSessions) Name() string {
	return "AddSessions"
}

func (m AddSessions) Description() string {
	return "Adds the sessions table backing the postgres CSRF store"
}

func (m AddSessions) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		CREATE TABLE sessions (
			id VARCHAR(64) PRIMARY KEY,
			csrf_token VARCHAR(40) NOT NULL,
			expires_at TIMESTAMP WITH TIME ZONE NOT NULL
		);
	`)
	return err
}

func (m AddSessions) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		DROP TABLE sessions;
	`)
	return err
}
