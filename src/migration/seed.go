package migration

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"time"

	"git.agora.community/agora/agora/src/agoradata"
	"git.agora.community/agora/agora/src/auth"
	"git.agora.community/agora/agora/src/config"
	"git.agora.community/agora/agora/src/db"
	"git.agora.community/agora/agora/src/migration/migrations"
	"git.agora.community/agora/agora/src/models"
	lorem "github.com/HandmadeNetwork/golorem"
	"github.com/jackc/pgx/v5/pgconn"
)

// ResetDB drops and recreates the database, then migrates it all the way
// forward.
// NOTE: The db role specified in the config must have the CREATEDB attribute!
// `ALTER ROLE agora WITH CREATEDB;`
func ResetDB() {
	fmt.Println("Resetting database...")
	{
		ctx := context.Background()
		// We connect to db "template1", because we have to connect to something
		// other than our own db in order to drop it. template1 always exists in
		// postgres; it's the db that gets cloned when you create new ones.
		template1DSN := fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s",
			config.Config.Postgres.User,
			config.Config.Postgres.Password,
			config.Config.Postgres.Hostname,
			config.Config.Postgres.Port,
			"template1",
		)
		// We have to use the low-level API of pgconn, because the pgx Exec
		// always wraps the query in a transaction, and you cannot drop a
		// database inside one.
		lowLevelConn, err := pgconn.Connect(ctx, template1DSN)
		if err != nil {
			panic(fmt.Errorf("failed to connect to db: %w", err))
		}
		defer lowLevelConn.Close(ctx)

		result := lowLevelConn.ExecParams(ctx, fmt.Sprintf("DROP DATABASE %s", config.Config.Postgres.DbName), nil, nil, nil, nil)
		_, err = result.Close()
		pgErr, isPgError := err.(*pgconn.PgError)
		if err != nil {
			if !(isPgError && pgErr.SQLState() == "3D000") { // 3D000 means "Database does not exist"
				panic(fmt.Errorf("failed to drop db: %w", err))
			}
		}

		result = lowLevelConn.ExecParams(ctx, fmt.Sprintf("CREATE DATABASE %s", config.Config.Postgres.DbName), nil, nil, nil, nil)
		_, err = result.Close()
		if err != nil {
			panic(fmt.Errorf("failed to create db: %w", err))
		}
	}

	fmt.Println("Running migrations...")
	Migrate(migrations.LatestVersion())
}

// SeedFromFile restores a pg_dump file on top of the freshly migrated
// database. Expects a dump whose data matches the current schema.
func SeedFromFile(seedFile string) {
	file, err := os.Open(seedFile)
	if err != nil {
		panic(fmt.Errorf("couldn't open seed file %s: %w", seedFile, err))
	}
	file.Close()

	fmt.Println("Executing seed...")
	cmd := exec.Command("pg_restore",
		"--single-transaction",
		"--data-only",
		"--dbname", config.Config.Postgres.DSN(),
		seedFile,
	)
	fmt.Println("Running command:", cmd)
	if output, err := cmd.CombinedOutput(); err != nil {
		fmt.Print(string(output))
		panic(fmt.Errorf("failed to execute seed: %w", err))
	}

	fmt.Println("Done!")
	ListMigrations()
}

// SampleSeed fills the database with sample data for local dev: a few
// accounts (all with password "password"), the default boards, and enough
// lorem ipsum to make the pages look inhabited.
func SampleSeed() {
	ctx := context.Background()
	conn := db.NewConn()
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		panic(err)
	}
	defer tx.Rollback(ctx)

	fmt.Println("Creating admin user (\"admin\"/\"password\")...")
	admin := seedUser(ctx, tx, "admin", "Admin", true)

	fmt.Println("Creating normal users (all with password \"password\")...")
	alice := seedUser(ctx, tx, "alice", "Alice", false)
	bob := seedUser(ctx, tx, "bob", "Bob", false)
	charlie := seedUser(ctx, tx, "charlie", "", false)
	members := []*models.User{alice, bob, charlie}

	fmt.Println("Creating boards...")
	notices, err := agoradata.CreateBoard(ctx, tx, "Notices", "notices", "Announcements from the admins.", models.WritePermissionAdmin)
	if err != nil {
		panic(err)
	}
	_, err = agoradata.CreateBoard(ctx, tx, "Newsletter", "newsletter", "The weekly digest.", models.WritePermissionAdmin)
	if err != nil {
		panic(err)
	}
	general, err := agoradata.CreateBoard(ctx, tx, "General", "general", "Anything goes.", models.WritePermissionMember)
	if err != nil {
		panic(err)
	}

	fmt.Println("Creating posts and comments...")
	welcome, err := agoradata.CreatePost(ctx, tx, notices.ID, admin.ID, "Welcome to Agora", "<p>"+lorem.Paragraph(2, 4)+"</p>")
	if err != nil {
		panic(err)
	}
	for _, member := range members {
		_, err := agoradata.CreateComment(ctx, tx, welcome.ID, member.ID, nil, "<p>"+lorem.Sentence(3, 14)+"</p>")
		if err != nil {
			panic(err)
		}
	}

	for i := 0; i < 10; i++ {
		author := members[rand.Intn(len(members))]
		post, err := agoradata.CreatePost(ctx, tx, general.ID, author.ID, lorem.Sentence(2, 8), "<p>"+lorem.Paragraph(1, 3)+"</p>")
		if err != nil {
			panic(err)
		}

		var topLevel []*models.Comment
		for c := 0; c < rand.Intn(5); c++ {
			commenter := members[rand.Intn(len(members))]
			comment, err := agoradata.CreateComment(ctx, tx, post.ID, commenter.ID, nil, "<p>"+lorem.Sentence(2, 12)+"</p>")
			if err != nil {
				panic(err)
			}
			topLevel = append(topLevel, comment)
		}
		for _, parent := range topLevel {
			if rand.Intn(2) == 0 {
				continue
			}
			replier := members[rand.Intn(len(members))]
			_, err := agoradata.CreateComment(ctx, tx, post.ID, replier.ID, &parent.ID, "<p>"+lorem.Sentence(2, 12)+"</p>")
			if err != nil {
				panic(err)
			}
		}
	}

	err = tx.Commit(ctx)
	if err != nil {
		panic(err)
	}
}

func seedUser(ctx context.Context, conn db.ConnOrTx, username, displayName string, isAdmin bool) *models.User {
	user, err := db.QueryOne[models.User](ctx, conn,
		`
		INSERT INTO users (email, username, display_name, password, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING $columns
		`,
		fmt.Sprintf("%s@example.com", username),
		username,
		displayName,
		auth.HashPassword("password").String(),
		isAdmin,
		time.Now().Add(-time.Duration(rand.Intn(90*24))*time.Hour),
	)
	if err != nil {
		panic(err)
	}

	return user
}
