/*
This package contains lowish-level APIs for making database queries to our Postgres database. It streamlines the process of mapping query results to Go types, while allowing you to write arbitrary SQL queries.

The primary functions are Query and QueryIterator. See the package and function examples for detailed usage.

Query syntax

This package allows a few small extensions to SQL syntax to streamline the interaction between Go and Postgres.

Arguments can be provided using placeholders like $1, $2, etc. All arguments will be safely escaped and mapped from their Go type to the correct Postgres type. (This is a direct proxy to pgx.)

	boardIDs, err := db.Query[int](ctx, conn,
		`
		SELECT id
		FROM boards
		WHERE
			slug = ANY($1)
			AND write_permission = $2
		`,
		[]string{"free", "notice"},
		models.WritePermissionAdmin,
	)

(This also demonstrates a useful tip: if you want to use a slice in your query, use Postgres arrays instead of IN.)

When querying individual fields, you can simply select the field like so:

	ids, err := db.Query[int](ctx, conn, `SELECT id FROM boards`)

To query multiple columns at once, you may use a struct type with `db:"column_name"` tags, and the special $columns placeholder:

	type Board struct {
		ID        int       `db:"id"`
		Slug      string    `db:"slug"`
		CreatedAt time.Time `db:"created_at"`
	}
	boards, err := db.Query[Board](ctx, conn, `SELECT $columns FROM ...`)
	// Resulting query:
	// SELECT id, slug, created_at FROM ...

Sometimes a table name prefix is required on each column to disambiguate between column names, especially when performing a JOIN. In those situations, you can include the prefix in the $columns placeholder like $columns{prefix}:

	type Board struct {
		ID        int       `db:"id"`
		Slug      string    `db:"slug"`
		CreatedAt time.Time `db:"created_at"`
	}
	emptyBoards, err := db.Query[Board](ctx, conn, `
		SELECT $columns{boards}
		FROM
			boards
			LEFT JOIN posts ON posts.board_id = boards.id
		WHERE
			posts.id IS NULL
	`)
	// Resulting query:
	// SELECT boards.id, boards.slug, boards.created_at FROM ...
*/
package db
