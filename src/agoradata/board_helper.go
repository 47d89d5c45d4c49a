package agoradata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"git.agora.community/agora/agora/src/db"
	"git.agora.community/agora/agora/src/models"
	"git.agora.community/agora/agora/src/oops"
	"git.agora.community/agora/agora/src/perf"
)

type BoardsQuery struct {
	// Ignored when using FetchBoard or FetchBoardBySlug
	BoardIDs []int    // if empty, all boards
	Slugs    []string // if empty, all boards

	// Sort by post count instead of creation order. Only honored by
	// FetchBoardsWithStats; plain FetchBoards has no counts to sort by.
	OrderByPosts bool

	Limit int // if empty, no limit
}

/*
Fetches boards according to all the given query params, in creation (id)
order.
*/
func FetchBoards(
	ctx context.Context,
	dbConn db.ConnOrTx,
	q BoardsQuery,
) ([]*models.Board, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch boards")
	defer perf.EndBlock()

	var qb db.QueryBuilder
	qb.Add(`
		SELECT $columns
		FROM
			boards
		WHERE
			TRUE
	`)
	if len(q.BoardIDs) > 0 {
		qb.Add(`AND boards.id = ANY ($?)`, q.BoardIDs)
	}
	if len(q.Slugs) > 0 {
		qb.Add(`AND boards.slug = ANY ($?)`, q.Slugs)
	}
	qb.Add(`ORDER BY boards.id ASC`)
	if q.Limit > 0 {
		qb.Add(`LIMIT $?`, q.Limit)
	}

	boards, err := db.Query[models.Board](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch boards")
	}

	return boards, nil
}

/*
Fetches a single board by id. A wrapper around FetchBoards.

Returns db.NotFound if no result is found.
*/
func FetchBoard(
	ctx context.Context,
	dbConn db.ConnOrTx,
	boardID int,
) (*models.Board, error) {
	res, err := FetchBoards(ctx, dbConn, BoardsQuery{BoardIDs: []int{boardID}})
	if err != nil {
		return nil, oops.New(err, "failed to fetch board")
	}

	if len(res) == 0 {
		return nil, db.NotFound
	}

	return res[0], nil
}

/*
Fetches a single board by slug. A wrapper around FetchBoards.

Returns db.NotFound if no result is found.
*/
func FetchBoardBySlug(
	ctx context.Context,
	dbConn db.ConnOrTx,
	slug string,
) (*models.Board, error) {
	res, err := FetchBoards(ctx, dbConn, BoardsQuery{Slugs: []string{slug}})
	if err != nil {
		return nil, oops.New(err, "failed to fetch board")
	}

	if len(res) == 0 {
		return nil, db.NotFound
	}

	return res[0], nil
}

type BoardAndStuff struct {
	Board models.Board `db:"boards"`

	PostCount    int
	CommentCount int
	LatestPost   *LatestPostInfo `db:"latest_post"` // nil if the board has no posts
}

type LatestPostInfo struct {
	ID         int       `db:"id"`
	Title      string    `db:"title"`
	CreatedAt  time.Time `db:"created_at"`
	AuthorName string    `db:"author_name"`
}

/*
Fetches boards with their activity stats and most recent post. The board
index and the landing page's "popular boards" section both run on this; the
landing page sets OrderByPosts and a limit, the index takes everything in
creation (id) order.
*/
func FetchBoardsWithStats(
	ctx context.Context,
	dbConn db.ConnOrTx,
	q BoardsQuery,
) ([]BoardAndStuff, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch boards with stats")
	defer perf.EndBlock()

	var qb db.QueryBuilder
	qb.Add(`
		SELECT $columns
		FROM
			boards
			LEFT JOIN (
				SELECT board_id, COUNT(*) AS post_count
				FROM posts
				GROUP BY board_id
			) AS post_stats ON post_stats.board_id = boards.id
			LEFT JOIN (
				SELECT posts.board_id, COUNT(*) AS comment_count
				FROM comments
				JOIN posts ON posts.id = comments.post_id
				GROUP BY posts.board_id
			) AS comment_stats ON comment_stats.board_id = boards.id
			LEFT JOIN LATERAL (
				SELECT
					posts.id,
					posts.title,
					posts.created_at,
					COALESCE(NULLIF(users.display_name, ''), users.username) AS author_name
				FROM posts
				JOIN users ON users.id = posts.user_id
				WHERE posts.board_id = boards.id
				ORDER BY posts.created_at DESC
				LIMIT 1
			) AS latest_post ON TRUE
		WHERE
			TRUE
	`)
	if len(q.BoardIDs) > 0 {
		qb.Add(`AND boards.id = ANY ($?)`, q.BoardIDs)
	}
	if len(q.Slugs) > 0 {
		qb.Add(`AND boards.slug = ANY ($?)`, q.Slugs)
	}
	if q.OrderByPosts {
		qb.Add(`ORDER BY COALESCE(post_stats.post_count, 0) DESC, boards.id ASC`)
	} else {
		qb.Add(`ORDER BY boards.id ASC`)
	}
	if q.Limit > 0 {
		qb.Add(`LIMIT $?`, q.Limit)
	}

	type resultRow struct {
		BoardAndStuff
		RawPostCount    *int `db:"post_stats.post_count"`
		RawCommentCount *int `db:"comment_stats.comment_count"`
	}

	rows, err := db.Query[resultRow](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch boards with stats")
	}

	result := make([]BoardAndStuff, len(rows))
	for i, row := range rows {
		if row.RawPostCount != nil {
			row.PostCount = *row.RawPostCount
		}
		if row.RawCommentCount != nil {
			row.CommentCount = *row.RawCommentCount
		}
		result[i] = row.BoardAndStuff
	}

	return result, nil
}

type BoardStats struct {
	BoardID     int
	PostsCount  int
	RecentPosts []RecentPostInfo // at most 5, newest first
}

/*
Fetches the post count and most recent posts for one board. Does not verify
that the board exists; fetch it first if you need a 404.
*/
func FetchBoardStats(
	ctx context.Context,
	dbConn db.ConnOrTx,
	boardID int,
) (BoardStats, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch board stats")
	defer perf.EndBlock()

	stats := BoardStats{BoardID: boardID}
	var err error

	stats.PostsCount, err = db.QueryOneScalar[int](ctx, dbConn,
		`SELECT COUNT(*) FROM posts WHERE board_id = $1`,
		boardID,
	)
	if err != nil {
		return BoardStats{}, oops.New(err, "failed to count board posts")
	}

	recent, err := db.Query[RecentPostInfo](ctx, dbConn,
		`
		SELECT $columns
		FROM posts
		WHERE board_id = $1
		ORDER BY created_at DESC
		LIMIT 5
		`,
		boardID,
	)
	if err != nil {
		return BoardStats{}, oops.New(err, "failed to fetch recent board posts")
	}
	stats.RecentPosts = make([]RecentPostInfo, len(recent))
	for i, p := range recent {
		stats.RecentPosts[i] = *p
	}

	return stats, nil
}

func CreateBoard(
	ctx context.Context,
	dbConn db.ConnOrTx,
	name, slug, description string,
	writePermission models.WritePermission,
) (*models.Board, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Create board")
	defer perf.EndBlock()

	board, err := db.QueryOne[models.Board](ctx, dbConn,
		`
		INSERT INTO boards (name, slug, description, write_permission)
		VALUES ($1, $2, $3, $4)
		RETURNING $columns
		`,
		name, slug, description, writePermission,
	)
	if err != nil {
		return nil, oops.New(err, "failed to create board")
	}

	return board, nil
}

type BoardUpdates struct {
	Name            *string
	Description     *string
	WritePermission *models.WritePermission

	// There is deliberately no Slug here. Slugs are in everyone's bookmarks
	// and must stay stable after creation.
}

/*
Applies the non-nil updates to a board. Returns db.NotFound if there is no
such board. At least one field must be set.
*/
func UpdateBoard(
	ctx context.Context,
	dbConn db.ConnOrTx,
	boardID int,
	updates BoardUpdates,
) (*models.Board, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Update board")
	defer perf.EndBlock()

	var set []string
	var args []any
	if updates.Name != nil {
		args = append(args, *updates.Name)
		set = append(set, fmt.Sprintf("name = $%d", len(args)))
	}
	if updates.Description != nil {
		args = append(args, *updates.Description)
		set = append(set, fmt.Sprintf("description = $%d", len(args)))
	}
	if updates.WritePermission != nil {
		args = append(args, *updates.WritePermission)
		set = append(set, fmt.Sprintf("write_permission = $%d", len(args)))
	}
	if len(set) == 0 {
		return nil, oops.New(nil, "no board fields to update")
	}
	args = append(args, boardID)

	board, err := db.QueryOne[models.Board](ctx, dbConn,
		`
		UPDATE boards
		SET `+strings.Join(set, ", ")+fmt.Sprintf(`
		WHERE id = $%d
		RETURNING $columns
		`, len(args)),
		args...,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, err
		}
		return nil, oops.New(err, "failed to update board")
	}

	return board, nil
}

/*
Deletes a board. Callers are responsible for the no-posts guard; boards with
posts must not be deleted. Returns db.NotFound if there is no such board.
*/
func DeleteBoard(
	ctx context.Context,
	dbConn db.ConnOrTx,
	boardID int,
) error {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Delete board")
	defer perf.EndBlock()

	tag, err := dbConn.Exec(ctx,
		`DELETE FROM boards WHERE id = $1`,
		boardID,
	)
	if err != nil {
		return oops.New(err, "failed to delete board")
	}
	if tag.RowsAffected() == 0 {
		return db.NotFound
	}

	return nil
}
