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
	"git.agora.community/agora/agora/src/sanitize"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PostsQuery struct {
	// Ignored when using FetchPost
	PostIDs  []int       // if empty, all posts
	BoardIDs []int       // if empty, all boards
	UserIDs  []uuid.UUID // if empty, all authors

	// Matched against title and content with ILIKE. Empty matches everything.
	SearchQuery string

	// Ignored when using FetchPost or CountPosts.
	Limit, Offset int // if empty, no pagination
}

type PostAndStuff struct {
	Post   models.Post  `db:"posts"`
	Author models.User  `db:"author"`
	Board  models.Board `db:"boards"`

	CommentCount int
}

/*
Fetches posts and related models according to all the given query params,
newest first. Posts by soft-deleted users are included; their content
outlives the account.
*/
func FetchPosts(
	ctx context.Context,
	dbConn db.ConnOrTx,
	q PostsQuery,
) ([]PostAndStuff, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch posts")
	defer perf.EndBlock()

	var qb db.QueryBuilder
	qb.Add(`
		SELECT $columns
		FROM
			posts
			JOIN users AS author ON author.id = posts.user_id
			JOIN boards ON boards.id = posts.board_id
			LEFT JOIN (
				SELECT post_id, COUNT(*) AS comment_count
				FROM comments
				GROUP BY post_id
			) AS comment_counts ON comment_counts.post_id = posts.id
		WHERE
			TRUE
	`)
	addPostsFilters(&qb, q)
	qb.Add(`ORDER BY posts.created_at DESC`)
	if q.Limit > 0 {
		qb.Add(`LIMIT $? OFFSET $?`, q.Limit, q.Offset)
	}

	type resultRow struct {
		PostAndStuff
		RawCommentCount *int `db:"comment_counts.comment_count"`
	}

	rows, err := db.Query[resultRow](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch posts")
	}

	result := make([]PostAndStuff, len(rows))
	for i, row := range rows {
		if row.RawCommentCount != nil {
			row.CommentCount = *row.RawCommentCount
		}
		result[i] = row.PostAndStuff
	}

	return result, nil
}

/*
Fetches a single post and related models. A wrapper around FetchPosts.

Returns db.NotFound if no result is found.
*/
func FetchPost(
	ctx context.Context,
	dbConn db.ConnOrTx,
	postID int,
	q PostsQuery,
) (PostAndStuff, error) {
	q.PostIDs = []int{postID}
	q.Limit = 1
	q.Offset = 0

	res, err := FetchPosts(ctx, dbConn, q)
	if err != nil {
		return PostAndStuff{}, oops.New(err, "failed to fetch post")
	}

	if len(res) == 0 {
		return PostAndStuff{}, db.NotFound
	}

	return res[0], nil
}

func CountPosts(
	ctx context.Context,
	dbConn db.ConnOrTx,
	q PostsQuery,
) (int, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Count posts")
	defer perf.EndBlock()

	var qb db.QueryBuilder
	qb.Add(`
		SELECT COUNT(*)
		FROM
			posts
		WHERE
			TRUE
	`)
	addPostsFilters(&qb, q)

	count, err := db.QueryOneScalar[int](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return 0, oops.New(err, "failed to count posts")
	}

	return count, nil
}

// Filters shared by FetchPosts and CountPosts. Only references the posts
// table so the count query does not need the joins.
func addPostsFilters(qb *db.QueryBuilder, q PostsQuery) {
	if len(q.PostIDs) > 0 {
		qb.Add(`AND posts.id = ANY ($?)`, q.PostIDs)
	}
	if len(q.BoardIDs) > 0 {
		qb.Add(`AND posts.board_id = ANY ($?)`, q.BoardIDs)
	}
	if len(q.UserIDs) > 0 {
		qb.Add(`AND posts.user_id = ANY ($?)`, q.UserIDs)
	}
	if q.SearchQuery != "" {
		pattern := "%" + q.SearchQuery + "%"
		qb.Add(`AND (posts.title ILIKE $? OR posts.content ILIKE $?)`, pattern, pattern)
	}
}

/*
Bumps a post's view counter. A single UPDATE, so concurrent views cannot
lose counts. Returns db.NotFound if there is no such post.
*/
func IncrementPostViews(
	ctx context.Context,
	dbConn db.ConnOrTx,
	postID int,
) error {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Increment post views")
	defer perf.EndBlock()

	tag, err := dbConn.Exec(ctx,
		`UPDATE posts SET view_count = view_count + 1 WHERE id = $1`,
		postID,
	)
	if err != nil {
		return oops.New(err, "failed to increment post views")
	}
	if tag.RowsAffected() == 0 {
		return db.NotFound
	}

	return nil
}

type PostPreview struct {
	ID             int
	Title          string
	ContentPreview string // plain text, truncated
	ViewCount      int
	CommentCount   int
	BoardName      string
	BoardSlug      string
	AuthorName     string
	CreatedAt      time.Time
}

/*
Fetches the newest posts across all boards as plain-text previews, for the
landing page and the board index. Content is stripped of markup and cut to
100 characters.
*/
func FetchLatestPosts(
	ctx context.Context,
	dbConn db.ConnOrTx,
	n int,
) ([]PostPreview, error) {
	posts, err := FetchPosts(ctx, dbConn, PostsQuery{Limit: n})
	if err != nil {
		return nil, oops.New(err, "failed to fetch latest posts")
	}

	previews := make([]PostPreview, len(posts))
	for i, p := range posts {
		previews[i] = PostPreview{
			ID:             p.Post.ID,
			Title:          p.Post.Title,
			ContentPreview: truncated(sanitize.PlainText(p.Post.Content), 100),
			ViewCount:      p.Post.ViewCount,
			CommentCount:   p.CommentCount,
			BoardName:      p.Board.Name,
			BoardSlug:      p.Board.Slug,
			AuthorName:     p.Author.BestName(),
			CreatedAt:      p.Post.CreatedAt,
		}
	}

	return previews, nil
}

type PostStats struct {
	TotalPosts int
	TodayPosts int
	TotalViews int
}

/*
Aggregates post counts and views, optionally restricted to specific boards.
"Today" is the database server's current date.
*/
func FetchPostStats(
	ctx context.Context,
	dbConn db.ConnOrTx,
	boardIDs []int,
) (PostStats, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch post stats")
	defer perf.EndBlock()

	var stats PostStats
	var err error

	var qb db.QueryBuilder
	qb.Add(`SELECT COUNT(*) FROM posts WHERE TRUE`)
	if len(boardIDs) > 0 {
		qb.Add(`AND board_id = ANY ($?)`, boardIDs)
	}
	stats.TotalPosts, err = db.QueryOneScalar[int](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return PostStats{}, oops.New(err, "failed to count posts")
	}

	qb = db.QueryBuilder{}
	qb.Add(`SELECT COUNT(*) FROM posts WHERE created_at >= CURRENT_DATE`)
	if len(boardIDs) > 0 {
		qb.Add(`AND board_id = ANY ($?)`, boardIDs)
	}
	stats.TodayPosts, err = db.QueryOneScalar[int](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return PostStats{}, oops.New(err, "failed to count today's posts")
	}

	qb = db.QueryBuilder{}
	qb.Add(`SELECT COALESCE(SUM(view_count), 0) FROM posts WHERE TRUE`)
	if len(boardIDs) > 0 {
		qb.Add(`AND board_id = ANY ($?)`, boardIDs)
	}
	stats.TotalViews, err = db.QueryOneScalar[int](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return PostStats{}, oops.New(err, "failed to sum post views")
	}

	return stats, nil
}

func CreatePost(
	ctx context.Context,
	dbConn db.ConnOrTx,
	boardID int,
	userID uuid.UUID,
	title, content string,
) (*models.Post, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Create post")
	defer perf.EndBlock()

	post, err := db.QueryOne[models.Post](ctx, dbConn,
		`
		INSERT INTO posts (board_id, user_id, title, content)
		VALUES ($1, $2, $3, $4)
		RETURNING $columns
		`,
		boardID, userID, title, content,
	)
	if err != nil {
		return nil, oops.New(err, "failed to create post")
	}

	return post, nil
}

type PostUpdates struct {
	Title   *string
	Content *string
}

/*
Applies the non-nil updates to a post and bumps updated_at. Returns
db.NotFound if there is no such post. At least one field must be set.
*/
func UpdatePost(
	ctx context.Context,
	dbConn db.ConnOrTx,
	postID int,
	updates PostUpdates,
) (*models.Post, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Update post")
	defer perf.EndBlock()

	var set []string
	var args []any
	if updates.Title != nil {
		args = append(args, *updates.Title)
		set = append(set, fmt.Sprintf("title = $%d", len(args)))
	}
	if updates.Content != nil {
		args = append(args, *updates.Content)
		set = append(set, fmt.Sprintf("content = $%d", len(args)))
	}
	if len(set) == 0 {
		return nil, oops.New(nil, "no post fields to update")
	}
	set = append(set, "updated_at = NOW()")
	args = append(args, postID)

	post, err := db.QueryOne[models.Post](ctx, dbConn,
		`
		UPDATE posts
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
		return nil, oops.New(err, "failed to update post")
	}

	return post, nil
}

/*
Deletes a post and all of its comments. Runs inside the caller's transaction
so a failure partway leaves everything in place.
*/
func DeletePost(
	ctx context.Context,
	tx pgx.Tx,
	postID int,
) {
	DeleteCommentsForPost(ctx, tx, postID)

	_, err := tx.Exec(ctx,
		`DELETE FROM posts WHERE id = $1`,
		postID,
	)
	if err != nil {
		panic(oops.New(err, "failed to delete post"))
	}
}
