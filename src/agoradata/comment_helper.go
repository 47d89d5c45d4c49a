package agoradata

import (
	"context"
	"errors"

	"git.agora.community/agora/agora/src/db"
	"git.agora.community/agora/agora/src/models"
	"git.agora.community/agora/agora/src/oops"
	"git.agora.community/agora/agora/src/perf"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CommentsQuery struct {
	// Ignored when using FetchComment
	CommentIDs []int       // if empty, all comments
	PostIDs    []int       // if empty, all posts
	UserIDs    []uuid.UUID // if empty, all authors

	Limit, Offset int // if empty, no pagination
}

type CommentAndStuff struct {
	Comment models.Comment `db:"comments"`
	Author  models.User    `db:"author"`
}

/*
Fetches comments and their authors according to all the given query params,
oldest first. The flat result is what BuildCommentTree expects.
*/
func FetchComments(
	ctx context.Context,
	dbConn db.ConnOrTx,
	q CommentsQuery,
) ([]CommentAndStuff, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch comments")
	defer perf.EndBlock()

	var qb db.QueryBuilder
	qb.Add(`
		SELECT $columns
		FROM
			comments
			JOIN users AS author ON author.id = comments.user_id
		WHERE
			TRUE
	`)
	if len(q.CommentIDs) > 0 {
		qb.Add(`AND comments.id = ANY ($?)`, q.CommentIDs)
	}
	if len(q.PostIDs) > 0 {
		qb.Add(`AND comments.post_id = ANY ($?)`, q.PostIDs)
	}
	if len(q.UserIDs) > 0 {
		qb.Add(`AND comments.user_id = ANY ($?)`, q.UserIDs)
	}
	qb.Add(`ORDER BY comments.created_at ASC, comments.id ASC`)
	if q.Limit > 0 {
		qb.Add(`LIMIT $? OFFSET $?`, q.Limit, q.Offset)
	}

	rows, err := db.Query[CommentAndStuff](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch comments")
	}

	result := make([]CommentAndStuff, len(rows))
	for i, row := range rows {
		result[i] = *row
	}

	return result, nil
}

/*
Fetches a single comment and its author. A wrapper around FetchComments.

Returns db.NotFound if no result is found.
*/
func FetchComment(
	ctx context.Context,
	dbConn db.ConnOrTx,
	commentID int,
) (CommentAndStuff, error) {
	res, err := FetchComments(ctx, dbConn, CommentsQuery{
		CommentIDs: []int{commentID},
		Limit:      1,
	})
	if err != nil {
		return CommentAndStuff{}, oops.New(err, "failed to fetch comment")
	}

	if len(res) == 0 {
		return CommentAndStuff{}, db.NotFound
	}

	return res[0], nil
}

func CountComments(
	ctx context.Context,
	dbConn db.ConnOrTx,
	q CommentsQuery,
) (int, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Count comments")
	defer perf.EndBlock()

	var qb db.QueryBuilder
	qb.Add(`
		SELECT COUNT(*)
		FROM
			comments
		WHERE
			TRUE
	`)
	if len(q.CommentIDs) > 0 {
		qb.Add(`AND comments.id = ANY ($?)`, q.CommentIDs)
	}
	if len(q.PostIDs) > 0 {
		qb.Add(`AND comments.post_id = ANY ($?)`, q.PostIDs)
	}
	if len(q.UserIDs) > 0 {
		qb.Add(`AND comments.user_id = ANY ($?)`, q.UserIDs)
	}

	count, err := db.QueryOneScalar[int](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return 0, oops.New(err, "failed to count comments")
	}

	return count, nil
}

// Counts direct replies to a comment. Comments with replies cannot be
// deleted.
func CountReplies(
	ctx context.Context,
	dbConn db.ConnOrTx,
	commentID int,
) (int, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Count replies")
	defer perf.EndBlock()

	count, err := db.QueryOneScalar[int](ctx, dbConn,
		`SELECT COUNT(*) FROM comments WHERE parent_id = $1`,
		commentID,
	)
	if err != nil {
		return 0, oops.New(err, "failed to count replies")
	}

	return count, nil
}

type CommentStats struct {
	TotalComments int
	TodayComments int
}

/*
Aggregates comment counts, optionally restricted to specific posts. "Today"
is the database server's current date.
*/
func FetchCommentStats(
	ctx context.Context,
	dbConn db.ConnOrTx,
	postIDs []int,
) (CommentStats, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch comment stats")
	defer perf.EndBlock()

	var stats CommentStats
	var err error

	var qb db.QueryBuilder
	qb.Add(`SELECT COUNT(*) FROM comments WHERE TRUE`)
	if len(postIDs) > 0 {
		qb.Add(`AND post_id = ANY ($?)`, postIDs)
	}
	stats.TotalComments, err = db.QueryOneScalar[int](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return CommentStats{}, oops.New(err, "failed to count comments")
	}

	qb = db.QueryBuilder{}
	qb.Add(`SELECT COUNT(*) FROM comments WHERE created_at >= CURRENT_DATE`)
	if len(postIDs) > 0 {
		qb.Add(`AND post_id = ANY ($?)`, postIDs)
	}
	stats.TodayComments, err = db.QueryOneScalar[int](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return CommentStats{}, oops.New(err, "failed to count today's comments")
	}

	return stats, nil
}

type CommentOwnership struct {
	TotalComments  int
	OwnComments    int
	OthersComments int
	OthersByAuthor []AuthorCommentCount // authors with the most comments first
}

type AuthorCommentCount struct {
	AuthorName string `db:"author_name"`
	Count      int    `db:"comment_count"`
}

/*
Breaks down who wrote the comments on a post, relative to the given user.
The post-deletion flow uses this to warn before removing other people's
words.
*/
func FetchCommentOwnership(
	ctx context.Context,
	dbConn db.ConnOrTx,
	postID int,
	userID uuid.UUID,
) (CommentOwnership, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch comment ownership")
	defer perf.EndBlock()

	var ownership CommentOwnership
	var err error

	ownership.TotalComments, err = db.QueryOneScalar[int](ctx, dbConn,
		`SELECT COUNT(*) FROM comments WHERE post_id = $1`,
		postID,
	)
	if err != nil {
		return CommentOwnership{}, oops.New(err, "failed to count post comments")
	}

	ownership.OwnComments, err = db.QueryOneScalar[int](ctx, dbConn,
		`SELECT COUNT(*) FROM comments WHERE post_id = $1 AND user_id = $2`,
		postID, userID,
	)
	if err != nil {
		return CommentOwnership{}, oops.New(err, "failed to count own comments")
	}
	ownership.OthersComments = ownership.TotalComments - ownership.OwnComments

	others, err := db.Query[AuthorCommentCount](ctx, dbConn,
		`
		SELECT $columns
		FROM (
			SELECT
				COALESCE(NULLIF(users.display_name, ''), users.username) AS author_name,
				COUNT(*) AS comment_count
			FROM comments
			JOIN users ON users.id = comments.user_id
			WHERE
				comments.post_id = $1
				AND comments.user_id != $2
			GROUP BY 1
			ORDER BY 2 DESC, 1 ASC
		) AS others
		`,
		postID, userID,
	)
	if err != nil {
		return CommentOwnership{}, oops.New(err, "failed to fetch comment authors")
	}
	ownership.OthersByAuthor = make([]AuthorCommentCount, len(others))
	for i, o := range others {
		ownership.OthersByAuthor[i] = *o
	}

	return ownership, nil
}

type CommentNode struct {
	CommentAndStuff
	Replies []CommentAndStuff // never nil
}

/*
Arranges a flat, created-order comment list into the one-level structure the
site renders: top-level comments in order, each carrying its direct replies
in order. A reply whose parent is itself a reply never appears in the
result; the write paths allow creating one, but the site only ever renders
one level of nesting.
*/
func BuildCommentTree(comments []CommentAndStuff) []CommentNode {
	tree := []CommentNode{}
	for _, c := range comments {
		if c.Comment.ParentID != nil {
			continue
		}
		node := CommentNode{
			CommentAndStuff: c,
			Replies:         []CommentAndStuff{},
		}
		for _, reply := range comments {
			if reply.Comment.ParentID != nil && *reply.Comment.ParentID == c.Comment.ID {
				node.Replies = append(node.Replies, reply)
			}
		}
		tree = append(tree, node)
	}
	return tree
}

func CreateComment(
	ctx context.Context,
	dbConn db.ConnOrTx,
	postID int,
	userID uuid.UUID,
	parentID *int,
	content string,
) (*models.Comment, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Create comment")
	defer perf.EndBlock()

	comment, err := db.QueryOne[models.Comment](ctx, dbConn,
		`
		INSERT INTO comments (post_id, user_id, parent_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING $columns
		`,
		postID, userID, parentID, content,
	)
	if err != nil {
		return nil, oops.New(err, "failed to create comment")
	}

	return comment, nil
}

/*
Replaces a comment's content and bumps updated_at. Returns db.NotFound if
there is no such comment.
*/
func UpdateComment(
	ctx context.Context,
	dbConn db.ConnOrTx,
	commentID int,
	content string,
) (*models.Comment, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Update comment")
	defer perf.EndBlock()

	comment, err := db.QueryOne[models.Comment](ctx, dbConn,
		`
		UPDATE comments
		SET content = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING $columns
		`,
		commentID, content,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, err
		}
		return nil, oops.New(err, "failed to update comment")
	}

	return comment, nil
}

/*
Deletes a comment. Callers are responsible for the no-replies guard.
Returns db.NotFound if there is no such comment.
*/
func DeleteComment(
	ctx context.Context,
	dbConn db.ConnOrTx,
	commentID int,
) error {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Delete comment")
	defer perf.EndBlock()

	tag, err := dbConn.Exec(ctx,
		`DELETE FROM comments WHERE id = $1`,
		commentID,
	)
	if err != nil {
		return oops.New(err, "failed to delete comment")
	}
	if tag.RowsAffected() == 0 {
		return db.NotFound
	}

	return nil
}

// Deletes every comment on a post. Runs inside the caller's transaction as
// part of post deletion.
func DeleteCommentsForPost(
	ctx context.Context,
	tx pgx.Tx,
	postID int,
) {
	_, err := tx.Exec(ctx,
		`DELETE FROM comments WHERE post_id = $1`,
		postID,
	)
	if err != nil {
		panic(oops.New(err, "failed to delete post comments"))
	}
}
