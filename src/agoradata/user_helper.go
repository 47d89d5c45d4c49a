package agoradata

import (
	"context"
	"errors"
	"time"

	"git.agora.community/agora/agora/src/db"
	"git.agora.community/agora/agora/src/models"
	"git.agora.community/agora/agora/src/oops"
	"git.agora.community/agora/agora/src/perf"
	"github.com/google/uuid"
)

type UsersQuery struct {
	// Ignored when using FetchUser
	UserIDs   []uuid.UUID // if empty, all users
	Emails    []string    // if empty, all users
	Usernames []string    // if empty, all users

	// Flags to modify behavior
	IncludeDeleted bool // include soft-deleted accounts
}

/*
Fetches users according to all the given query params. Soft-deleted accounts
are excluded unless IncludeDeleted is set.
*/
func FetchUsers(
	ctx context.Context,
	dbConn db.ConnOrTx,
	q UsersQuery,
) ([]*models.User, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch users")
	defer perf.EndBlock()

	var qb db.QueryBuilder
	qb.Add(`
		SELECT $columns
		FROM
			users
		WHERE
			TRUE
	`)
	if len(q.UserIDs) > 0 {
		qb.Add(`AND users.id = ANY ($?)`, q.UserIDs)
	}
	if len(q.Emails) > 0 {
		qb.Add(`AND users.email = ANY ($?)`, q.Emails)
	}
	if len(q.Usernames) > 0 {
		qb.Add(`AND users.username = ANY ($?)`, q.Usernames)
	}
	if !q.IncludeDeleted {
		qb.Add(`AND users.deleted_at IS NULL`)
	}

	users, err := db.Query[models.User](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch users")
	}

	return users, nil
}

/*
Fetches a single user by id. A wrapper around FetchUsers.

Returns db.NotFound if no result is found.
*/
func FetchUser(
	ctx context.Context,
	dbConn db.ConnOrTx,
	userID uuid.UUID,
	q UsersQuery,
) (*models.User, error) {
	q.UserIDs = []uuid.UUID{userID}

	res, err := FetchUsers(ctx, dbConn, q)
	if err != nil {
		return nil, oops.New(err, "failed to fetch user")
	}

	if len(res) == 0 {
		return nil, db.NotFound
	}

	return res[0], nil
}

/*
Fetches a single user by email. A wrapper around FetchUsers.

Returns db.NotFound if no result is found.
*/
func FetchUserByEmail(
	ctx context.Context,
	dbConn db.ConnOrTx,
	email string,
	q UsersQuery,
) (*models.User, error) {
	q.Emails = []string{email}

	res, err := FetchUsers(ctx, dbConn, q)
	if err != nil {
		return nil, oops.New(err, "failed to fetch user")
	}

	if len(res) == 0 {
		return nil, db.NotFound
	}

	return res[0], nil
}

/*
Fetches a single user by username. A wrapper around FetchUsers.

Returns db.NotFound if no result is found.
*/
func FetchUserByUsername(
	ctx context.Context,
	dbConn db.ConnOrTx,
	username string,
	q UsersQuery,
) (*models.User, error) {
	q.Usernames = []string{username}

	res, err := FetchUsers(ctx, dbConn, q)
	if err != nil {
		return nil, oops.New(err, "failed to fetch user")
	}

	if len(res) == 0 {
		return nil, db.NotFound
	}

	return res[0], nil
}

func CreateUser(
	ctx context.Context,
	dbConn db.ConnOrTx,
	email, username, displayName, passwordHash string,
) (*models.User, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Create user")
	defer perf.EndBlock()

	user, err := db.QueryOne[models.User](ctx, dbConn,
		`
		INSERT INTO users (email, username, display_name, password)
		VALUES ($1, $2, $3, $4)
		RETURNING $columns
		`,
		email, username, displayName, passwordHash,
	)
	if err != nil {
		return nil, oops.New(err, "failed to create user")
	}

	return user, nil
}

// Counts non-deleted admins other than the given user. The admin console
// checks this before demoting or deleting an admin so the site can never end
// up with zero admins.
func CountOtherAdmins(
	ctx context.Context,
	dbConn db.ConnOrTx,
	excludeUserID uuid.UUID,
) (int, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Count other admins")
	defer perf.EndBlock()

	count, err := db.QueryOneScalar[int](ctx, dbConn,
		`
		SELECT COUNT(*)
		FROM users
		WHERE
			is_admin
			AND deleted_at IS NULL
			AND id != $1
		`,
		excludeUserID,
	)
	if err != nil {
		return 0, oops.New(err, "failed to count other admins")
	}

	return count, nil
}

const (
	AdminUsersSortCreatedDesc  = "created_desc"
	AdminUsersSortCreatedAsc   = "created_asc"
	AdminUsersSortUsernameAsc  = "username_asc"
	AdminUsersSortUsernameDesc = "username_desc"
	AdminUsersSortPostsDesc    = "posts_desc"
)

type AdminUsersQuery struct {
	UserIDs []uuid.UUID // if empty, all users

	Search     string // matched against the fields selected by SearchType
	SearchType string // "username", "display_name", "email", "name" (username or display name), or "all" / empty
	Role       string // "admin", "user", or "all" / empty

	Sort           string // one of the AdminUsersSort constants; created_desc if empty
	IncludeDeleted bool

	Limit, Offset int // if empty, no pagination
}

type UserAndStuff struct {
	User models.User `db:"users"`

	PostsCount    int
	CommentsCount int
	LastActivity  *time.Time // most recent post or comment, nil if neither
}

/*
Fetches users for the admin console, with their activity stats joined in.
Unlike FetchUsers this can sort by activity and search across profile fields.
*/
func FetchAdminUsers(
	ctx context.Context,
	dbConn db.ConnOrTx,
	q AdminUsersQuery,
) ([]UserAndStuff, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch admin users")
	defer perf.EndBlock()

	var qb db.QueryBuilder
	qb.Add(`
		SELECT $columns
		FROM
			users
			LEFT JOIN (
				SELECT user_id, COUNT(*) AS posts_count, MAX(created_at) AS latest_post_at
				FROM posts
				GROUP BY user_id
			) AS post_stats ON post_stats.user_id = users.id
			LEFT JOIN (
				SELECT user_id, COUNT(*) AS comments_count, MAX(created_at) AS latest_comment_at
				FROM comments
				GROUP BY user_id
			) AS comment_stats ON comment_stats.user_id = users.id
		WHERE
			TRUE
	`)
	addAdminUsersFilters(&qb, q)
	switch q.Sort {
	case AdminUsersSortCreatedAsc:
		qb.Add(`ORDER BY users.created_at ASC`)
	case AdminUsersSortUsernameAsc:
		qb.Add(`ORDER BY users.username ASC`)
	case AdminUsersSortUsernameDesc:
		qb.Add(`ORDER BY users.username DESC`)
	case AdminUsersSortPostsDesc:
		qb.Add(`ORDER BY COALESCE(post_stats.posts_count, 0) DESC, users.created_at DESC`)
	default:
		if q.IncludeDeleted {
			// Deleted accounts surface first so they are easy to review.
			qb.Add(`ORDER BY users.deleted_at ASC NULLS FIRST, users.created_at DESC`)
		} else {
			qb.Add(`ORDER BY users.created_at DESC`)
		}
	}
	if q.Limit > 0 {
		qb.Add(`LIMIT $? OFFSET $?`, q.Limit, q.Offset)
	}

	type resultRow struct {
		UserAndStuff
		RawPostsCount      *int       `db:"post_stats.posts_count"`
		RawCommentsCount   *int       `db:"comment_stats.comments_count"`
		RawLatestPostAt    *time.Time `db:"post_stats.latest_post_at"`
		RawLatestCommentAt *time.Time `db:"comment_stats.latest_comment_at"`
	}

	rows, err := db.Query[resultRow](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch admin users")
	}

	result := make([]UserAndStuff, len(rows))
	for i, row := range rows {
		if row.RawPostsCount != nil {
			row.PostsCount = *row.RawPostsCount
		}
		if row.RawCommentsCount != nil {
			row.CommentsCount = *row.RawCommentsCount
		}
		row.LastActivity = laterTime(row.RawLatestPostAt, row.RawLatestCommentAt)

		result[i] = row.UserAndStuff
	}

	return result, nil
}

/*
Fetches a single user with admin stats. A wrapper around FetchAdminUsers.

Returns db.NotFound if no result is found.
*/
func FetchAdminUser(
	ctx context.Context,
	dbConn db.ConnOrTx,
	userID uuid.UUID,
	q AdminUsersQuery,
) (UserAndStuff, error) {
	q.UserIDs = []uuid.UUID{userID}
	q.Limit = 1
	q.Offset = 0

	res, err := FetchAdminUsers(ctx, dbConn, q)
	if err != nil {
		return UserAndStuff{}, oops.New(err, "failed to fetch admin user")
	}

	if len(res) == 0 {
		return UserAndStuff{}, db.NotFound
	}

	return res[0], nil
}

func CountAdminUsers(
	ctx context.Context,
	dbConn db.ConnOrTx,
	q AdminUsersQuery,
) (int, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Count admin users")
	defer perf.EndBlock()

	var qb db.QueryBuilder
	qb.Add(`
		SELECT COUNT(*)
		FROM
			users
		WHERE
			TRUE
	`)
	addAdminUsersFilters(&qb, q)

	count, err := db.QueryOneScalar[int](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return 0, oops.New(err, "failed to count admin users")
	}

	return count, nil
}

// Filters shared by FetchAdminUsers and CountAdminUsers. Only references the
// users table so the count query does not need the stats joins.
func addAdminUsersFilters(qb *db.QueryBuilder, q AdminUsersQuery) {
	if len(q.UserIDs) > 0 {
		qb.Add(`AND users.id = ANY ($?)`, q.UserIDs)
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		switch q.SearchType {
		case "username":
			qb.Add(`AND users.username ILIKE $?`, pattern)
		case "display_name":
			qb.Add(`AND users.display_name ILIKE $?`, pattern)
		case "email":
			qb.Add(`AND users.email ILIKE $?`, pattern)
		case "name":
			qb.Add(`AND (users.username ILIKE $? OR users.display_name ILIKE $?)`, pattern, pattern)
		default:
			qb.Add(
				`AND (users.username ILIKE $? OR users.display_name ILIKE $? OR users.email ILIKE $?)`,
				pattern, pattern, pattern,
			)
		}
	}
	switch q.Role {
	case models.RoleAdmin:
		qb.Add(`AND users.is_admin`)
	case "user":
		qb.Add(`AND NOT users.is_admin`)
	}
	if !q.IncludeDeleted {
		qb.Add(`AND users.deleted_at IS NULL`)
	}
}

func laterTime(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b == nil || a.After(*b) {
		return a
	}
	return b
}

/*
Marks a user as deleted. The row (and the user's posts and comments) stays
around; the account just can no longer log in and disappears from normal
queries. Returns db.NotFound if there is no such user or they are already
deleted.
*/
func SoftDeleteUser(
	ctx context.Context,
	dbConn db.ConnOrTx,
	userID uuid.UUID,
) (*models.User, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Soft-delete user")
	defer perf.EndBlock()

	user, err := db.QueryOne[models.User](ctx, dbConn,
		`
		UPDATE users
		SET deleted_at = NOW()
		WHERE
			id = $1
			AND deleted_at IS NULL
		RETURNING $columns
		`,
		userID,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, err
		}
		return nil, oops.New(err, "failed to soft-delete user")
	}

	return user, nil
}

/*
Clears a user's deleted_at marker. Returns db.NotFound if there is no such
user or they are not deleted.
*/
func RestoreUser(
	ctx context.Context,
	dbConn db.ConnOrTx,
	userID uuid.UUID,
) (*models.User, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Restore user")
	defer perf.EndBlock()

	user, err := db.QueryOne[models.User](ctx, dbConn,
		`
		UPDATE users
		SET deleted_at = NULL
		WHERE
			id = $1
			AND deleted_at IS NOT NULL
		RETURNING $columns
		`,
		userID,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, err
		}
		return nil, oops.New(err, "failed to restore user")
	}

	return user, nil
}

/*
Grants or revokes admin rights. Callers are responsible for the last-admin
and self-demotion guards; this just writes the flag. Returns db.NotFound if
there is no such (non-deleted) user.
*/
func SetUserAdmin(
	ctx context.Context,
	dbConn db.ConnOrTx,
	userID uuid.UUID,
	isAdmin bool,
) (*models.User, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Set user admin flag")
	defer perf.EndBlock()

	user, err := db.QueryOne[models.User](ctx, dbConn,
		`
		UPDATE users
		SET is_admin = $2
		WHERE
			id = $1
			AND deleted_at IS NULL
		RETURNING $columns
		`,
		userID,
		isAdmin,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, err
		}
		return nil, oops.New(err, "failed to set admin flag")
	}

	return user, nil
}

type UserContentCheck struct {
	PostsCount             int
	CommentsCount          int
	RepliesCount           int
	ParticipatedPostsCount int

	RecentPosts    []RecentPostInfo    // at most 5, newest first
	RecentComments []RecentCommentInfo // at most 5, newest first
}

func (c *UserContentCheck) HasContent() bool {
	return c.PostsCount > 0 || c.CommentsCount > 0
}

type RecentPostInfo struct {
	ID        int       `db:"id"`
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"created_at"`
}

type RecentCommentInfo struct {
	ID             int
	ContentPreview string
	CreatedAt      time.Time
	IsReply        bool
}

/*
Summarizes everything a user has written, for the admin console's
pre-deletion review. Previews are truncated (titles to 50 characters,
comment contents to 100).
*/
func FetchUserContentCheck(
	ctx context.Context,
	dbConn db.ConnOrTx,
	userID uuid.UUID,
) (UserContentCheck, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch user content check")
	defer perf.EndBlock()

	var check UserContentCheck
	var err error

	check.PostsCount, err = db.QueryOneScalar[int](ctx, dbConn,
		`SELECT COUNT(*) FROM posts WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return UserContentCheck{}, oops.New(err, "failed to count user posts")
	}

	check.CommentsCount, err = db.QueryOneScalar[int](ctx, dbConn,
		`SELECT COUNT(*) FROM comments WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return UserContentCheck{}, oops.New(err, "failed to count user comments")
	}

	check.RepliesCount, err = db.QueryOneScalar[int](ctx, dbConn,
		`SELECT COUNT(*) FROM comments WHERE user_id = $1 AND parent_id IS NOT NULL`,
		userID,
	)
	if err != nil {
		return UserContentCheck{}, oops.New(err, "failed to count user replies")
	}

	check.ParticipatedPostsCount, err = db.QueryOneScalar[int](ctx, dbConn,
		`SELECT COUNT(DISTINCT post_id) FROM comments WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return UserContentCheck{}, oops.New(err, "failed to count participated posts")
	}

	recentPosts, err := db.Query[RecentPostInfo](ctx, dbConn,
		`
		SELECT $columns
		FROM posts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 5
		`,
		userID,
	)
	if err != nil {
		return UserContentCheck{}, oops.New(err, "failed to fetch recent posts")
	}
	check.RecentPosts = make([]RecentPostInfo, len(recentPosts))
	for i, p := range recentPosts {
		p.Title = truncated(p.Title, 50)
		check.RecentPosts[i] = *p
	}

	type recentCommentRow struct {
		ID        int       `db:"id"`
		Content   string    `db:"content"`
		ParentID  *int      `db:"parent_id"`
		CreatedAt time.Time `db:"created_at"`
	}
	recentComments, err := db.Query[recentCommentRow](ctx, dbConn,
		`
		SELECT $columns
		FROM comments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 5
		`,
		userID,
	)
	if err != nil {
		return UserContentCheck{}, oops.New(err, "failed to fetch recent comments")
	}
	check.RecentComments = make([]RecentCommentInfo, len(recentComments))
	for i, c := range recentComments {
		check.RecentComments[i] = RecentCommentInfo{
			ID:             c.ID,
			ContentPreview: truncated(c.Content, 100),
			CreatedAt:      c.CreatedAt,
			IsReply:        c.ParentID != nil,
		}
	}

	return check, nil
}

// Truncates a string to at most max runes, appending "..." when anything was
// cut off.
func truncated(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
