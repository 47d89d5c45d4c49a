package agoradata

import (
	"context"
	"fmt"

	"git.agora.community/agora/agora/src/db"
	"git.agora.community/agora/agora/src/oops"
	"git.agora.community/agora/agora/src/perf"
)

type SiteStats struct {
	TotalUsers    int // non-deleted accounts
	AdminCount    int // non-deleted admins
	TotalPosts    int
	TotalComments int
	NewUsersToday int
	TodayPosts    int
	ActiveUsers   int // non-deleted users who posted or commented in the last 30 days
}

/*
Aggregates the numbers on the admin dashboard. "Today" is the database
server's current date.
*/
func FetchSiteStats(
	ctx context.Context,
	dbConn db.ConnOrTx,
) (SiteStats, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch site stats")
	defer perf.EndBlock()

	var stats SiteStats
	var err error

	stats.TotalUsers, err = db.QueryOneScalar[int](ctx, dbConn,
		`SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`,
	)
	if err != nil {
		return SiteStats{}, oops.New(err, "failed to count users")
	}

	stats.AdminCount, err = db.QueryOneScalar[int](ctx, dbConn,
		`SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND is_admin`,
	)
	if err != nil {
		return SiteStats{}, oops.New(err, "failed to count admins")
	}

	stats.TotalPosts, err = db.QueryOneScalar[int](ctx, dbConn,
		`SELECT COUNT(*) FROM posts`,
	)
	if err != nil {
		return SiteStats{}, oops.New(err, "failed to count posts")
	}

	stats.TotalComments, err = db.QueryOneScalar[int](ctx, dbConn,
		`SELECT COUNT(*) FROM comments`,
	)
	if err != nil {
		return SiteStats{}, oops.New(err, "failed to count comments")
	}

	stats.NewUsersToday, err = db.QueryOneScalar[int](ctx, dbConn,
		`SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND created_at >= CURRENT_DATE`,
	)
	if err != nil {
		return SiteStats{}, oops.New(err, "failed to count today's new users")
	}

	stats.TodayPosts, err = db.QueryOneScalar[int](ctx, dbConn,
		`SELECT COUNT(*) FROM posts WHERE created_at >= CURRENT_DATE`,
	)
	if err != nil {
		return SiteStats{}, oops.New(err, "failed to count today's posts")
	}

	stats.ActiveUsers, err = db.QueryOneScalar[int](ctx, dbConn,
		`
		SELECT COUNT(DISTINCT activity.user_id)
		FROM (
			SELECT user_id, created_at FROM posts
			UNION ALL
			SELECT user_id, created_at FROM comments
		) AS activity
		JOIN users ON users.id = activity.user_id
		WHERE
			activity.created_at >= NOW() - INTERVAL '30 days'
			AND users.deleted_at IS NULL
		`,
	)
	if err != nil {
		return SiteStats{}, oops.New(err, "failed to count active users")
	}

	return stats, nil
}

/*
Resets the id sequences for boards, posts, and comments to follow the
current max id. Imported or manually fixed-up data can leave sequences
behind, which makes inserts fail with duplicate keys until this runs.
*/
func ResetIDSequences(
	ctx context.Context,
	dbConn db.ConnOrTx,
) error {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Reset id sequences")
	defer perf.EndBlock()

	for _, table := range []string{"boards", "posts", "comments"} {
		_, err := dbConn.Exec(ctx, fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %s`,
			table, table,
		))
		if err != nil {
			return oops.New(err, "failed to reset id sequence for %s", table)
		}
	}

	return nil
}
