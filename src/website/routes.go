package website

import (
	"net/http"
	"time"

	"git.agora.community/agora/agora/src/auth"
	"git.agora.community/agora/agora/src/perf"
	"git.agora.community/agora/agora/src/siteurl"
	"github.com/jackc/pgx/v5/pgxpool"
)

/*
NewWebsiteRoutes wires up every route on the site. Middleware tiers, from
least to most privileged:

	routes      current-user resolution only; anyone may call
	csrf        + CSRF token verification, for mutations by anonymous users
	auth        + requires a logged-in user (401 otherwise)
	authCsrf    + both
	admin       + requires an admin (403 otherwise)
	adminCsrf   + both

Every mutating route verifies CSRF, even behind the admin check.
*/
func NewWebsiteRoutes(conn *pgxpool.Pool, perfCollector *perf.PerfCollector) http.Handler {
	router := &Router{}
	sessions := auth.NewSessionStore(conn)

	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			trackRequestPerf(perfCollector),
			logContextErrorsMiddleware,
			panicCatcherMiddleware,
			setDBConn(conn),
			currentUserMiddleware,
		},
	}

	csrf := csrfMiddleware(sessions)
	csrfRoutes := routes.WithMiddleware(csrf)
	authRoutes := routes.WithMiddleware(needsAuth)
	authCsrfRoutes := routes.WithMiddleware(needsAuth, csrf)
	adminRoutes := routes.WithMiddleware(adminsOnly)
	adminCsrfRoutes := routes.WithMiddleware(adminsOnly, csrf)

	// Landing and site-wide reads
	routes.GET(siteurl.RegexHomepage, Index)
	routes.GET(siteurl.RegexHealth, Health)
	routes.GET(siteurl.RegexSearch, Search)
	routes.GET(siteurl.RegexStats, SiteStats)

	// Auth. Login and signup sit behind a minimum response time so that
	// failures cannot be timed to tell a wrong password from a missing
	// account.
	routes.GET(siteurl.RegexCSRFToken, GetCSRFToken(sessions))
	routes.GET(siteurl.RegexLogin, LoginPage(sessions))
	csrfRoutes.POST(siteurl.RegexSignup, securityTimerMiddleware(time.Second, Signup))
	csrfRoutes.POST(siteurl.RegexLogin, securityTimerMiddleware(time.Second, Login))
	csrfRoutes.POST(siteurl.RegexLogout, Logout(sessions))
	authRoutes.GET(siteurl.RegexAuthMe, AuthMe)

	// Boards
	routes.GET(siteurl.RegexBoardList, BoardIndex)
	routes.GET(siteurl.RegexBoard, BoardPage)
	routes.GET(siteurl.RegexBoardStats, BoardStats)
	routes.GET(siteurl.RegexBoardWritePermission, BoardWritePermission)
	routes.GET(siteurl.RegexBoardPosts, BoardPosts)
	adminCsrfRoutes.POST(siteurl.RegexBoardList, CreateBoard)
	adminCsrfRoutes.PUT(siteurl.RegexBoardByID, UpdateBoard)
	adminCsrfRoutes.DELETE(siteurl.RegexBoardByID, DeleteBoard)

	// Posts
	routes.GET(siteurl.RegexPost, GetPost)
	routes.GET(siteurl.RegexPostPermissions, PostPermissions)
	authCsrfRoutes.POST(siteurl.RegexBoardPosts, CreatePost)
	authCsrfRoutes.PUT(siteurl.RegexPost, UpdatePost)
	authCsrfRoutes.DELETE(siteurl.RegexPost, DeletePost)
	authRoutes.GET(siteurl.RegexPostCheckComments, PostCheckComments)
	authCsrfRoutes.POST(siteurl.RegexPostDelete, PostDeleteSubmit)

	// Comments
	routes.GET(siteurl.RegexPostComments, PostComments)
	routes.GET(siteurl.RegexPostCommentStats, PostCommentStats)
	routes.GET(siteurl.RegexCommentStats, CommentStats)
	routes.GET(siteurl.RegexComment, GetComment)
	routes.GET(siteurl.RegexCommentPermissions, CommentPermissions)
	authCsrfRoutes.POST(siteurl.RegexPostComments, CreateComment)
	authCsrfRoutes.PUT(siteurl.RegexComment, UpdateComment)
	authCsrfRoutes.DELETE(siteurl.RegexComment, DeleteComment)

	// Admin console: users
	adminRoutes.GET(siteurl.RegexAdminUsers, AdminUserList)
	adminRoutes.GET(siteurl.RegexAdminUserSearch, AdminUserSearch)
	adminRoutes.GET(siteurl.RegexAdminUser, AdminUserGet)
	adminCsrfRoutes.PUT(siteurl.RegexAdminUser, AdminUserUpdate)
	adminCsrfRoutes.DELETE(siteurl.RegexAdminUser, AdminUserDelete)
	adminCsrfRoutes.PATCH(siteurl.RegexAdminUserRestore, AdminUserRestore)
	adminCsrfRoutes.PUT(siteurl.RegexAdminUserDemote, AdminUserDemote)
	adminCsrfRoutes.POST(siteurl.RegexAdminUsersBulkDelete, AdminUsersBulkDelete)
	adminCsrfRoutes.POST(siteurl.RegexAdminUsersBulkPromote, AdminUsersBulkPromote)
	adminCsrfRoutes.POST(siteurl.RegexAdminUsersBulkDemote, AdminUsersBulkDemote)
	adminRoutes.GET(siteurl.RegexAdminUserContentCheck, AdminUserContentCheck)

	// Admin console: boards (form flows for the no-JS console pages)
	adminRoutes.GET(siteurl.RegexAdminBoards, AdminBoards(sessions))
	adminCsrfRoutes.POST(siteurl.RegexAdminBoards, AdminBoardCreateSubmit)
	adminRoutes.GET(siteurl.RegexAdminBoard, AdminBoardGet(sessions))
	adminCsrfRoutes.POST(siteurl.RegexAdminBoardDelete, AdminBoardDeleteSubmit)

	// Admin console: site
	adminRoutes.GET(siteurl.RegexAdminStats, AdminStats)
	adminRoutes.GET(siteurl.RegexAdminLogs, AdminLogs)
	adminRoutes.GET(siteurl.RegexAdminSystemHealth, AdminSystemHealth)
	adminCsrfRoutes.POST(siteurl.RegexAdminFixSequences, AdminFixSequences)

	// The router panics if nothing matches, so this must stay last.
	routes.AnyMethod(siteurl.RegexCatchAll, FourOhFour)

	return router
}
