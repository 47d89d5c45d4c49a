package siteurl

import (
	"regexp"
	"strconv"
	"strings"

	"git.agora.community/agora/agora/src/oops"
	"github.com/google/uuid"
)

const uuidPattern = `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`

/*
* General
 */

var RegexHomepage = regexp.MustCompile("^/$")

func BuildHomepage() string {
	return Url("/", nil)
}

var RegexHealth = regexp.MustCompile("^/health$")

func BuildHealth() string {
	return Url("/health", nil)
}

var RegexSearch = regexp.MustCompile("^/search$")

func BuildSearch(query string) string {
	var q []Q
	if query != "" {
		q = []Q{{"q", query}}
	}
	return Url("/search", q)
}

var RegexStats = regexp.MustCompile("^/stats$")

func BuildStats() string {
	return Url("/stats", nil)
}

/*
* Auth
 */

var RegexCSRFToken = regexp.MustCompile("^/auth/csrf-token$")

func BuildCSRFToken() string {
	return Url("/auth/csrf-token", nil)
}

var RegexLogin = regexp.MustCompile("^/auth/login$")

func BuildLogin() string {
	return Url("/auth/login", nil)
}

func BuildLoginWithMessage(message string) string {
	return Url("/auth/login", []Q{{"message", message}})
}

var RegexSignup = regexp.MustCompile("^/auth/signup$")

func BuildSignup() string {
	return Url("/auth/signup", nil)
}

var RegexLogout = regexp.MustCompile("^/auth/logout$")

func BuildLogout() string {
	return Url("/auth/logout", nil)
}

var RegexAuthMe = regexp.MustCompile("^/auth/me$")

func BuildAuthMe() string {
	return Url("/auth/me", nil)
}

/*
* Boards
 */

var RegexBoardList = regexp.MustCompile("^/boards$")

func BuildBoardList() string {
	return Url("/boards", nil)
}

var RegexBoard = regexp.MustCompile(`^/boards/(?P<slug>[^/]+)$`)

func BuildBoard(slug string) string {
	return Url("/boards/"+validatedSlug(slug), nil)
}

func BuildBoardWithMessage(slug string, message string) string {
	return Url("/boards/"+validatedSlug(slug), []Q{{"message", message}})
}

var RegexBoardByID = regexp.MustCompile(`^/boards/(?P<id>\d+)$`)

func BuildBoardByID(boardID int) string {
	return Url("/boards/"+validatedID(boardID, "board"), nil)
}

var RegexBoardStats = regexp.MustCompile(`^/boards/(?P<id>\d+)/stats$`)

func BuildBoardStats(boardID int) string {
	return Url("/boards/"+validatedID(boardID, "board")+"/stats", nil)
}

var RegexBoardWritePermission = regexp.MustCompile(`^/boards/(?P<slug>[^/]+)/write-permission$`)

func BuildBoardWritePermission(slug string) string {
	return Url("/boards/"+validatedSlug(slug)+"/write-permission", nil)
}

var RegexBoardPosts = regexp.MustCompile(`^/boards/(?P<slug>[^/]+)/posts$`)

func BuildBoardPosts(slug string) string {
	return Url("/boards/"+validatedSlug(slug)+"/posts", nil)
}

/*
* Posts
 */

var RegexPost = regexp.MustCompile(`^/posts/(?P<id>\d+)$`)

func BuildPost(postID int) string {
	return Url("/posts/"+validatedID(postID, "post"), nil)
}

func BuildPostWithError(postID int, errorCode string) string {
	return Url("/posts/"+validatedID(postID, "post"), []Q{{"error", errorCode}})
}

// BuildPostCommentsSection links to the comments anchor on a post page.
// fromComment marks the bounce back after submitting a comment so the
// view counter does not tick up on it.
func BuildPostCommentsSection(postID int, fromComment bool) string {
	var query []Q
	if fromComment {
		query = []Q{{"from", "comment"}}
	}
	return UrlWithFragment("/posts/"+validatedID(postID, "post"), query, "comments")
}

var RegexPostPermissions = regexp.MustCompile(`^/posts/(?P<id>\d+)/permissions$`)

func BuildPostPermissions(postID int) string {
	return Url("/posts/"+validatedID(postID, "post")+"/permissions", nil)
}

var RegexPostCheckComments = regexp.MustCompile(`^/posts/(?P<id>\d+)/check-comments$`)

func BuildPostCheckComments(postID int) string {
	return Url("/posts/"+validatedID(postID, "post")+"/check-comments", nil)
}

var RegexPostDelete = regexp.MustCompile(`^/posts/(?P<id>\d+)/delete$`)

func BuildPostDelete(postID int) string {
	return Url("/posts/"+validatedID(postID, "post")+"/delete", nil)
}

var RegexPostComments = regexp.MustCompile(`^/posts/(?P<id>\d+)/comments$`)

func BuildPostComments(postID int) string {
	return Url("/posts/"+validatedID(postID, "post")+"/comments", nil)
}

var RegexPostCommentStats = regexp.MustCompile(`^/posts/(?P<id>\d+)/comments/stats$`)

func BuildPostCommentStats(postID int) string {
	return Url("/posts/"+validatedID(postID, "post")+"/comments/stats", nil)
}

/*
* Comments
 */

var RegexComment = regexp.MustCompile(`^/comments/(?P<id>\d+)$`)

func BuildComment(commentID int) string {
	return Url("/comments/"+validatedID(commentID, "comment"), nil)
}

var RegexCommentPermissions = regexp.MustCompile(`^/comments/(?P<id>\d+)/permissions$`)

func BuildCommentPermissions(commentID int) string {
	return Url("/comments/"+validatedID(commentID, "comment")+"/permissions", nil)
}

var RegexCommentStats = regexp.MustCompile("^/comments/stats$")

func BuildCommentStats() string {
	return Url("/comments/stats", nil)
}

/*
* Admin: users
 */

var RegexAdminUsers = regexp.MustCompile("^/admin/users$")

func BuildAdminUsers() string {
	return Url("/admin/users", nil)
}

var RegexAdminUserSearch = regexp.MustCompile("^/admin/users/search$")

func BuildAdminUserSearch(query string) string {
	return Url("/admin/users/search", []Q{{"q", query}})
}

var RegexAdminUser = regexp.MustCompile(`^/admin/users/(?P<id>` + uuidPattern + `)$`)

func BuildAdminUser(userID uuid.UUID) string {
	return Url("/admin/users/"+userID.String(), nil)
}

var RegexAdminUserRestore = regexp.MustCompile(`^/admin/users/(?P<id>` + uuidPattern + `)/restore$`)

func BuildAdminUserRestore(userID uuid.UUID) string {
	return Url("/admin/users/"+userID.String()+"/restore", nil)
}

var RegexAdminUserDemote = regexp.MustCompile(`^/admin/users/(?P<id>` + uuidPattern + `)/demote$`)

func BuildAdminUserDemote(userID uuid.UUID) string {
	return Url("/admin/users/"+userID.String()+"/demote", nil)
}

var RegexAdminUserContentCheck = regexp.MustCompile(`^/admin/users/(?P<id>` + uuidPattern + `)/content-check$`)

func BuildAdminUserContentCheck(userID uuid.UUID) string {
	return Url("/admin/users/"+userID.String()+"/content-check", nil)
}

var RegexAdminUsersBulkDelete = regexp.MustCompile("^/admin/users/bulk-delete$")

func BuildAdminUsersBulkDelete() string {
	return Url("/admin/users/bulk-delete", nil)
}

var RegexAdminUsersBulkPromote = regexp.MustCompile("^/admin/users/bulk-promote$")

func BuildAdminUsersBulkPromote() string {
	return Url("/admin/users/bulk-promote", nil)
}

var RegexAdminUsersBulkDemote = regexp.MustCompile("^/admin/users/bulk-demote$")

func BuildAdminUsersBulkDemote() string {
	return Url("/admin/users/bulk-demote", nil)
}

/*
* Admin: boards
 */

var RegexAdminBoards = regexp.MustCompile("^/admin/boards$")

func BuildAdminBoards() string {
	return Url("/admin/boards", nil)
}

func BuildAdminBoardsWithMessage(message string) string {
	return Url("/admin/boards", []Q{{"message", message}})
}

func BuildAdminBoardsWithError(errorCode string) string {
	return Url("/admin/boards", []Q{{"error", errorCode}})
}

var RegexAdminBoard = regexp.MustCompile(`^/admin/boards/(?P<id>\d+)$`)

func BuildAdminBoard(boardID int) string {
	return Url("/admin/boards/"+validatedID(boardID, "board"), nil)
}

var RegexAdminBoardDelete = regexp.MustCompile(`^/admin/boards/(?P<id>\d+)/delete$`)

func BuildAdminBoardDelete(boardID int) string {
	return Url("/admin/boards/"+validatedID(boardID, "board")+"/delete", nil)
}

/*
* Admin: site
 */

var RegexAdminStats = regexp.MustCompile("^/admin/stats$")

func BuildAdminStats() string {
	return Url("/admin/stats", nil)
}

var RegexAdminLogs = regexp.MustCompile("^/admin/logs$")

func BuildAdminLogs() string {
	return Url("/admin/logs", nil)
}

var RegexAdminSystemHealth = regexp.MustCompile("^/admin/system/health$")

func BuildAdminSystemHealth() string {
	return Url("/admin/system/health", nil)
}

var RegexAdminFixSequences = regexp.MustCompile("^/admin/fix-sequences$")

func BuildAdminFixSequences() string {
	return Url("/admin/fix-sequences", nil)
}

// Matches any path. Always register this last, as the 404 route.
var RegexCatchAll = regexp.MustCompile("^")

func validatedID(id int, noun string) string {
	if id < 1 {
		panic(oops.New(nil, "Invalid %s id (%d), must be >= 1", noun, id))
	}
	return strconv.Itoa(id)
}

func validatedSlug(slug string) string {
	slug = strings.TrimSpace(slug)
	if len(slug) == 0 {
		panic(oops.New(nil, "Tried building a board url with a blank slug"))
	}
	if strings.Contains(slug, "/") {
		panic(oops.New(nil, "Tried building a board url with / in the slug"))
	}
	return slug
}
