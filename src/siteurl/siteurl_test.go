package siteurl

import (
	"net/url"
	"regexp"
	"testing"

	"git.agora.community/agora/agora/src/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var testUserID = uuid.MustParse("7b0116a4-8e2c-4d31-a01d-5ecbb67fb2d5")

func TestUrl(t *testing.T) {
	defer func() {
		SetGlobalBaseUrl(config.Config.BaseUrl)
	}()
	SetGlobalBaseUrl("http://agora.test")

	t.Run("no query", func(t *testing.T) {
		result := Url("/test/foo", nil)
		assert.Equal(t, "http://agora.test/test/foo", result)
	})
	t.Run("yes query", func(t *testing.T) {
		result := Url("/test/foo", []Q{{"bar", "baz"}, {"zig??", "zig & zag!!"}})
		assert.Equal(t, "http://agora.test/test/foo?bar=baz&zig%3F%3F=zig+%26+zag%21%21", result)
	})
	t.Run("fragment", func(t *testing.T) {
		result := UrlWithFragment("/test/foo", []Q{{"bar", "baz"}}, "section")
		assert.Equal(t, "http://agora.test/test/foo?bar=baz#section", result)
	})
	t.Run("trailing slash on the base url", func(t *testing.T) {
		SetGlobalBaseUrl("http://agora.test/")
		result := Url("/test/foo", nil)
		assert.Equal(t, "http://agora.test/test/foo", result)
	})

	assert.Panics(t, func() { SetGlobalBaseUrl("agora.test") })
	assert.Panics(t, func() { SetGlobalBaseUrl("http://") })
}

func TestHomepage(t *testing.T) {
	AssertRegexMatch(t, BuildHomepage(), RegexHomepage, nil)
}

func TestHealth(t *testing.T) {
	AssertRegexMatch(t, BuildHealth(), RegexHealth, nil)
}

func TestSearch(t *testing.T) {
	AssertRegexMatch(t, BuildSearch(""), RegexSearch, nil)
	AssertRegexMatch(t, BuildSearch("welcome"), RegexSearch, nil)
	assert.Contains(t, BuildSearch("welcome"), "?q=welcome")
}

func TestStats(t *testing.T) {
	AssertRegexMatch(t, BuildStats(), RegexStats, nil)
}

func TestCSRFToken(t *testing.T) {
	AssertRegexMatch(t, BuildCSRFToken(), RegexCSRFToken, nil)
}

func TestLogin(t *testing.T) {
	AssertRegexMatch(t, BuildLogin(), RegexLogin, nil)
	AssertRegexMatch(t, BuildLoginWithMessage("account-created"), RegexLogin, nil)
	assert.Contains(t, BuildLoginWithMessage("account-created"), "?message=account-created")
}

func TestSignup(t *testing.T) {
	AssertRegexMatch(t, BuildSignup(), RegexSignup, nil)
}

func TestLogout(t *testing.T) {
	AssertRegexMatch(t, BuildLogout(), RegexLogout, nil)
}

func TestAuthMe(t *testing.T) {
	AssertRegexMatch(t, BuildAuthMe(), RegexAuthMe, nil)
}

func TestBoardList(t *testing.T) {
	AssertRegexMatch(t, BuildBoardList(), RegexBoardList, nil)
}

func TestBoard(t *testing.T) {
	AssertRegexMatch(t, BuildBoard("free"), RegexBoard, map[string]string{"slug": "free"})
	AssertRegexMatch(t, BuildBoardWithMessage("free", "post-deleted"), RegexBoard, map[string]string{"slug": "free"})
	assert.Contains(t, BuildBoardWithMessage("free", "post-deleted"), "?message=post-deleted")
	assert.Panics(t, func() { BuildBoard("") })
	assert.Panics(t, func() { BuildBoard(" ") })
	assert.Panics(t, func() { BuildBoard("free/stuff") })
}

func TestBoardByID(t *testing.T) {
	AssertRegexMatch(t, BuildBoardByID(1), RegexBoardByID, map[string]string{"id": "1"})
	assert.Panics(t, func() { BuildBoardByID(0) })
	assert.Panics(t, func() { BuildBoardByID(-1) })
}

func TestBoardStats(t *testing.T) {
	AssertRegexMatch(t, BuildBoardStats(2), RegexBoardStats, map[string]string{"id": "2"})
}

func TestBoardWritePermission(t *testing.T) {
	AssertRegexMatch(t, BuildBoardWritePermission("notice"), RegexBoardWritePermission, map[string]string{"slug": "notice"})
	assert.Panics(t, func() { BuildBoardWritePermission("") })
}

func TestBoardPosts(t *testing.T) {
	AssertRegexMatch(t, BuildBoardPosts("newsletter"), RegexBoardPosts, map[string]string{"slug": "newsletter"})
	assert.Panics(t, func() { BuildBoardPosts("a/b") })
}

func TestPost(t *testing.T) {
	AssertRegexMatch(t, BuildPost(42), RegexPost, map[string]string{"id": "42"})
	AssertRegexMatch(t, BuildPostWithError(42, "has_others_comments"), RegexPost, map[string]string{"id": "42"})
	assert.Contains(t, BuildPostWithError(42, "has_others_comments"), "?error=has_others_comments")
	assert.Panics(t, func() { BuildPost(0) })
	assert.Panics(t, func() { BuildPost(-5) })
}

func TestPostCommentsSection(t *testing.T) {
	defer func() {
		SetGlobalBaseUrl(config.Config.BaseUrl)
	}()
	SetGlobalBaseUrl("http://agora.test")

	AssertRegexMatch(t, BuildPostCommentsSection(42, false), RegexPost, map[string]string{"id": "42"})
	AssertRegexMatch(t, BuildPostCommentsSection(42, true), RegexPost, map[string]string{"id": "42"})
	assert.Equal(t, "http://agora.test/posts/42#comments", BuildPostCommentsSection(42, false))
	assert.Equal(t, "http://agora.test/posts/42?from=comment#comments", BuildPostCommentsSection(42, true))
}

func TestPostPermissions(t *testing.T) {
	AssertRegexMatch(t, BuildPostPermissions(42), RegexPostPermissions, map[string]string{"id": "42"})
}

func TestPostCheckComments(t *testing.T) {
	AssertRegexMatch(t, BuildPostCheckComments(42), RegexPostCheckComments, map[string]string{"id": "42"})
}

func TestPostDelete(t *testing.T) {
	AssertRegexMatch(t, BuildPostDelete(42), RegexPostDelete, map[string]string{"id": "42"})
}

func TestPostComments(t *testing.T) {
	AssertRegexMatch(t, BuildPostComments(42), RegexPostComments, map[string]string{"id": "42"})
}

func TestPostCommentStats(t *testing.T) {
	AssertRegexMatch(t, BuildPostCommentStats(42), RegexPostCommentStats, map[string]string{"id": "42"})
}

func TestComment(t *testing.T) {
	AssertRegexMatch(t, BuildComment(7), RegexComment, map[string]string{"id": "7"})
	assert.Panics(t, func() { BuildComment(0) })
}

func TestCommentPermissions(t *testing.T) {
	AssertRegexMatch(t, BuildCommentPermissions(7), RegexCommentPermissions, map[string]string{"id": "7"})
}

func TestCommentStats(t *testing.T) {
	AssertRegexMatch(t, BuildCommentStats(), RegexCommentStats, nil)
}

func TestAdminUsers(t *testing.T) {
	AssertRegexMatch(t, BuildAdminUsers(), RegexAdminUsers, nil)
}

func TestAdminUserSearch(t *testing.T) {
	AssertRegexMatch(t, BuildAdminUserSearch("ben"), RegexAdminUserSearch, nil)
	assert.Contains(t, BuildAdminUserSearch("ben"), "?q=ben")

	// The search route must never be swallowed by the uuid route.
	assert.False(t, RegexAdminUser.MatchString("/admin/users/search"))
}

func TestAdminUser(t *testing.T) {
	AssertRegexMatch(t, BuildAdminUser(testUserID), RegexAdminUser, map[string]string{"id": testUserID.String()})
}

func TestAdminUserRestore(t *testing.T) {
	AssertRegexMatch(t, BuildAdminUserRestore(testUserID), RegexAdminUserRestore, map[string]string{"id": testUserID.String()})
}

func TestAdminUserDemote(t *testing.T) {
	AssertRegexMatch(t, BuildAdminUserDemote(testUserID), RegexAdminUserDemote, map[string]string{"id": testUserID.String()})
}

func TestAdminUserContentCheck(t *testing.T) {
	AssertRegexMatch(t, BuildAdminUserContentCheck(testUserID), RegexAdminUserContentCheck, map[string]string{"id": testUserID.String()})
}

func TestAdminUsersBulk(t *testing.T) {
	AssertRegexMatch(t, BuildAdminUsersBulkDelete(), RegexAdminUsersBulkDelete, nil)
	AssertRegexMatch(t, BuildAdminUsersBulkPromote(), RegexAdminUsersBulkPromote, nil)
	AssertRegexMatch(t, BuildAdminUsersBulkDemote(), RegexAdminUsersBulkDemote, nil)

	assert.False(t, RegexAdminUser.MatchString("/admin/users/bulk-delete"))
	assert.False(t, RegexAdminUser.MatchString("/admin/users/bulk-promote"))
	assert.False(t, RegexAdminUser.MatchString("/admin/users/bulk-demote"))
}

func TestAdminBoards(t *testing.T) {
	AssertRegexMatch(t, BuildAdminBoards(), RegexAdminBoards, nil)
	AssertRegexMatch(t, BuildAdminBoardsWithMessage("board-created"), RegexAdminBoards, nil)
	AssertRegexMatch(t, BuildAdminBoardsWithError("slug-exists"), RegexAdminBoards, nil)
	assert.Contains(t, BuildAdminBoardsWithMessage("board-created"), "?message=board-created")
	assert.Contains(t, BuildAdminBoardsWithError("slug-exists"), "?error=slug-exists")
}

func TestAdminBoard(t *testing.T) {
	AssertRegexMatch(t, BuildAdminBoard(3), RegexAdminBoard, map[string]string{"id": "3"})
	assert.Panics(t, func() { BuildAdminBoard(0) })
}

func TestAdminBoardDelete(t *testing.T) {
	AssertRegexMatch(t, BuildAdminBoardDelete(3), RegexAdminBoardDelete, map[string]string{"id": "3"})
}

func TestAdminStats(t *testing.T) {
	AssertRegexMatch(t, BuildAdminStats(), RegexAdminStats, nil)
}

func TestAdminLogs(t *testing.T) {
	AssertRegexMatch(t, BuildAdminLogs(), RegexAdminLogs, nil)
}

func TestAdminSystemHealth(t *testing.T) {
	AssertRegexMatch(t, BuildAdminSystemHealth(), RegexAdminSystemHealth, nil)
}

func TestAdminFixSequences(t *testing.T) {
	AssertRegexMatch(t, BuildAdminFixSequences(), RegexAdminFixSequences, nil)
}

func AssertRegexMatch(t *testing.T, fullUrl string, regex *regexp.Regexp, paramsToVerify map[string]string) {
	parsed, err := url.Parse(fullUrl)
	ok := assert.Nilf(t, err, "Full url could not be parsed: %s", fullUrl)
	if !ok {
		return
	}

	requestPath := parsed.Path
	if len(requestPath) == 0 {
		requestPath = "/"
	}
	match := regex.FindStringSubmatch(requestPath)
	assert.NotNilf(t, match, "Url did not match regex: [%s] vs [%s]", requestPath, regex.String())

	if paramsToVerify != nil {
		subexpNames := regex.SubexpNames()
		for i, matchedValue := range match {
			paramName := subexpNames[i]
			expectedValue, ok := paramsToVerify[paramName]
			if ok {
				assert.Equalf(t, expectedValue, matchedValue, "Param mismatch for [%s]", paramName)
				delete(paramsToVerify, paramName)
			}
		}
		if len(paramsToVerify) > 0 {
			unmatchedParams := make([]string, 0, len(paramsToVerify))
			for paramName := range paramsToVerify {
				unmatchedParams = append(unmatchedParams, paramName)
			}
			assert.Fail(t, "Expected match groups not found", unmatchedParams)
		}
	}
}
