package website

import (
	"errors"
	"net/http"
	"strings"

	"git.agora.community/agora/agora/src/agoradata"
	"git.agora.community/agora/agora/src/apperr"
	"git.agora.community/agora/agora/src/auth"
	"git.agora.community/agora/agora/src/db"
	"git.agora.community/agora/agora/src/models"
	"git.agora.community/agora/agora/src/oops"
	"git.agora.community/agora/agora/src/sanitize"
	"git.agora.community/agora/agora/src/siteurl"
	"git.agora.community/agora/agora/src/utils"
)

const postsPerBoardPage = 10
const boardIndexLatestPosts = 15
const maxBoardPostsLimit = 50

func BoardIndex(c *RequestContext) ResponseData {
	boards, err := agoradata.FetchBoardsWithStats(c, c.Conn, agoradata.BoardsQuery{})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch boards"))
	}

	latest, err := agoradata.FetchLatestPosts(c, c.Conn, boardIndexLatestPosts)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch latest posts"))
	}

	boardsJson := make([]BoardWithStatsJson, len(boards))
	for i, b := range boards {
		boardsJson[i] = BoardWithStatsToJson(b)
	}

	type boardIndexData struct {
		Boards      []BoardWithStatsJson `json:"boards"`
		LatestPosts []PostPreviewJson    `json:"latest_posts"`
	}

	var res ResponseData
	res.WriteJson(boardIndexData{
		Boards:      boardsJson,
		LatestPosts: PostPreviewsToJson(latest),
	}, http.StatusOK)
	return res
}

func BoardPage(c *RequestContext) ResponseData {
	slug := c.PathParams["slug"]

	board, err := agoradata.FetchBoardBySlug(c, c.Conn, slug)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("board not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch board"))
	}

	totalCount, err := agoradata.CountPosts(c, c.Conn, agoradata.PostsQuery{BoardIDs: []int{board.ID}})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to count board posts"))
	}

	page, totalPages, ok := getPageInfo(c.URL().Query().Get("page"), totalCount, postsPerBoardPage)
	if !ok {
		return c.Redirect(siteurl.BuildBoard(slug), http.StatusSeeOther)
	}

	posts, err := agoradata.FetchPosts(c, c.Conn, agoradata.PostsQuery{
		BoardIDs: []int{board.ID},
		Limit:    postsPerBoardPage,
		Offset:   (page - 1) * postsPerBoardPage,
	})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch board posts"))
	}

	type boardPageData struct {
		Board      BoardJson  `json:"board"`
		Posts      []PostJson `json:"posts"`
		TotalCount int        `json:"total_count"`
		Page       int        `json:"page"`
		Limit      int        `json:"limit"`
		TotalPages int        `json:"total_pages"`
	}

	var res ResponseData
	res.WriteJson(boardPageData{
		Board:      BoardToJson(board),
		Posts:      PostsToJson(posts),
		TotalCount: totalCount,
		Page:       page,
		Limit:      postsPerBoardPage,
		TotalPages: totalPages,
	}, http.StatusOK)
	return res
}

func BoardStats(c *RequestContext) ResponseData {
	boardID, ok := pathParamInt(c, "id")
	if !ok {
		return RejectRequest(c, apperr.NotFound("board not found"))
	}

	_, err := agoradata.FetchBoard(c, c.Conn, boardID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("board not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch board"))
	}

	stats, err := agoradata.FetchBoardStats(c, c.Conn, boardID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch board stats"))
	}

	type boardStatsData struct {
		BoardID     int              `json:"board_id"`
		PostsCount  int              `json:"posts_count"`
		RecentPosts []RecentPostJson `json:"recent_posts"`
	}

	var res ResponseData
	res.WriteJson(boardStatsData{
		BoardID:     stats.BoardID,
		PostsCount:  stats.PostsCount,
		RecentPosts: RecentPostsToJson(stats.RecentPosts),
	}, http.StatusOK)
	return res
}

/*
BoardWritePermission tells the client whether the current user may start
posts on a board, so the "new post" button can hide itself before the user
wastes time writing.
*/
func BoardWritePermission(c *RequestContext) ResponseData {
	slug := c.PathParams["slug"]

	board, err := agoradata.FetchBoardBySlug(c, c.Conn, slug)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("board not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch board"))
	}

	type writePermissionData struct {
		BoardSlug          string  `json:"board_slug"`
		HasWritePermission bool    `json:"has_write_permission"`
		UserRole           *string `json:"user_role"`
		IsAdmin            bool    `json:"is_admin"`
	}
	data := writePermissionData{
		BoardSlug:          board.Slug,
		HasWritePermission: auth.CanWriteBoard(board.WritePermission, c.CurrentUser),
	}
	if c.CurrentUser != nil {
		role := c.CurrentUser.Role()
		data.UserRole = &role
		data.IsAdmin = c.CurrentUser.IsAdmin
	}

	var res ResponseData
	res.WriteJson(data, http.StatusOK)
	return res
}

func BoardPosts(c *RequestContext) ResponseData {
	slug := c.PathParams["slug"]

	board, err := agoradata.FetchBoardBySlug(c, c.Conn, slug)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("board not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch board"))
	}

	page := parsePage(c.URL().Query().Get("page"))
	limit := parseLimit(c.URL().Query().Get("limit"), postsPerBoardPage, maxBoardPostsLimit)

	totalCount, err := agoradata.CountPosts(c, c.Conn, agoradata.PostsQuery{BoardIDs: []int{board.ID}})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to count board posts"))
	}

	posts, err := agoradata.FetchPosts(c, c.Conn, agoradata.PostsQuery{
		BoardIDs: []int{board.ID},
		Limit:    limit,
		Offset:   (page - 1) * limit,
	})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch board posts"))
	}

	type boardPostsData struct {
		Posts      []PostJson `json:"posts"`
		TotalCount int        `json:"total_count"`
		Page       int        `json:"page"`
		Limit      int        `json:"limit"`
		TotalPages int        `json:"total_pages"`
	}

	var res ResponseData
	res.WriteJson(boardPostsData{
		Posts:      PostsToJson(posts),
		TotalCount: totalCount,
		Page:       page,
		Limit:      limit,
		TotalPages: utils.NumPages(totalCount, limit),
	}, http.StatusOK)
	return res
}

func parseWritePermission(s string) (models.WritePermission, bool) {
	switch wp := models.WritePermission(s); wp {
	case models.WritePermissionAll, models.WritePermissionMember, models.WritePermissionAdmin:
		return wp, true
	}
	return "", false
}

func CreateBoard(c *RequestContext) ResponseData {
	type createBoardInput struct {
		Name            string `json:"name"`
		Slug            string `json:"slug"`
		Description     string `json:"description"`
		WritePermission string `json:"write_permission"`
	}
	var input createBoardInput
	if err := c.ParseJson(&input); err != nil {
		return RejectRequest(c, err)
	}

	name := sanitize.PlainText(input.Name)
	slug := strings.TrimSpace(input.Slug)
	description := sanitize.PlainText(input.Description)

	if name == "" || slug == "" {
		return RejectRequest(c, apperr.Validation("name and slug are required"))
	}

	writePermission := models.WritePermissionMember
	if input.WritePermission != "" {
		wp, ok := parseWritePermission(input.WritePermission)
		if !ok {
			return RejectRequest(c, apperr.Validation("write_permission must be one of all, member, admin"))
		}
		writePermission = wp
	}

	_, err := agoradata.FetchBoardBySlug(c, c.Conn, slug)
	if err == nil {
		return RejectRequest(c, apperr.Conflict("a board with this slug already exists"))
	} else if !errors.Is(err, db.NotFound) {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to check for existing board"))
	}

	board, err := agoradata.CreateBoard(c, c.Conn, name, slug, description, writePermission)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to create board"))
	}

	var res ResponseData
	res.WriteJson(BoardToJson(board), http.StatusCreated)
	return res
}

func UpdateBoard(c *RequestContext) ResponseData {
	boardID, ok := pathParamInt(c, "id")
	if !ok {
		return RejectRequest(c, apperr.NotFound("board not found"))
	}

	// The slug is deliberately not updatable; board URLs must stay stable.
	type updateBoardInput struct {
		Name            *string `json:"name"`
		Description     *string `json:"description"`
		WritePermission *string `json:"write_permission"`
	}
	var input updateBoardInput
	if err := c.ParseJson(&input); err != nil {
		return RejectRequest(c, err)
	}

	var updates agoradata.BoardUpdates
	if input.Name != nil {
		name := sanitize.PlainText(*input.Name)
		if name == "" {
			return RejectRequest(c, apperr.Validation("name cannot be empty"))
		}
		updates.Name = &name
	}
	if input.Description != nil {
		description := sanitize.PlainText(*input.Description)
		updates.Description = &description
	}
	if input.WritePermission != nil {
		wp, ok := parseWritePermission(*input.WritePermission)
		if !ok {
			return RejectRequest(c, apperr.Validation("write_permission must be one of all, member, admin"))
		}
		updates.WritePermission = &wp
	}

	if updates.Name == nil && updates.Description == nil && updates.WritePermission == nil {
		return RejectRequest(c, apperr.Validation("no fields to update"))
	}

	board, err := agoradata.UpdateBoard(c, c.Conn, boardID, updates)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("board not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to update board"))
	}

	var res ResponseData
	res.WriteJson(BoardToJson(board), http.StatusOK)
	return res
}

func DeleteBoard(c *RequestContext) ResponseData {
	boardID, ok := pathParamInt(c, "id")
	if !ok {
		return RejectRequest(c, apperr.NotFound("board not found"))
	}

	_, err := agoradata.FetchBoard(c, c.Conn, boardID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("board not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch board"))
	}

	postCount, err := agoradata.CountPosts(c, c.Conn, agoradata.PostsQuery{BoardIDs: []int{boardID}})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to count board posts"))
	}
	if postCount > 0 {
		return RejectRequest(c, apperr.Conflict("boards with existing posts cannot be deleted"))
	}

	err = agoradata.DeleteBoard(c, c.Conn, boardID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("board not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to delete board"))
	}

	return ResponseData{StatusCode: http.StatusNoContent}
}
