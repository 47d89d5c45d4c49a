package website

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"git.agora.community/agora/agora/src/agoradata"
	"git.agora.community/agora/agora/src/apperr"
	"git.agora.community/agora/agora/src/auth"
	"git.agora.community/agora/agora/src/db"
	"git.agora.community/agora/agora/src/oops"
	"git.agora.community/agora/agora/src/sanitize"
	"git.agora.community/agora/agora/src/siteurl"
	"git.agora.community/agora/agora/src/utils"
)

const maxPostTitleLength = 200

func GetPost(c *RequestContext) ResponseData {
	postID, ok := pathParamInt(c, "id")
	if !ok {
		return RejectRequest(c, apperr.NotFound("post not found"))
	}

	// A view only counts when somebody actually navigates to the post.
	// Refetches after posting a comment and explicit opt-outs don't.
	query := c.URL().Query()
	countView := query.Get("increment_view") != "false" && query.Get("from") != "comment"
	if countView {
		err := agoradata.IncrementPostViews(c, c.Conn, postID)
		if err != nil {
			if errors.Is(err, db.NotFound) {
				return RejectRequest(c, apperr.NotFound("post not found"))
			}
			return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to increment view count"))
		}
	}

	post, err := agoradata.FetchPost(c, c.Conn, postID, agoradata.PostsQuery{})
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("post not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch post"))
	}

	type postPageData struct {
		PostJson
		Permissions auth.Permissions `json:"permissions"`
	}

	var res ResponseData
	res.WriteJson(postPageData{
		PostJson:    PostToJson(post),
		Permissions: auth.CalculatePermissions(post.Post.UserID, c.CurrentUser),
	}, http.StatusOK)
	return res
}

func PostPermissions(c *RequestContext) ResponseData {
	postID, ok := pathParamInt(c, "id")
	if !ok {
		return RejectRequest(c, apperr.NotFound("post not found"))
	}

	post, err := agoradata.FetchPost(c, c.Conn, postID, agoradata.PostsQuery{})
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("post not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch post"))
	}

	type postPermissionsData struct {
		PostID      int              `json:"post_id"`
		Permissions auth.Permissions `json:"permissions"`
		UserID      *string          `json:"user_id"`
		IsAdmin     bool             `json:"is_admin"`
	}
	data := postPermissionsData{
		PostID:      post.Post.ID,
		Permissions: auth.CalculatePermissions(post.Post.UserID, c.CurrentUser),
	}
	if c.CurrentUser != nil {
		userID := c.CurrentUser.ID.String()
		data.UserID = &userID
		data.IsAdmin = c.CurrentUser.IsAdmin
	}

	var res ResponseData
	res.WriteJson(data, http.StatusOK)
	return res
}

func Search(c *RequestContext) ResponseData {
	query := c.URL().Query()
	searchQuery := strings.TrimSpace(query.Get("q"))
	boardParam := query.Get("board")
	page := parsePage(query.Get("page"))
	limit := parseLimit(query.Get("limit"), postsPerBoardPage, maxBoardPostsLimit)

	// The board filter takes a comma-separated list of slugs. Unknown slugs
	// are dropped; if nothing remains the filter cannot mean anything.
	var boardIDs []int
	if boardParam != "" {
		var slugs []string
		for _, slug := range strings.Split(boardParam, ",") {
			if slug = strings.TrimSpace(slug); slug != "" {
				slugs = append(slugs, slug)
			}
		}
		boards, err := agoradata.FetchBoards(c, c.Conn, agoradata.BoardsQuery{Slugs: slugs})
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch boards for search"))
		}
		if len(boards) == 0 {
			return RejectRequest(c, apperr.Validation("board not found"))
		}
		for _, b := range boards {
			boardIDs = append(boardIDs, b.ID)
		}
	}

	type searchData struct {
		Posts      []PostJson `json:"posts"`
		TotalCount int        `json:"total_count"`
		Page       int        `json:"page"`
		Limit      int        `json:"limit"`
		TotalPages int        `json:"total_pages"`
		Query      string     `json:"query"`
		BoardSlug  string     `json:"board_slug"`
	}
	data := searchData{
		Posts:      []PostJson{},
		TotalPages: 1,
		Page:       page,
		Limit:      limit,
		Query:      searchQuery,
		BoardSlug:  boardParam,
	}

	// An empty query matches nothing, not everything.
	if searchQuery != "" {
		postsQuery := agoradata.PostsQuery{
			BoardIDs:    boardIDs,
			SearchQuery: searchQuery,
		}

		totalCount, err := agoradata.CountPosts(c, c.Conn, postsQuery)
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to count search results"))
		}

		postsQuery.Limit = limit
		postsQuery.Offset = (page - 1) * limit
		posts, err := agoradata.FetchPosts(c, c.Conn, postsQuery)
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to search posts"))
		}

		data.Posts = PostsToJson(posts)
		data.TotalCount = totalCount
		data.TotalPages = utils.NumPages(totalCount, limit)
	}

	var res ResponseData
	res.WriteJson(data, http.StatusOK)
	return res
}

func SiteStats(c *RequestContext) ResponseData {
	boardParam := c.URL().Query().Get("board")

	var boardIDs []int
	if boardParam != "" {
		board, err := agoradata.FetchBoardBySlug(c, c.Conn, boardParam)
		if err != nil {
			if errors.Is(err, db.NotFound) {
				return RejectRequest(c, apperr.NotFound("board not found"))
			}
			return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch board"))
		}
		boardIDs = []int{board.ID}
	}

	stats, err := agoradata.FetchPostStats(c, c.Conn, boardIDs)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch post stats"))
	}

	type siteStatsData struct {
		TotalPosts int    `json:"total_posts"`
		TodayPosts int    `json:"today_posts"`
		TotalViews int    `json:"total_views"`
		BoardSlug  string `json:"board_slug"`
	}

	var res ResponseData
	res.WriteJson(siteStatsData{
		TotalPosts: stats.TotalPosts,
		TodayPosts: stats.TodayPosts,
		TotalViews: stats.TotalViews,
		BoardSlug:  boardParam,
	}, http.StatusOK)
	return res
}

// validatePostInput sanitizes and checks a post title and content. Pass nil
// for fields that are not being updated.
func validatePostInput(title, content *string) (err error) {
	if title != nil {
		*title = sanitize.PlainText(*title)
		if *title == "" {
			return apperr.Validation("title is required")
		}
		if utf8.RuneCountInString(*title) > maxPostTitleLength {
			return apperr.Validation("title cannot exceed 200 characters")
		}
	}
	if content != nil {
		*content = sanitize.PostContent(*content)
		if strings.TrimSpace(*content) == "" {
			return apperr.Validation("content is required")
		}
	}
	return nil
}

func CreatePost(c *RequestContext) ResponseData {
	slug := c.PathParams["slug"]

	board, err := agoradata.FetchBoardBySlug(c, c.Conn, slug)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("board not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch board"))
	}

	if !auth.CanWriteBoard(board.WritePermission, c.CurrentUser) {
		return RejectRequest(c, apperr.Permission("you do not have permission to post to this board"))
	}

	type createPostInput struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	var input createPostInput
	if err := c.ParseJson(&input); err != nil {
		return RejectRequest(c, err)
	}

	if err := validatePostInput(&input.Title, &input.Content); err != nil {
		return RejectRequest(c, err)
	}

	created, err := agoradata.CreatePost(c, c.Conn, board.ID, c.CurrentUser.ID, input.Title, input.Content)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to create post"))
	}

	post, err := agoradata.FetchPost(c, c.Conn, created.ID, agoradata.PostsQuery{})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch created post"))
	}

	var res ResponseData
	res.WriteJson(PostToJson(post), http.StatusCreated)
	return res
}

func UpdatePost(c *RequestContext) ResponseData {
	postID, ok := pathParamInt(c, "id")
	if !ok {
		return RejectRequest(c, apperr.NotFound("post not found"))
	}

	post, err := agoradata.FetchPost(c, c.Conn, postID, agoradata.PostsQuery{})
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("post not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch post"))
	}

	if !auth.CalculatePermissions(post.Post.UserID, c.CurrentUser).Update {
		return RejectRequest(c, apperr.Permission("you do not have permission to edit this post"))
	}

	type updatePostInput struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}
	var input updatePostInput
	if err := c.ParseJson(&input); err != nil {
		return RejectRequest(c, err)
	}

	if input.Title == nil && input.Content == nil {
		return RejectRequest(c, apperr.Validation("no fields to update"))
	}
	if err := validatePostInput(input.Title, input.Content); err != nil {
		return RejectRequest(c, err)
	}

	_, err = agoradata.UpdatePost(c, c.Conn, postID, agoradata.PostUpdates{
		Title:   input.Title,
		Content: input.Content,
	})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to update post"))
	}

	updated, err := agoradata.FetchPost(c, c.Conn, postID, agoradata.PostsQuery{})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch updated post"))
	}

	var res ResponseData
	res.WriteJson(PostToJson(updated), http.StatusOK)
	return res
}

func DeletePost(c *RequestContext) ResponseData {
	postID, ok := pathParamInt(c, "id")
	if !ok {
		return RejectRequest(c, apperr.NotFound("post not found"))
	}

	post, err := agoradata.FetchPost(c, c.Conn, postID, agoradata.PostsQuery{})
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("post not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch post"))
	}

	if !auth.CalculatePermissions(post.Post.UserID, c.CurrentUser).Delete {
		return RejectRequest(c, apperr.Permission("you do not have permission to delete this post"))
	}

	tx, err := c.Conn.Begin(c)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to start db transaction"))
	}
	defer tx.Rollback(c)

	agoradata.DeletePost(c, tx, postID)

	err = tx.Commit(c)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to commit post deletion"))
	}

	return ResponseData{StatusCode: http.StatusNoContent}
}

/*
PostCheckComments reports who would lose comments if a post were deleted,
so the client can warn before the owner erases other people's words.
*/
func PostCheckComments(c *RequestContext) ResponseData {
	postID, ok := pathParamInt(c, "id")
	if !ok {
		return RejectRequest(c, apperr.NotFound("post not found"))
	}

	post, err := agoradata.FetchPost(c, c.Conn, postID, agoradata.PostsQuery{})
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("post not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch post"))
	}

	ownership, err := agoradata.FetchCommentOwnership(c, c.Conn, postID, c.CurrentUser.ID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch comment ownership"))
	}

	type authorCountJson struct {
		AuthorName string `json:"author_name"`
		Count      int    `json:"count"`
	}
	type checkCommentsData struct {
		CanDelete         bool              `json:"can_delete"`
		TotalComments     int               `json:"total_comments"`
		OwnComments       int               `json:"own_comments"`
		OthersComments    int               `json:"others_comments"`
		HasOthersComments bool              `json:"has_others_comments"`
		OthersDetails     []authorCountJson `json:"others_details"`
	}
	data := checkCommentsData{
		CanDelete:         auth.CalculatePermissions(post.Post.UserID, c.CurrentUser).Delete,
		TotalComments:     ownership.TotalComments,
		OwnComments:       ownership.OwnComments,
		OthersComments:    ownership.OthersComments,
		HasOthersComments: ownership.OthersComments > 0,
		OthersDetails:     make([]authorCountJson, len(ownership.OthersByAuthor)),
	}
	for i, author := range ownership.OthersByAuthor {
		data.OthersDetails[i] = authorCountJson{
			AuthorName: author.AuthorName,
			Count:      author.Count,
		}
	}

	var res ResponseData
	res.WriteJson(data, http.StatusOK)
	return res
}

/*
PostDeleteSubmit is the form-flow version of post deletion. Unless forced,
it refuses to take other people's comments down with the post and bounces
back to the post with an error code instead.
*/
func PostDeleteSubmit(c *RequestContext) ResponseData {
	postID, ok := pathParamInt(c, "id")
	if !ok {
		return RejectRequest(c, apperr.NotFound("post not found"))
	}

	post, err := agoradata.FetchPost(c, c.Conn, postID, agoradata.PostsQuery{})
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("post not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch post"))
	}

	if !auth.CalculatePermissions(post.Post.UserID, c.CurrentUser).Delete {
		return RejectRequest(c, apperr.Permission("you do not have permission to delete this post"))
	}

	form, err := c.GetFormValues()
	if err != nil {
		return RejectRequest(c, apperr.Validation("invalid request body"))
	}
	forceDelete := parseBool(form.Get("force_delete"))

	if !forceDelete {
		ownership, err := agoradata.FetchCommentOwnership(c, c.Conn, postID, c.CurrentUser.ID)
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch comment ownership"))
		}
		if ownership.OthersComments > 0 {
			return c.Redirect(siteurl.BuildPostWithError(postID, "has_others_comments"), http.StatusFound)
		}
	}

	tx, err := c.Conn.Begin(c)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to start db transaction"))
	}
	defer tx.Rollback(c)

	agoradata.DeletePost(c, tx, postID)

	err = tx.Commit(c)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to commit post deletion"))
	}

	return c.Redirect(siteurl.BuildBoardWithMessage(post.Board.Slug, "post-deleted"), http.StatusFound)
}
