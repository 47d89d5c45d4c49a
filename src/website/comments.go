package website

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"git.agora.community/agora/agora/src/agoradata"
	"git.agora.community/agora/agora/src/apperr"
	"git.agora.community/agora/agora/src/auth"
	"git.agora.community/agora/agora/src/db"
	"git.agora.community/agora/agora/src/oops"
	"git.agora.community/agora/agora/src/sanitize"
	"git.agora.community/agora/agora/src/siteurl"
)

func PostComments(c *RequestContext) ResponseData {
	postID, ok := pathParamInt(c, "id")
	if !ok {
		return RejectRequest(c, apperr.NotFound("post not found"))
	}

	_, err := agoradata.FetchPost(c, c.Conn, postID, agoradata.PostsQuery{})
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("post not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch post"))
	}

	comments, err := agoradata.FetchComments(c, c.Conn, agoradata.CommentsQuery{PostIDs: []int{postID}})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch comments"))
	}

	tree := agoradata.BuildCommentTree(comments)

	type postCommentsData struct {
		Comments   []CommentTreeNodeJson `json:"comments"`
		TotalCount int                   `json:"total_count"`
	}

	var res ResponseData
	res.WriteJson(postCommentsData{
		Comments:   CommentTreeToJson(tree, c.CurrentUser),
		TotalCount: len(comments),
	}, http.StatusOK)
	return res
}

func GetComment(c *RequestContext) ResponseData {
	commentID, ok := pathParamInt(c, "id")
	if !ok {
		return RejectRequest(c, apperr.NotFound("comment not found"))
	}

	comment, err := agoradata.FetchComment(c, c.Conn, commentID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("comment not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch comment"))
	}

	var res ResponseData
	res.WriteJson(CommentToJson(comment), http.StatusOK)
	return res
}

func CommentPermissions(c *RequestContext) ResponseData {
	commentID, ok := pathParamInt(c, "id")
	if !ok {
		return RejectRequest(c, apperr.NotFound("comment not found"))
	}

	comment, err := agoradata.FetchComment(c, c.Conn, commentID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("comment not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch comment"))
	}

	type commentPermissionsData struct {
		CommentID   int              `json:"comment_id"`
		Permissions auth.Permissions `json:"permissions"`
		UserID      *string          `json:"user_id"`
		IsAdmin     bool             `json:"is_admin"`
	}
	data := commentPermissionsData{
		CommentID:   comment.Comment.ID,
		Permissions: auth.CalculatePermissions(comment.Comment.UserID, c.CurrentUser),
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

func CreateComment(c *RequestContext) ResponseData {
	postID, ok := pathParamInt(c, "id")
	if !ok {
		return RejectRequest(c, apperr.NotFound("post not found"))
	}

	_, err := agoradata.FetchPost(c, c.Conn, postID, agoradata.PostsQuery{})
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("post not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch post"))
	}

	form, err := c.GetFormValues()
	if err != nil {
		return RejectRequest(c, apperr.Validation("invalid request body"))
	}

	content := sanitize.CommentContent(form.Get("content"))
	if strings.TrimSpace(content) == "" {
		return RejectRequest(c, apperr.Validation("content is required"))
	}

	// A reply must point at a real comment on this same post. Note that the
	// parent may itself be a reply; the comment tree just never shows
	// anything nested deeper than one level.
	var parentID *int
	if parentParam := form.Get("parent_id"); parentParam != "" {
		parsed, err := strconv.Atoi(parentParam)
		if err != nil {
			return RejectRequest(c, apperr.Validation("parent comment does not exist"))
		}
		parent, err := agoradata.FetchComment(c, c.Conn, parsed)
		if err != nil {
			if errors.Is(err, db.NotFound) {
				return RejectRequest(c, apperr.Validation("parent comment does not exist"))
			}
			return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch parent comment"))
		}
		if parent.Comment.PostID != postID {
			return RejectRequest(c, apperr.Validation("parent comment belongs to a different post"))
		}
		parentID = &parsed
	}

	comment, err := agoradata.CreateComment(c, c.Conn, postID, c.CurrentUser.ID, parentID, content)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to create comment"))
	}

	// Plain form posts go back to the post's comment section; the refetch
	// is marked so it doesn't count as another view.
	if c.WantsHTMLResponse() {
		return c.Redirect(siteurl.BuildPostCommentsSection(postID, true), http.StatusFound)
	}

	var res ResponseData
	res.WriteJson(CommentToJson(agoradata.CommentAndStuff{
		Comment: *comment,
		Author:  *c.CurrentUser,
	}), http.StatusCreated)
	return res
}

func UpdateComment(c *RequestContext) ResponseData {
	commentID, ok := pathParamInt(c, "id")
	if !ok {
		return RejectRequest(c, apperr.NotFound("comment not found"))
	}

	comment, err := agoradata.FetchComment(c, c.Conn, commentID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("comment not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch comment"))
	}

	if !auth.CalculatePermissions(comment.Comment.UserID, c.CurrentUser).Update {
		return RejectRequest(c, apperr.Permission("you do not have permission to edit this comment"))
	}

	type updateCommentInput struct {
		Content string `json:"content"`
	}
	var input updateCommentInput
	if err := c.ParseJson(&input); err != nil {
		return RejectRequest(c, err)
	}

	content := sanitize.CommentContent(input.Content)
	if strings.TrimSpace(content) == "" {
		return RejectRequest(c, apperr.Validation("content is required"))
	}

	updated, err := agoradata.UpdateComment(c, c.Conn, commentID, content)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to update comment"))
	}

	var res ResponseData
	res.WriteJson(CommentToJson(agoradata.CommentAndStuff{
		Comment: *updated,
		Author:  comment.Author,
	}), http.StatusOK)
	return res
}

func DeleteComment(c *RequestContext) ResponseData {
	commentID, ok := pathParamInt(c, "id")
	if !ok {
		return RejectRequest(c, apperr.NotFound("comment not found"))
	}

	comment, err := agoradata.FetchComment(c, c.Conn, commentID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("comment not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch comment"))
	}

	if !auth.CalculatePermissions(comment.Comment.UserID, c.CurrentUser).Delete {
		return RejectRequest(c, apperr.Permission("you do not have permission to delete this comment"))
	}

	replies, err := agoradata.CountReplies(c, c.Conn, commentID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to count replies"))
	}
	if replies > 0 {
		return RejectRequest(c, apperr.Conflict("comments with replies cannot be deleted"))
	}

	err = agoradata.DeleteComment(c, c.Conn, commentID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("comment not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to delete comment"))
	}

	return ResponseData{StatusCode: http.StatusNoContent}
}

func PostCommentStats(c *RequestContext) ResponseData {
	postID, ok := pathParamInt(c, "id")
	if !ok {
		return RejectRequest(c, apperr.NotFound("post not found"))
	}

	_, err := agoradata.FetchPost(c, c.Conn, postID, agoradata.PostsQuery{})
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return RejectRequest(c, apperr.NotFound("post not found"))
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch post"))
	}

	stats, err := agoradata.FetchCommentStats(c, c.Conn, []int{postID})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch comment stats"))
	}

	type postCommentStatsData struct {
		TotalComments int `json:"total_comments"`
		TodayComments int `json:"today_comments"`
		PostID        int `json:"post_id"`
	}

	var res ResponseData
	res.WriteJson(postCommentStatsData{
		TotalComments: stats.TotalComments,
		TodayComments: stats.TodayComments,
		PostID:        postID,
	}, http.StatusOK)
	return res
}

func CommentStats(c *RequestContext) ResponseData {
	stats, err := agoradata.FetchCommentStats(c, c.Conn, nil)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch comment stats"))
	}

	type commentStatsData struct {
		TotalComments int `json:"total_comments"`
		TodayComments int `json:"today_comments"`
	}

	var res ResponseData
	res.WriteJson(commentStatsData{
		TotalComments: stats.TotalComments,
		TodayComments: stats.TodayComments,
	}, http.StatusOK)
	return res
}
