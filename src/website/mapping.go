package website

import (
	"time"

	"git.agora.community/agora/agora/src/agoradata"
	"git.agora.community/agora/agora/src/auth"
	"git.agora.community/agora/agora/src/models"
	"github.com/google/uuid"
)

// The JSON shapes the site serves. Handlers build these from models instead
// of marshaling models directly so that renaming a db column never silently
// changes the public payloads.

type UserJson struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
}

func UserToJson(u *models.User) UserJson {
	return UserJson{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		IsAdmin:     u.IsAdmin,
		CreatedAt:   u.CreatedAt,
	}
}

type AdminUserJson struct {
	UserJson
	DeletedAt *time.Time `json:"deleted_at"`
	IsDeleted bool       `json:"is_deleted"`
	Role      string     `json:"role"`

	PostsCount    int        `json:"posts_count"`
	CommentsCount int        `json:"comments_count"`
	LastActivity  *time.Time `json:"last_activity"`
}

func AdminUserToJson(u agoradata.UserAndStuff) AdminUserJson {
	return AdminUserJson{
		UserJson:      UserToJson(&u.User),
		DeletedAt:     u.User.DeletedAt,
		IsDeleted:     u.User.IsDeleted(),
		Role:          u.User.Role(),
		PostsCount:    u.PostsCount,
		CommentsCount: u.CommentsCount,
		LastActivity:  u.LastActivity,
	}
}

type BoardJson struct {
	ID              int                    `json:"id"`
	Name            string                 `json:"name"`
	Slug            string                 `json:"slug"`
	Description     string                 `json:"description"`
	WritePermission models.WritePermission `json:"write_permission"`
	CreatedAt       time.Time              `json:"created_at"`
}

func BoardToJson(b *models.Board) BoardJson {
	return BoardJson{
		ID:              b.ID,
		Name:            b.Name,
		Slug:            b.Slug,
		Description:     b.Description,
		WritePermission: b.WritePermission,
		CreatedAt:       b.CreatedAt,
	}
}

type BoardWithStatsJson struct {
	BoardJson
	PostCount    int             `json:"post_count"`
	CommentCount int             `json:"comment_count"`
	LatestPost   *LatestPostJson `json:"latest_post"`
}

type LatestPostJson struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

func BoardWithStatsToJson(b agoradata.BoardAndStuff) BoardWithStatsJson {
	result := BoardWithStatsJson{
		BoardJson:    BoardToJson(&b.Board),
		PostCount:    b.PostCount,
		CommentCount: b.CommentCount,
	}
	if b.LatestPost != nil {
		result.LatestPost = &LatestPostJson{
			ID:         b.LatestPost.ID,
			Title:      b.LatestPost.Title,
			AuthorName: b.LatestPost.AuthorName,
			CreatedAt:  b.LatestPost.CreatedAt,
		}
	}
	return result
}

type PostJson struct {
	ID           int       `json:"id"`
	BoardID      int       `json:"board_id"`
	BoardName    string    `json:"board_name"`
	BoardSlug    string    `json:"board_slug"`
	UserID       uuid.UUID `json:"user_id"`
	AuthorName   string    `json:"author_name"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	ViewCount    int       `json:"view_count"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func PostToJson(p agoradata.PostAndStuff) PostJson {
	return PostJson{
		ID:           p.Post.ID,
		BoardID:      p.Post.BoardID,
		BoardName:    p.Board.Name,
		BoardSlug:    p.Board.Slug,
		UserID:       p.Post.UserID,
		AuthorName:   p.Author.BestName(),
		Title:        p.Post.Title,
		Content:      p.Post.Content,
		ViewCount:    p.Post.ViewCount,
		CommentCount: p.CommentCount,
		CreatedAt:    p.Post.CreatedAt,
		UpdatedAt:    p.Post.UpdatedAt,
	}
}

func PostsToJson(posts []agoradata.PostAndStuff) []PostJson {
	result := make([]PostJson, len(posts))
	for i, p := range posts {
		result[i] = PostToJson(p)
	}
	return result
}

type PostPreviewJson struct {
	ID             int       `json:"id"`
	Title          string    `json:"title"`
	ContentPreview string    `json:"content_preview"`
	ViewCount      int       `json:"view_count"`
	CommentCount   int       `json:"comment_count"`
	BoardName      string    `json:"board_name"`
	BoardSlug      string    `json:"board_slug"`
	AuthorName     string    `json:"author_name"`
	CreatedAt      time.Time `json:"created_at"`
}

func PostPreviewsToJson(previews []agoradata.PostPreview) []PostPreviewJson {
	result := make([]PostPreviewJson, len(previews))
	for i, p := range previews {
		result[i] = PostPreviewJson{
			ID:             p.ID,
			Title:          p.Title,
			ContentPreview: p.ContentPreview,
			ViewCount:      p.ViewCount,
			CommentCount:   p.CommentCount,
			BoardName:      p.BoardName,
			BoardSlug:      p.BoardSlug,
			AuthorName:     p.AuthorName,
			CreatedAt:      p.CreatedAt,
		}
	}
	return result
}

type CommentJson struct {
	ID         int       `json:"id"`
	PostID     int       `json:"post_id"`
	ParentID   *int      `json:"parent_id"`
	UserID     uuid.UUID `json:"user_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func CommentToJson(c agoradata.CommentAndStuff) CommentJson {
	return CommentJson{
		ID:         c.Comment.ID,
		PostID:     c.Comment.PostID,
		ParentID:   c.Comment.ParentID,
		UserID:     c.Comment.UserID,
		AuthorName: c.Author.BestName(),
		Content:    c.Comment.Content,
		CreatedAt:  c.Comment.CreatedAt,
		UpdatedAt:  c.Comment.UpdatedAt,
	}
}

// A comment as it appears in a post's comment section: the comment itself,
// what the current user may do to it, and (for top-level comments) its
// replies.
type CommentWithPermissionsJson struct {
	CommentJson
	Permissions auth.Permissions `json:"permissions"`
}

type CommentTreeNodeJson struct {
	CommentWithPermissionsJson
	Replies []CommentWithPermissionsJson `json:"replies"`
}

func CommentTreeToJson(tree []agoradata.CommentNode, actor *models.User) []CommentTreeNodeJson {
	result := make([]CommentTreeNodeJson, len(tree))
	for i, node := range tree {
		jsonNode := CommentTreeNodeJson{
			CommentWithPermissionsJson: CommentWithPermissionsJson{
				CommentJson: CommentToJson(node.CommentAndStuff),
				Permissions: auth.CalculatePermissions(node.Comment.UserID, actor),
			},
			Replies: make([]CommentWithPermissionsJson, len(node.Replies)),
		}
		for j, reply := range node.Replies {
			jsonNode.Replies[j] = CommentWithPermissionsJson{
				CommentJson: CommentToJson(reply),
				Permissions: auth.CalculatePermissions(reply.Comment.UserID, actor),
			}
		}
		result[i] = jsonNode
	}
	return result
}

type RecentPostJson struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

func RecentPostsToJson(posts []agoradata.RecentPostInfo) []RecentPostJson {
	result := make([]RecentPostJson, len(posts))
	for i, p := range posts {
		result[i] = RecentPostJson{
			ID:        p.ID,
			Title:     p.Title,
			CreatedAt: p.CreatedAt,
		}
	}
	return result
}

type RecentCommentJson struct {
	ID             int       `json:"id"`
	ContentPreview string    `json:"content_preview"`
	CreatedAt      time.Time `json:"created_at"`
	IsReply        bool      `json:"is_reply"`
}

func RecentCommentsToJson(comments []agoradata.RecentCommentInfo) []RecentCommentJson {
	result := make([]RecentCommentJson, len(comments))
	for i, c := range comments {
		result[i] = RecentCommentJson{
			ID:             c.ID,
			ContentPreview: c.ContentPreview,
			CreatedAt:      c.CreatedAt,
			IsReply:        c.IsReply,
		}
	}
	return result
}

// Pagination as the admin console expects it.
type PaginationJson struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	TotalCount  int  `json:"total_count"`
	PageSize    int  `json:"page_size"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
}

func MakePaginationJson(page, totalPages, totalCount, pageSize int) PaginationJson {
	return PaginationJson{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  totalCount,
		PageSize:    pageSize,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}
