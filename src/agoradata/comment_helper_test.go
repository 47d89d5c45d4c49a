package agoradata

import (
	"testing"

	"git.agora.community/agora/agora/src/models"
	"github.com/stretchr/testify/assert"
)

func makeComment(id int, parentID *int) CommentAndStuff {
	return CommentAndStuff{
		Comment: models.Comment{
			ID:       id,
			ParentID: parentID,
		},
	}
}

func parent(id int) *int {
	return &id
}

func TestBuildCommentTree(t *testing.T) {
	t.Run("replies nest under their parent", func(t *testing.T) {
		tree := BuildCommentTree([]CommentAndStuff{
			makeComment(1, nil),
			makeComment(2, parent(1)),
			makeComment(3, nil),
		})

		assert.Len(t, tree, 2)
		assert.Equal(t, 1, tree[0].Comment.ID)
		assert.Len(t, tree[0].Replies, 1)
		assert.Equal(t, 2, tree[0].Replies[0].Comment.ID)
		assert.Equal(t, 3, tree[1].Comment.ID)
		assert.NotNil(t, tree[1].Replies)
		assert.Len(t, tree[1].Replies, 0)
	})

	t.Run("input order is preserved", func(t *testing.T) {
		tree := BuildCommentTree([]CommentAndStuff{
			makeComment(10, nil),
			makeComment(11, parent(20)),
			makeComment(20, nil),
			makeComment(12, parent(10)),
			makeComment(13, parent(10)),
		})

		assert.Len(t, tree, 2)
		assert.Equal(t, 10, tree[0].Comment.ID)
		assert.Equal(t, 20, tree[1].Comment.ID)
		if assert.Len(t, tree[0].Replies, 2) {
			assert.Equal(t, 12, tree[0].Replies[0].Comment.ID)
			assert.Equal(t, 13, tree[0].Replies[1].Comment.ID)
		}
		if assert.Len(t, tree[1].Replies, 1) {
			assert.Equal(t, 11, tree[1].Replies[0].Comment.ID)
		}
	})

	t.Run("replies to replies are dropped", func(t *testing.T) {
		tree := BuildCommentTree([]CommentAndStuff{
			makeComment(1, nil),
			makeComment(2, parent(1)),
			makeComment(3, parent(2)),
		})

		assert.Len(t, tree, 1)
		assert.Len(t, tree[0].Replies, 1)
		assert.Equal(t, 2, tree[0].Replies[0].Comment.ID)
	})

	t.Run("orphaned replies are dropped", func(t *testing.T) {
		tree := BuildCommentTree([]CommentAndStuff{
			makeComment(1, nil),
			makeComment(2, parent(999)),
		})

		assert.Len(t, tree, 1)
		assert.Len(t, tree[0].Replies, 0)
	})

	t.Run("no comments, no tree", func(t *testing.T) {
		tree := BuildCommentTree(nil)

		assert.NotNil(t, tree)
		assert.Len(t, tree, 0)
	})
}
