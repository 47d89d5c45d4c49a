package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Used for the body of a post. Keeps basic formatting, lists,
// blockquotes, and images (data URIs included, so pasted screenshots
// survive).
var postContent = newPostContentPolicy()

// Used for the body of a comment. Formatting only, no images.
var commentContent = newCommentContentPolicy()

// Used for titles and anything else that must end up as plain text.
var plainText = bluemonday.StrictPolicy()

func PostContent(content string) string {
	return postContent.Sanitize(content)
}

func CommentContent(content string) string {
	return commentContent.Sanitize(content)
}

func PlainText(s string) string {
	return strings.TrimSpace(plainText.Sanitize(s))
}

func newPostContentPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em", "u", "ol", "ul", "li", "blockquote", "img")
	p.AllowAttrs("src", "alt", "width", "height").OnElements("img")
	p.AllowURLSchemes("http", "https", "data")
	return p
}

func newCommentContentPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em")
	return p
}
