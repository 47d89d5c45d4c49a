package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostContent(t *testing.T) {
	t.Run("scripts are stripped", func(t *testing.T) {
		html := PostContent(`<p>hello</p><script>alert("xss")</script>`)
		t.Log(html)
		assert.Contains(t, html, "<p>hello</p>")
		assert.NotContains(t, html, "<script")
		assert.NotContains(t, html, "alert")
	})
	t.Run("formatting and lists survive", func(t *testing.T) {
		html := PostContent(`<p><strong>bold</strong> and <em>italic</em></p><ul><li>one</li><li>two</li></ul><blockquote>quoth</blockquote>`)
		t.Log(html)
		assert.Contains(t, html, "<strong>bold</strong>")
		assert.Contains(t, html, "<em>italic</em>")
		assert.Contains(t, html, "<li>one</li>")
		assert.Contains(t, html, "<blockquote>quoth</blockquote>")
	})
	t.Run("images keep their attributes", func(t *testing.T) {
		html := PostContent(`<img src="https://example.com/cat.png" alt="a cat" width="320" height="240" onerror="alert(1)">`)
		t.Log(html)
		assert.Contains(t, html, `src="https://example.com/cat.png"`)
		assert.Contains(t, html, `alt="a cat"`)
		assert.Contains(t, html, `width="320"`)
		assert.NotContains(t, html, "onerror")
	})
	t.Run("data URI images are allowed", func(t *testing.T) {
		html := PostContent(`<img src="data:image/png;base64,iVBORw0KGgo=">`)
		t.Log(html)
		assert.Contains(t, html, "data:image/png;base64")
	})
	t.Run("javascript URLs are not", func(t *testing.T) {
		html := PostContent(`<img src="javascript:alert(1)">`)
		t.Log(html)
		assert.NotContains(t, html, "javascript")
	})
	t.Run("unknown tags are unwrapped", func(t *testing.T) {
		html := PostContent(`<div><p>content</p></div><iframe src="https://evil.example"></iframe>`)
		t.Log(html)
		assert.Contains(t, html, "<p>content</p>")
		assert.NotContains(t, html, "<div")
		assert.NotContains(t, html, "<iframe")
	})
}

func TestCommentContent(t *testing.T) {
	t.Run("basic formatting only", func(t *testing.T) {
		html := CommentContent(`<p><strong>yes</strong></p><img src="https://example.com/cat.png"><script>alert(1)</script>`)
		t.Log(html)
		assert.Contains(t, html, "<strong>yes</strong>")
		assert.NotContains(t, html, "<img")
		assert.NotContains(t, html, "<script")
	})
}

func TestPlainText(t *testing.T) {
	t.Run("all tags go away", func(t *testing.T) {
		assert.Equal(t, "My very normal title", PlainText(`<b>My</b> very <marquee>normal</marquee> title`))
	})
	t.Run("whitespace is trimmed", func(t *testing.T) {
		assert.Equal(t, "hi", PlainText("  hi \n"))
	})
}
