package agoradata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTruncated(t *testing.T) {
	assert.Equal(t, "short", truncated("short", 10))
	assert.Equal(t, "exactly10!", truncated("exactly10!", 10))
	assert.Equal(t, "toolongfor...", truncated("toolongforthis", 10))

	// Multibyte characters count as one, not as bytes.
	assert.Equal(t, "안녕하세요", truncated("안녕하세요", 5))
	assert.Equal(t, "안녕하...", truncated("안녕하세요", 3))
}

func TestLaterTime(t *testing.T) {
	earlier := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	later := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)

	assert.Nil(t, laterTime(nil, nil))
	assert.Equal(t, &earlier, laterTime(&earlier, nil))
	assert.Equal(t, &later, laterTime(nil, &later))
	assert.Equal(t, &later, laterTime(&earlier, &later))
	assert.Equal(t, &later, laterTime(&later, &earlier))
}
