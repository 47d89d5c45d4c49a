package website

import (
	"strconv"

	"git.agora.community/agora/agora/src/utils"
	"github.com/google/uuid"
)

// pathParamInt parses a numeric path parameter. The route regexes only match
// digits, so this can only fail on absurdly long numbers; callers should
// treat a failure as a 404.
func pathParamInt(c *RequestContext, name string) (int, bool) {
	value, err := strconv.Atoi(c.PathParams[name])
	if err != nil {
		return 0, false
	}
	return value, true
}

func pathParamUUID(c *RequestContext, name string) (uuid.UUID, bool) {
	value, err := uuid.Parse(c.PathParams[name])
	if err != nil {
		return uuid.UUID{}, false
	}
	return value, true
}

// parsePage parses a ?page= value, falling back to 1 for anything that is
// not a positive number. Use getPageInfo instead when an out-of-range page
// should redirect.
func parsePage(param string) int {
	page, err := strconv.Atoi(param)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// parseLimit parses a ?limit= value, falling back to def for anything that
// is not a positive number and clamping to max.
func parseLimit(param string, def, max int) int {
	limit, err := strconv.Atoi(param)
	if err != nil || limit < 1 {
		return def
	}
	return utils.Min(limit, max)
}

func parseBool(param string) bool {
	return param == "true" || param == "1" || param == "on"
}
