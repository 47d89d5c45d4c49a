package website

import (
	"strconv"

	"git.agora.community/agora/agora/src/utils"
)

func getPageInfo(
	pageParam string,
	totalItems int,
	itemsPerPage int,
) (
	page int,
	totalPages int,
	ok bool,
) {
	totalPages = utils.NumPages(totalItems, itemsPerPage)
	ok = true

	page = 1
	if pageParam != "" {
		if pageParsed, err := strconv.Atoi(pageParam); err == nil {
			page = pageParsed
		} else {
			return 0, 0, false
		}
	}
	if page < 1 || totalPages < page {
		return 0, 0, false
	}

	return
}
