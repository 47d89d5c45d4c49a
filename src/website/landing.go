package website

import (
	"net/http"

	"git.agora.community/agora/agora/src/agoradata"
	"git.agora.community/agora/agora/src/oops"
)

const landingPopularBoards = 3
const landingLatestPosts = 5

func Index(c *RequestContext) ResponseData {
	boards, err := agoradata.FetchBoardsWithStats(c, c.Conn, agoradata.BoardsQuery{
		OrderByPosts: true,
		Limit:        landingPopularBoards,
	})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch popular boards"))
	}

	latest, err := agoradata.FetchLatestPosts(c, c.Conn, landingLatestPosts)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch latest posts"))
	}

	popularBoards := make([]BoardWithStatsJson, len(boards))
	for i, b := range boards {
		popularBoards[i] = BoardWithStatsToJson(b)
	}

	type landingData struct {
		PopularBoards []BoardWithStatsJson `json:"popular_boards"`
		LatestPosts   []PostPreviewJson    `json:"latest_posts"`
	}

	var res ResponseData
	res.WriteJson(landingData{
		PopularBoards: popularBoards,
		LatestPosts:   PostPreviewsToJson(latest),
	}, http.StatusOK)
	return res
}

// Health is the load balancer's liveness probe. It deliberately does not
// touch the database; a db outage should show up as errors, not as the
// whole site getting pulled out of rotation.
func Health(c *RequestContext) ResponseData {
	var res ResponseData
	res.WriteJson(map[string]string{"status": "healthy"}, http.StatusOK)
	return res
}
