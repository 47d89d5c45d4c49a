package website

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"git.agora.community/agora/agora/src/agoradata"
	"git.agora.community/agora/agora/src/apperr"
	"git.agora.community/agora/agora/src/auth"
	"git.agora.community/agora/agora/src/db"
	"git.agora.community/agora/agora/src/logging"
	"git.agora.community/agora/agora/src/oops"
	"git.agora.community/agora/agora/src/perf"
	"git.agora.community/agora/agora/src/utils"
	"github.com/jackc/pgx/v5/pgxpool"
)

func panicCatcherMiddleware(h Handler) Handler {
	return func(c *RequestContext) (res ResponseData) {
		defer func() {
			if recovered := recover(); recovered != nil {
				maybeError, ok := recovered.(*error)
				var err error
				if ok {
					err = *maybeError
				} else {
					err = oops.New(nil, fmt.Sprintf("Recovered from panic with value: %v", recovered))
				}
				res = c.ErrorResponse(http.StatusInternalServerError, err)
			}
		}()

		return h(c)
	}
}

func trackRequestPerf(perfCollector *perf.PerfCollector) func(Handler) Handler {
	return func(h Handler) Handler {
		return func(c *RequestContext) ResponseData {
			c.Perf = perf.MakeNewRequestPerf(c.Route, c.Req.Method, c.Req.URL.Path)
			c.PerfCollector = perfCollector
			defer func() {
				c.Perf.EndRequest()
				log := logging.Info()
				blockStack := make([]time.Time, 0)
				for i, block := range c.Perf.Blocks {
					for len(blockStack) > 0 && block.End.After(blockStack[len(blockStack)-1]) {
						blockStack = blockStack[:len(blockStack)-1]
					}
					log.Str(fmt.Sprintf("[%4.d] At %9.2fms", i, c.Perf.MsFromStart(&block)), fmt.Sprintf("%*.s[%s] %s (%.4fms)", len(blockStack)*2, "", block.Category, block.Description, block.DurationMs()))
					blockStack = append(blockStack, block.End)
				}
				log.Msg(fmt.Sprintf("Served [%s] %s in %.4fms", c.Perf.Method, c.Perf.Path, float64(c.Perf.End.Sub(c.Perf.Start).Nanoseconds())/1000/1000))
				perfCollector.SubmitRun(c.Perf)
			}()

			return h(c)
		}
	}
}

func setDBConn(conn *pgxpool.Pool) Middleware {
	return func(h Handler) Handler {
		return func(c *RequestContext) ResponseData {
			c.Conn = conn
			return h(c)
		}
	}
}

// currentUserMiddleware resolves the access token cookie to a user on every
// request. It never rejects anything; it records why resolution failed so
// needsAuth and friends can report it if the route actually requires a user.
func currentUserMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		if sessionCookie, err := c.Req.Cookie(auth.SessionCookieName); err == nil {
			c.CurrentSessionID = sessionCookie.Value
		}

		tokenCookie, err := c.Req.Cookie(auth.AccessTokenCookieName)
		if err != nil {
			c.AuthError = apperr.Authentication("Unauthorized: No token provided")
			return h(c)
		}

		claims, ok := auth.VerifyToken(tokenCookie.Value)
		if !ok {
			c.AuthError = apperr.Authentication("Invalid token")
			return h(c)
		}

		user, err := agoradata.FetchUser(c, c.Conn, claims.UserID, agoradata.UsersQuery{})
		if err != nil {
			if errors.Is(err, db.NotFound) {
				// Also covers soft-deleted accounts; FetchUser excludes them.
				c.AuthError = apperr.Authentication("User not found")
				return h(c)
			}
			return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch current user"))
		}

		c.CurrentUser = user
		return h(c)
	}
}

func needsAuth(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		if c.CurrentUser == nil {
			err := c.AuthError
			if err == nil {
				err = apperr.Authentication("Unauthorized: No token provided")
			}
			return RejectRequest(c, err)
		}

		return h(c)
	}
}

func adminsOnly(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		if c.CurrentUser == nil {
			err := c.AuthError
			if err == nil {
				err = apperr.Authentication("Unauthorized: No token provided")
			}
			return RejectRequest(c, err)
		}
		if !c.CurrentUser.IsAdmin {
			return RejectRequest(c, apperr.Permission("admin privileges required"))
		}

		return h(c)
	}
}

func csrfMiddleware(sessions auth.SessionStore) Middleware {
	// CSRF mitigation actions per the OWASP cheat sheet:
	// https://cheatsheetseries.owasp.org/cheatsheets/Cross-Site_Request_Forgery_Prevention_Cheat_Sheet.html
	return func(h Handler) Handler {
		return func(c *RequestContext) ResponseData {
			if c.CurrentSessionID == "" {
				return RejectRequest(c, apperr.Permission("CSRF: Missing session"))
			}

			csrfToken := c.Req.Header.Get(auth.CSRFHeaderName)
			if csrfToken == "" {
				// Plain HTML forms cannot set headers. Only fall back to the
				// form field when no header was sent, so JSON bodies are
				// never consumed here.
				c.Req.ParseMultipartForm(100 * 1024 * 1024)
				csrfToken = c.Req.Form.Get(auth.CSRFFieldName)
			}
			if csrfToken == "" {
				return RejectRequest(c, apperr.Permission("CSRF: Missing token"))
			}

			ok, err := sessions.Verify(c, c.CurrentSessionID, csrfToken)
			if err != nil {
				return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to verify CSRF token"))
			}
			if !ok {
				c.Logger.Warn().Str("session", c.CurrentSessionID).Msg("request failed CSRF validation - potential attack?")
				return RejectRequest(c, apperr.Permission("CSRF: Invalid token"))
			}

			return h(c)
		}
	}
}

// securityTimerMiddleware pads the response time to at least `duration`, plus
// up to 10% of jitter, so timing does not reveal whether an account exists or
// how far a login attempt got.
func securityTimerMiddleware(duration time.Duration, h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		additionalDuration := time.Duration(rand.Int63n(utils.Max(1, int64(duration)/10)))
		timer := time.NewTimer(duration + additionalDuration)
		res := h(c)
		select {
		case <-c.Done():
		case <-timer.C:
		}
		return res
	}
}

func logContextErrors(c *RequestContext, errs ...error) {
	for _, err := range errs {
		c.Logger.Error().Timestamp().Stack().Str("Requested", c.FullUrl()).Err(err).Msg("error occurred during request")
	}
}

func logContextErrorsMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		res := h(c)
		logContextErrors(c, res.Errors...)
		return res
	}
}
