package website

import (
	"errors"
	"net/http"
	"strings"

	"git.agora.community/agora/agora/src/agoradata"
	"git.agora.community/agora/agora/src/apperr"
	"git.agora.community/agora/agora/src/auth"
	"git.agora.community/agora/agora/src/config"
	"git.agora.community/agora/agora/src/db"
	"git.agora.community/agora/agora/src/oops"
	"git.agora.community/agora/agora/src/siteurl"
)

// The login page reads a failure reason out of this cookie. It is set by the
// login handler on a failed attempt and is intentionally short-lived and
// visible to scripts so the page can render the message.
const loginErrorCookieName = "login_error"

func newLoginErrorCookie(message string) *http.Cookie {
	return &http.Cookie{
		Name:  loginErrorCookieName,
		Value: message,

		Domain: config.Config.Auth.CookieDomain,
		Path:   "/",
		MaxAge: 10,

		Secure:   config.Config.Auth.CookieSecure,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	}
}

var deleteLoginErrorCookie = &http.Cookie{
	Name:   loginErrorCookieName,
	Path:   "/",
	MaxAge: -1,
}

// sessionIDForRequest returns the session id the client presented, or a
// fresh one if this client has no session yet.
func sessionIDForRequest(c *RequestContext) string {
	if c.CurrentSessionID != "" {
		return c.CurrentSessionID
	}
	return auth.NewSessionID()
}

/*
GetCSRFToken hands out the CSRF token for the client's session, creating the
session on first contact. Fetching it again for the same session returns the
same token, so pages can call this freely.
*/
func GetCSRFToken(sessions auth.SessionStore) Handler {
	return func(c *RequestContext) ResponseData {
		session, err := sessions.GetOrCreate(c, sessionIDForRequest(c))
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to get or create session"))
		}

		var res ResponseData
		res.SetCookie(auth.NewSessionCookie(session))
		res.WriteJson(map[string]string{"csrf_token": session.CSRFToken}, http.StatusOK)
		return res
	}
}

/*
LoginPage bootstraps the login form: it guarantees a session, returns the
CSRF token the form must submit, and surfaces any pending failure message
from the login_error cookie (which it expires) or ?message= param.
*/
func LoginPage(sessions auth.SessionStore) Handler {
	return func(c *RequestContext) ResponseData {
		session, err := sessions.GetOrCreate(c, sessionIDForRequest(c))
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to get or create session"))
		}

		var res ResponseData
		res.SetCookie(auth.NewSessionCookie(session))

		type loginPageData struct {
			CSRFToken string `json:"csrf_token"`
			Error     string `json:"error,omitempty"`
			Message   string `json:"message,omitempty"`
		}
		data := loginPageData{
			CSRFToken: session.CSRFToken,
			Message:   c.URL().Query().Get("message"),
		}
		if errCookie, err := c.Req.Cookie(loginErrorCookieName); err == nil {
			data.Error = errCookie.Value
			res.SetCookie(deleteLoginErrorCookie)
		}

		res.WriteJson(data, http.StatusOK)
		return res
	}
}

func Signup(c *RequestContext) ResponseData {
	form, err := c.GetFormValues()
	if err != nil {
		return RejectRequest(c, apperr.Validation("invalid request body"))
	}

	email := strings.ToLower(strings.TrimSpace(form.Get("email")))
	username := strings.TrimSpace(form.Get("username"))
	displayName := strings.TrimSpace(form.Get("display_name"))
	password := form.Get("password")
	passwordConfirm := form.Get("password_confirm")
	agreeTerms := form.Get("agree_terms")

	if agreeTerms != "on" {
		return RejectRequest(c, apperr.Validation("you must agree to the terms of service"))
	}
	if !auth.IsEmail(email) {
		return RejectRequest(c, apperr.Validation("invalid email address"))
	}
	if username == "" {
		return RejectRequest(c, apperr.Validation("username is required"))
	}
	if password != passwordConfirm {
		return RejectRequest(c, apperr.Validation("passwords do not match"))
	}
	if !auth.ValidatePassword(password) {
		return RejectRequest(c, apperr.Validation("password must be at least 10 characters and contain a letter, a number, and a special character"))
	}

	_, err = agoradata.FetchUserByEmail(c, c.Conn, email, agoradata.UsersQuery{IncludeDeleted: true})
	if err == nil {
		return RejectRequest(c, apperr.Conflict("a user with this email already exists"))
	} else if !errors.Is(err, db.NotFound) {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to check for existing email"))
	}

	_, err = agoradata.FetchUserByUsername(c, c.Conn, username, agoradata.UsersQuery{IncludeDeleted: true})
	if err == nil {
		return RejectRequest(c, apperr.Conflict("this username is already taken"))
	} else if !errors.Is(err, db.NotFound) {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to check for existing username"))
	}

	hashed := auth.HashPassword(password)
	_, err = agoradata.CreateUser(c, c.Conn, email, username, displayName, hashed.String())
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to create user"))
	}

	return c.Redirect(siteurl.BuildLoginWithMessage("account-created"), http.StatusFound)
}

func Login(c *RequestContext) ResponseData {
	form, err := c.GetFormValues()
	if err != nil {
		return RejectRequest(c, apperr.Validation("invalid request body"))
	}

	email := strings.ToLower(strings.TrimSpace(form.Get("email")))
	password := form.Get("password")

	// Failed attempts land back on the login page with the reason in a
	// short-lived cookie rather than in the URL.
	loginFailure := func(message string) ResponseData {
		res := c.Redirect(siteurl.BuildLogin(), http.StatusFound)
		res.SetCookie(newLoginErrorCookie(message))
		return res
	}

	user, err := agoradata.FetchUserByEmail(c, c.Conn, email, agoradata.UsersQuery{IncludeDeleted: true})
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return loginFailure("no account exists with this email")
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to look up user by email"))
	}

	hashed, err := auth.ParsePasswordString(user.Password)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to parse stored password"))
	}
	passwordsMatch, err := auth.CheckPassword(password, hashed)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to check password"))
	}
	if !passwordsMatch {
		return loginFailure("incorrect password")
	}

	if user.IsDeleted() {
		return loginFailure("this account has been deactivated")
	}

	// Old hashes get upgraded to the current parameters on successful login,
	// since this is the only time we have the plaintext in hand.
	if hashed.IsOutdated() {
		err := auth.UpdatePassword(c, c.Conn, user.Username, auth.HashPassword(password))
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to update user's password"))
		}
	}

	token, err := auth.IssueToken(user)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to issue access token"))
	}

	res := c.Redirect(siteurl.BuildHomepage(), http.StatusFound)
	res.SetCookie(auth.NewAccessTokenCookie(token))
	return res
}

func Logout(sessions auth.SessionStore) Handler {
	return func(c *RequestContext) ResponseData {
		if c.CurrentSessionID != "" {
			err := sessions.Delete(c, c.CurrentSessionID)
			if err != nil {
				// The cookies still get cleared; a stale session row only
				// lingers until the cleanup job sweeps it.
				c.Logger.Error().Err(err).Msg("failed to delete session on logout")
			}
		}

		res := c.Redirect(siteurl.BuildHomepage(), http.StatusFound)
		res.SetCookie(auth.DeleteAccessTokenCookie)
		res.SetCookie(auth.DeleteSessionCookie)
		return res
	}
}

func AuthMe(c *RequestContext) ResponseData {
	var res ResponseData
	res.WriteJson(UserToJson(c.CurrentUser), http.StatusOK)
	return res
}
