package website

import (
	"net/http"

	"git.agora.community/agora/agora/src/apperr"
)

func FourOhFour(c *RequestContext) ResponseData {
	var res ResponseData
	res.WriteJson(map[string]string{"error": "not found"}, http.StatusNotFound)
	return res
}

// RejectRequest turns a domain error into the response the client should
// see. Validation, auth, permission, not-found, and conflict errors carry
// messages that are safe to show and map to their own status codes;
// anything else is logged and reported as a generic 500.
func RejectRequest(c *RequestContext, err error) ResponseData {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		return c.ErrorResponse(status, err)
	}

	var res ResponseData
	res.WriteJson(map[string]string{"error": err.Error()}, status)
	return res
}
