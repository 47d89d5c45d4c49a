package apperr

type Code string

const (
	CodeUnknown        Code = "UNKNOWN"
	CodeValidation     Code = "VALIDATION"
	CodeAuthentication Code = "AUTHENTICATION"
	CodePermission     Code = "PERMISSION"
	CodeNotFound       Code = "NOT_FOUND"
	CodeConflict       Code = "CONFLICT"
	CodeInternal       Code = "INTERNAL"
)
