package auth

import (
	"fmt"
	"net/http"

	"github.com/goliatone/go-errors"
)

// Client-facing titles. Kept stable, clients key off them.
const (
	titleAccountLocked = "Your account has been locked. Please recover your password or contact administration"
	titleBadCreds      = "Username / password incorrect. Please try again"
	titleDisabled      = "Your account has been disabled. If this is an error, please contact administration"
	titleReproofFailed = "Authentication failed. Please verify your current password"
	titleNotFound      = "Identifier %s was not found"
	titleExists        = "Identifier %s is already used"
	titleUnknownRole   = "Role %s is not recognized"
	titleMethod        = "This request method is not allowed on this endpoint. Please send a '%s' request"
	titleBadRequest    = "The request is invalid"
	titleForbidden     = "You do not have permission to perform this action"
	titleServerFault   = "An error occurred while processing the request"
)

// DomainResponse is the envelope every failure is reduced to at the
// boundary: mapped status, templated title, and the raw failure detail.
type DomainResponse struct {
	Status  int    `json:"status"`
	Reason  string `json:"reason"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func newDomainResponse(status int, title, message string) *DomainResponse {
	return &DomainResponse{
		Status:  status,
		Reason:  http.StatusText(status),
		Title:   title,
		Message: message,
	}
}

// MapError classifies any failure raised by the kernel into its
// envelope. Errors without a taxonomy kind fall through to their
// category, and anything unclassified becomes a server fault; nothing
// is ever swallowed, the original detail always travels in Message.
func MapError(err error) *DomainResponse {
	if err == nil {
		return newDomainResponse(http.StatusInternalServerError, titleServerFault, "")
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return newDomainResponse(http.StatusInternalServerError, titleServerFault, err.Error())
	}

	switch richErr.TextCode {
	case TextCodeUsernameExists, TextCodeEmailExists:
		return newDomainResponse(http.StatusConflict,
			fmt.Sprintf(titleExists, metadataString(richErr, "identifier")), richErr.Message)
	case TextCodeAccountNotFound:
		return newDomainResponse(http.StatusNotFound,
			fmt.Sprintf(titleNotFound, metadataString(richErr, "identifier")), richErr.Message)
	case TextCodeUnknownRole:
		return newDomainResponse(http.StatusBadRequest,
			fmt.Sprintf(titleUnknownRole, metadataString(richErr, "role")), richErr.Message)
	case TextCodeInvalidCredentials:
		return newDomainResponse(http.StatusBadRequest, titleBadCreds, richErr.Message)
	case TextCodeAccountLocked:
		return newDomainResponse(http.StatusUnauthorized, titleAccountLocked, richErr.Message)
	case TextCodeAccountDisabled:
		return newDomainResponse(http.StatusBadRequest, titleDisabled, richErr.Message)
	case TextCodeAuthenticationFailed:
		return newDomainResponse(http.StatusUnauthorized, titleReproofFailed, richErr.Message)
	}

	switch richErr.Category {
	case errors.CategoryValidation, errors.CategoryBadInput:
		return newDomainResponse(http.StatusBadRequest, titleBadRequest, richErr.Message)
	case errors.CategoryNotFound:
		return newDomainResponse(http.StatusNotFound,
			fmt.Sprintf(titleNotFound, metadataString(richErr, "identifier")), richErr.Message)
	case errors.CategoryConflict:
		return newDomainResponse(http.StatusConflict,
			fmt.Sprintf(titleExists, metadataString(richErr, "identifier")), richErr.Message)
	case errors.CategoryAuth:
		return newDomainResponse(http.StatusUnauthorized, titleBadCreds, richErr.Message)
	case errors.CategoryAuthz:
		return newDomainResponse(http.StatusForbidden, titleForbidden, richErr.Message)
	case errors.CategoryRateLimit:
		return newDomainResponse(http.StatusTooManyRequests, titleAccountLocked, richErr.Message)
	default:
		return newDomainResponse(http.StatusInternalServerError, titleServerFault, richErr.Message)
	}
}

// MethodNotAllowed builds the envelope for unsupported request methods,
// naming a method the endpoint does accept.
func MethodNotAllowed(supportedMethod, detail string) *DomainResponse {
	return newDomainResponse(http.StatusMethodNotAllowed,
		fmt.Sprintf(titleMethod, supportedMethod), detail)
}

func metadataString(err *errors.Error, key string) string {
	if err.Metadata == nil {
		return ""
	}
	if val, ok := err.Metadata[key].(string); ok {
		return val
	}
	return ""
}
