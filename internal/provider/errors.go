package provider

import (
	"fmt"
	"net/http"

	"github.com/xonecas/symb/internal/core/agenterr"
)

// httpStatusToProviderError classifies an HTTP error response into the
// shared ProviderError taxonomy, shared by every wire-family adapter so
// each one doesn't reinvent this mapping.
func httpStatusToProviderError(status int, body string) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return agenterr.NewProviderError(agenterr.ProviderAuthentication, body)
	case http.StatusTooManyRequests:
		return agenterr.NewProviderError(agenterr.ProviderRateLimit, body)
	case http.StatusNotFound:
		return agenterr.NewProviderError(agenterr.ProviderModelNotFound, body)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return agenterr.NewProviderError(agenterr.ProviderInvalidRequest, body)
	case http.StatusRequestEntityTooLarge:
		return agenterr.NewProviderError(agenterr.ProviderContextWindowExceeded, body)
	default:
		if status >= 500 {
			return agenterr.NewProviderError(agenterr.ProviderServer, body)
		}
		return agenterr.NewProviderError(agenterr.ProviderInvalidRequest, fmt.Sprintf("status %d: %s", status, body))
	}
}
