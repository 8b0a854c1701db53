// Package apperr defines the sentinel errors surfaced at the API boundary
// and their HTTP status mapping.
package apperr

import (
	"errors"
	"net/http"

	"github.com/rotisserie/eris"
)

var (
	// ErrInvalidIdentifier means the caller supplied a product reference
	// that no extraction rule matched. Client error.
	ErrInvalidIdentifier = eris.New("invalid product identifier")

	// ErrMissingCredential means an upstream API key is not configured.
	// Reported as a client error so the operator sees it immediately.
	ErrMissingCredential = eris.New("upstream api key not configured")

	// ErrNoRawData means analysis was requested before any raw reviews
	// were acquired for the product.
	ErrNoRawData = eris.New("no raw reviews found, run scraper first")

	// ErrInsufficientData means a comparison was requested but at least
	// one product has no processed reviews.
	ErrInsufficientData = eris.New("not enough processed reviews for both products")
)

// HTTPStatus maps an error to the status code the API returns for it.
// Identifier and credential problems are the caller's to fix; everything
// else is reported as an internal error.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidIdentifier), errors.Is(err, ErrMissingCredential):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
