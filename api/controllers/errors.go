package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/votaseguro/election-ledger/api/models"
	"github.com/votaseguro/election-ledger/auth"
	"github.com/votaseguro/election-ledger/chain"
	"github.com/votaseguro/election-ledger/ledger"
	"github.com/votaseguro/election-ledger/logging"
	"github.com/votaseguro/election-ledger/storage"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInvalidCategory),
		errors.Is(err, ledger.ErrCategoryMismatch),
		errors.Is(err, ledger.ErrInvalidWallet),
		errors.Is(err, ledger.ErrNegativeTokens),
		errors.Is(err, ledger.ErrCloseInPast),
		errors.Is(err, ledger.ErrMissingField),
		errors.Is(err, storage.ErrTokensBelowUsed):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, ledger.ErrNotRegistered):
		return http.StatusUnauthorized
	case errors.Is(err, ledger.ErrUserInactive):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrAlreadyExists),
		errors.Is(err, storage.ErrAlreadyVoted),
		errors.Is(err, storage.ErrNoTokensRemaining),
		errors.Is(err, ledger.ErrElectionClosed):
		return http.StatusConflict
	case errors.Is(err, chain.ErrChainDisabled):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// respondError logs with the area tag and writes the mapped status.
func respondError(g *gin.Context, area string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.Log.Errorf("%s: %s %s failed: %v", area, g.Request.Method, g.Request.URL.Path, err)
	} else {
		logging.Log.Warnf("%s: %s %s rejected: %v", area, g.Request.Method, g.Request.URL.Path, err)
	}
	g.JSON(status, models.ErrorResponse{Error: err.Error()})
}
