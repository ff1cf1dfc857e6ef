package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/vortex-feed/internal/application"
	"github.com/oksasatya/vortex-feed/internal/infrastructure/remote"
	"github.com/oksasatya/vortex-feed/internal/infrastructure/wallet"
	"github.com/oksasatya/vortex-feed/pkg/response"
)

// writeError maps application and adapter errors onto the response envelope.
// Anything unrecognised is reported with fallback as a 500.
func writeError(c *gin.Context, err error, fallback string) {
	var verr *application.ValidationError
	if errors.As(err, &verr) {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", verr.Details)
		return
	}

	status := http.StatusInternalServerError
	msg := fallback
	switch {
	case errors.Is(err, application.ErrNotConnected), errors.Is(err, wallet.ErrLocked):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, application.ErrNotAuthor), errors.Is(err, wallet.ErrRejected):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, application.ErrPostNotFound), errors.Is(err, remote.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, application.ErrWalletNotReady):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, application.ErrProfileIncomplete), errors.Is(err, wallet.ErrNoKeypair):
		status, msg = http.StatusPreconditionFailed, err.Error()
	case errors.Is(err, application.ErrCaptchaFailed):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, application.ErrLoadFailed):
		status, msg = http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, wallet.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		status, msg = http.StatusGatewayTimeout, err.Error()
	}
	_ = c.Error(err)
	response.Error[any](c, status, msg, nil)
}
