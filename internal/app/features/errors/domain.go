// internal/app/features/errors/domain.go
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/twfhub/internal/domain/twferr"
)

// Messages shown for the forum error taxonomy.
const (
	MsgNotFound           = "The forum, course or discussion you asked for does not exist."
	MsgUnauthorized       = "You do not have permission to do that in this forum."
	MsgInvalidAction      = "Choose exactly one action: subscribe or unsubscribe."
	MsgTrackingDisallowed = "Read tracking cannot be changed for this forum."
	MsgSubscription       = "Your subscription could not be changed. Please try again."
)

// RenderDomainError maps a service error onto its page. Anything outside
// the twferr taxonomy is logged as a server error under logMsg.
func (l *ErrorLogger) RenderDomainError(w http.ResponseWriter, r *http.Request, logMsg string, err error, backURL string) {
	switch {
	case stderrors.Is(err, twferr.ErrNotFound):
		RenderNotFound(w, r, MsgNotFound, backURL)
	case stderrors.Is(err, twferr.ErrUnauthorized):
		RenderForbidden(w, r, MsgUnauthorized, backURL)
	case stderrors.Is(err, twferr.ErrInvalidAction):
		RenderBadRequest(w, r, MsgInvalidAction, backURL)
	case stderrors.Is(err, twferr.ErrTrackingDisallowed):
		RenderError(w, r, MsgTrackingDisallowed, backURL)
	case stderrors.Is(err, twferr.ErrSubscription):
		l.log.Warn(logMsg, l.fields(r, err)...)
		RenderError(w, r, MsgSubscription, backURL)
	default:
		l.LogServerError(w, r, logMsg, err, "The forum action could not be completed.", backURL)
	}
}
