// internal/app/features/unsubscribeall/handler.go
package unsubscribeall

import (
	uierrors "github.com/dalemusser/twfhub/internal/app/features/errors"
	"github.com/dalemusser/twfhub/internal/app/services/stack"
	"github.com/dalemusser/twfhub/internal/app/system/auth"
	"github.com/dalemusser/twfhub/internal/app/system/viewdata"
	"go.uber.org/zap"
)

// Handler removes every forum and discussion subscription of the current
// user after confirmation.
type Handler struct {
	St     *stack.Stack
	SM     *auth.SessionManager
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
	Render viewdata.Renderer
}

func NewHandler(st *stack.Stack, sm *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{St: st, SM: sm, ErrLog: errLog, Log: logger, Render: viewdata.TemplateRenderer()}
}
