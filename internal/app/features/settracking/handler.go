// internal/app/features/settracking/handler.go
package settracking

import (
	uierrors "github.com/dalemusser/twfhub/internal/app/features/errors"
	"github.com/dalemusser/twfhub/internal/app/services/stack"
	"github.com/dalemusser/twfhub/internal/app/system/auth"
	"github.com/dalemusser/twfhub/internal/app/system/viewdata"
	"go.uber.org/zap"
)

// Handler toggles read tracking of one forum for the current user.
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
