// internal/app/features/forumview/handler.go
package forumview

import (
	uierrors "github.com/dalemusser/twfhub/internal/app/features/errors"
	"github.com/dalemusser/twfhub/internal/app/services/stack"
	"github.com/dalemusser/twfhub/internal/app/system/auth"
	"github.com/dalemusser/twfhub/internal/app/system/groupscope"
	"github.com/dalemusser/twfhub/internal/app/system/viewdata"
	"go.uber.org/zap"
)

// Handler renders the course forum index and the discussion list of a
// forum, the pages read tracking actions return to.
type Handler struct {
	St     *stack.Stack
	Groups *groupscope.Resolver
	SM     *auth.SessionManager
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
	Render viewdata.Renderer
}

func NewHandler(st *stack.Stack, groups *groupscope.Resolver, sm *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		St:     st,
		Groups: groups,
		SM:     sm,
		ErrLog: errLog,
		Log:    logger,
		Render: viewdata.TemplateRenderer(),
	}
}
