// internal/app/features/subscribers/handler.go
package subscribers

import (
	uierrors "github.com/dalemusser/twfhub/internal/app/features/errors"
	"github.com/dalemusser/twfhub/internal/app/services/stack"
	"github.com/dalemusser/twfhub/internal/app/system/auditlog"
	"github.com/dalemusser/twfhub/internal/app/system/auth"
	"github.com/dalemusser/twfhub/internal/app/system/groupscope"
	"github.com/dalemusser/twfhub/internal/app/system/viewdata"
	"go.uber.org/zap"
)

// Handler lists a forum's subscribers and lets managers edit the list.
type Handler struct {
	St     *stack.Stack
	Groups *groupscope.Resolver
	SM     *auth.SessionManager
	Audit  *auditlog.Logger
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
	Render viewdata.Renderer
}

func NewHandler(st *stack.Stack, groups *groupscope.Resolver, sm *auth.SessionManager, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		St:     st,
		Groups: groups,
		SM:     sm,
		Audit:  audit,
		ErrLog: errLog,
		Log:    logger,
		Render: viewdata.TemplateRenderer(),
	}
}
