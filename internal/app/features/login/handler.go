// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	uierrors "github.com/dalemusser/twfhub/internal/app/features/errors"
	userstore "github.com/dalemusser/twfhub/internal/app/store/users"
	"github.com/dalemusser/twfhub/internal/app/system/auditlog"
	"github.com/dalemusser/twfhub/internal/app/system/auth"
	"github.com/dalemusser/twfhub/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// GuestLoginID is the login of the shared guest account.
const GuestLoginID = "guest"

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
	Render     viewdata.Renderer
}

func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	audit *auditlog.Logger,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		SessionMgr: sessionMgr,
		AuditLog:   audit,
		ErrLog:     errLog,
		Log:        logger,
		Render:     viewdata.TemplateRenderer(),
	}
}

type loginFormData struct {
	viewdata.BaseVM

	Error     string
	LoginID   string
	ReturnURL string
}
