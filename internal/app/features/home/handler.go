package home

import (
	"net/http"

	uierrors "github.com/dalemusser/twfhub/internal/app/features/errors"
	"github.com/dalemusser/twfhub/internal/app/services/stack"
	"github.com/dalemusser/twfhub/internal/app/system/auth"
	"github.com/dalemusser/twfhub/internal/app/system/forumctx"
	"github.com/dalemusser/twfhub/internal/app/system/viewdata"
	"github.com/dalemusser/twfhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the home page.
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

type courseLink struct {
	Name string
	URL  string
}

type homeVM struct {
	viewdata.BaseVM
	Courses []courseLink
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeRoot lists the courses whose forums the user can reach. Admins see
// every course; anonymous visitors and guests get the welcome text only.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vm := homeVM{BaseVM: viewdata.NewBaseVM(w, r, h.SM, "Welcome", "/")}

	u, signedIn := auth.CurrentUser(r)
	if signedIn && !u.IsGuest() {
		var (
			courses []models.Course
			err     error
		)
		if u.IsAdmin() {
			courses, err = h.St.Courses.List(ctx)
		} else {
			id, idErr := forumctx.UserID(u)
			if idErr != nil {
				h.ErrLog.RenderDomainError(w, r, "session user", idErr, "/login")
				return
			}
			ids, listErr := h.St.Enrolments.ListCourseIDsByUser(ctx, id)
			if listErr != nil {
				h.ErrLog.LogServerError(w, r, "list enrolments failed", listErr, "A database error occurred.", "/")
				return
			}
			courses, err = h.St.Courses.ListByIDs(ctx, ids)
		}
		if err != nil {
			h.ErrLog.LogServerError(w, r, "list courses failed", err, "A database error occurred.", "/")
			return
		}
		for _, c := range courses {
			vm.Courses = append(vm.Courses, courseLink{Name: c.FullName, URL: forumctx.CourseURL(c.ID)})
		}
	}
	h.Render(w, r, "home", vm)
}
