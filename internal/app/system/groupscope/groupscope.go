// internal/app/system/groupscope/groupscope.go
//
// Package groupscope works out the active group of a course module. A nil
// scope means "all participants".
package groupscope

import (
	"context"
	"net/http"

	"github.com/dalemusser/twfhub/internal/app/policy/capability"
	"github.com/dalemusser/twfhub/internal/app/system/auth"
	"github.com/dalemusser/twfhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AllParticipants is the "group" parameter value selecting no group.
const AllParticipants = "0"

// Normalize maps the zero ObjectID to a nil scope.
func Normalize(id primitive.ObjectID) *primitive.ObjectID {
	if id.IsZero() {
		return nil
	}
	return &id
}

// Options is everything Choose needs. Requested is the "group" query
// parameter ("" when absent); Stored is the value kept in the session.
type Options struct {
	Mode      string
	AccessAll bool
	MyGroups  []primitive.ObjectID
	Allowed   []primitive.ObjectID
	Requested string
	Stored    string
}

// Choose picks the active group and the value to persist in the session
// ("" means nothing to persist).
func Choose(o Options) (*primitive.ObjectID, string) {
	if o.Mode == models.GroupModeNone || o.Mode == "" {
		return nil, ""
	}
	seeAll := o.AccessAll || o.Mode == models.GroupModeVisible

	for _, candidate := range []string{o.Requested, o.Stored} {
		if candidate == "" {
			continue
		}
		if candidate == AllParticipants {
			if seeAll {
				return nil, AllParticipants
			}
			continue
		}
		id, err := primitive.ObjectIDFromHex(candidate)
		if err != nil {
			continue
		}
		if contains(o.Allowed, id) {
			return &id, id.Hex()
		}
	}

	if len(o.MyGroups) > 0 {
		id := o.MyGroups[0]
		return &id, id.Hex()
	}
	if seeAll {
		return nil, AllParticipants
	}
	return nil, ""
}

func contains(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// Groups lists the groups of a course.
type Groups interface {
	ListByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.CourseGroup, error)
}

// Memberships lists the groups a user belongs to in a course.
type Memberships interface {
	ListGroupIDsForUser(ctx context.Context, courseID, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// State is the resolved group context of a request.
type State struct {
	Mode       string
	Active     *primitive.ObjectID
	Selectable []models.CourseGroup
	// CanSeeAll is true when "all participants" may be chosen.
	CanSeeAll bool
}

// Resolver reads and persists the active group per course in the session.
type Resolver struct {
	sm          *auth.SessionManager
	groups      Groups
	memberships Memberships
	caps        capability.Checker
	log         *zap.Logger
}

func NewResolver(sm *auth.SessionManager, groups Groups, memberships Memberships, caps capability.Checker, logger *zap.Logger) *Resolver {
	return &Resolver{sm: sm, groups: groups, memberships: memberships, caps: caps, log: logger}
}

func sessionKey(courseID primitive.ObjectID) string {
	return "activegroup:" + courseID.Hex()
}

// Current resolves the active group for userID in cm, honouring a "group"
// query parameter and remembering the choice for the course.
func (res *Resolver) Current(w http.ResponseWriter, r *http.Request, userID primitive.ObjectID, cm models.CourseModule) (State, error) {
	st := State{Mode: cm.GroupMode}
	if cm.GroupMode == models.GroupModeNone || cm.GroupMode == "" {
		return st, nil
	}
	ctx := r.Context()

	accessAll, err := res.caps.HasCapability(ctx, userID, capability.AccessAllGroups,
		capability.Context{CourseID: cm.CourseID, ModuleID: cm.ID})
	if err != nil {
		return st, err
	}
	mine, err := res.memberships.ListGroupIDsForUser(ctx, cm.CourseID, userID)
	if err != nil {
		return st, err
	}
	all, err := res.groups.ListByCourse(ctx, cm.CourseID)
	if err != nil {
		return st, err
	}

	st.CanSeeAll = accessAll || cm.GroupMode == models.GroupModeVisible
	allowed := make([]primitive.ObjectID, 0, len(all))
	for _, g := range all {
		if st.CanSeeAll || contains(mine, g.ID) {
			allowed = append(allowed, g.ID)
			st.Selectable = append(st.Selectable, g)
		}
	}

	sess, _ := res.sm.GetSession(r)
	key := sessionKey(cm.CourseID)
	stored, _ := sess.Values[key].(string)

	active, persist := Choose(Options{
		Mode:      cm.GroupMode,
		AccessAll: accessAll,
		MyGroups:  mine,
		Allowed:   allowed,
		Requested: r.URL.Query().Get("group"),
		Stored:    stored,
	})
	st.Active = active

	if persist != "" && persist != stored {
		sess.Values[key] = persist
		if err := sess.Save(r, w); err != nil {
			res.log.Warn("save active group failed", zap.Error(err))
		}
	}
	return st, nil
}

// Choice is one entry of the group selector.
type Choice struct {
	Value    string
	Name     string
	Selected bool
}

// Choices lists what the group selector offers. It is empty when the
// module has no groups to pick from.
func (st State) Choices() []Choice {
	if len(st.Selectable) == 0 {
		return nil
	}
	var out []Choice
	if st.CanSeeAll {
		out = append(out, Choice{Value: AllParticipants, Name: "All participants", Selected: st.Active == nil})
	}
	for _, g := range st.Selectable {
		out = append(out, Choice{
			Value:    g.ID.Hex(),
			Name:     g.Name,
			Selected: st.Active != nil && *st.Active == g.ID,
		})
	}
	return out
}
