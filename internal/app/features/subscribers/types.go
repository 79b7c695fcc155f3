// internal/app/features/subscribers/types.go
package subscribers

import (
	"github.com/dalemusser/twfhub/internal/app/system/groupscope"
	"github.com/dalemusser/twfhub/internal/app/system/viewdata"
	"github.com/dalemusser/twfhub/internal/domain/models"
)

type userRow struct {
	ID      string
	Name    string
	LoginID string
	Email   string
}

func rows(users []models.User) []userRow {
	out := make([]userRow, 0, len(users))
	for _, u := range users {
		out = append(out, userRow{ID: u.ID.Hex(), Name: u.FullName, LoginID: u.LoginID, Email: u.Email})
	}
	return out
}

type subscribersVM struct {
	viewdata.BaseVM

	ForumID    string
	ForumName  string
	CourseName string
	ForumURL   string

	Forced    bool
	CanManage bool
	Editing   bool

	GroupOptions []groupscope.Choice

	// overview
	Subscribers []userRow

	// selection form
	Existing  []userRow
	Potential []userRow
	Search    string
}
