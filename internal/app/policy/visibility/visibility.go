// Package visibility filters user lists for course modules hidden from students.
package visibility

import (
	"github.com/dalemusser/twfhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FilterHiddenUsers returns users unchanged when the module is visible.
// For a hidden module it keeps only users that are also in viewers (the
// holders of viewhiddenactivities), ordered as viewers is ordered.
func FilterHiddenUsers(moduleVisible bool, viewers []primitive.ObjectID, users []models.User) []models.User {
	if moduleVisible {
		return users
	}
	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]models.User, 0, len(viewers))
	for _, id := range viewers {
		if u, ok := byID[id]; ok {
			out = append(out, u)
			delete(byID, id)
		}
	}
	return out
}
