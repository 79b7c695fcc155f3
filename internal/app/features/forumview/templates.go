// internal/app/features/forumview/templates.go
package forumview

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "forumview",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
