// internal/app/features/subscribers/templates.go
package subscribers

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "subscribers",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
