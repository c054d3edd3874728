// internal/app/features/submissions/templates.go
package submissions

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "submissions_list",
		FS:       FS,
		Patterns: []string{"templates/submissions_list.gohtml"},
	})
	templates.Register(templates.Set{
		Name:     "submission_view",
		FS:       FS,
		Patterns: []string{"templates/submission_view.gohtml"},
	})
}
