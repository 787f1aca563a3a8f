package server

import (
	"embed"
	"html/template"
	"strings"

	"github.com/cinematch-dev/cinematch/internal/tmdb"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

func (s *Server) loadTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"image": func(path string) string {
			return s.catalog.ImageURL(path, "w500")
		},
		"genreNames": tmdb.GenreNames,
		"join": func(values []string) string {
			return strings.Join(values, ", ")
		},
		"year": func(releaseDate string) string {
			if len(releaseDate) >= 4 {
				return releaseDate[:4]
			}
			return ""
		},
	}
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
}
