package web

import (
	"embed"
	"html/template"
	"strings"

	"github.com/ironsheep/image-brightness/internal/imaging"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"join": strings.Join,
	}).ParseFS(templateFS, "templates/*.html")
}

type indexPage struct {
	SiteKey     string
	Accept      string
	MaxUploadKB int64
}

type resultSide struct {
	Title    string
	ImageURL string
	PlotURL  string
	Colors   []imaging.ColorCount
}

type resultPage struct {
	Delta    int
	Channels []string
	Elapsed  string
	Sides    []resultSide
}

type errorPage struct {
	Status     int
	StatusText string
	Message    string
}
