package visualization

import (
	"embed"
	"html/template"
)

// templates contains the embedded HTML templates.
//
//go:embed templates/*
var templates embed.FS

var pageTemplate = template.Must(template.ParseFS(templates, "templates/run.html"))
