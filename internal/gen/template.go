package gen

import "text/template"

var mappingTemplate = template.Must(template.New("mapping").Parse(`// Code generated by mapgen. DO NOT EDIT.

package {{.PackageName}}
{{- if .Imports}}

import (
{{- range .Imports}}
	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{- end}}
)
{{- end}}

// {{.Dest}}MapHook customizes the result of To{{.Dest}}.
type {{.Dest}}MapHook func(src *{{.Src}}, dest *{{.Dest}})

// To{{.Dest}} maps {{.Src}} to {{.Dest}}.
func To{{.Dest}}(src {{.Src}}, hooks ...{{.Dest}}MapHook) {{.Dest}} {
	dest := {{.Dest}}{}
{{- range .Assignments}}
{{- if .Guard}}
	if v := {{.Expr}}; v != nil {
		dest.{{.Target}} = fmt.Sprint({{if .Deref}}*{{end}}v)
	}
{{- else if .Convert}}
	dest.{{.Target}} = fmt.Sprint({{.Expr}})
{{- else}}
	dest.{{.Target}} = {{.Expr}}
{{- end}}
{{- end}}

	onAfterMap{{.Dest}}(&src, &dest, hooks)

	return dest
}

func onAfterMap{{.Dest}}(src *{{.Src}}, dest *{{.Dest}}, hooks []{{.Dest}}MapHook) {
	for _, hook := range hooks {
		hook(src, dest)
	}
}
`))
