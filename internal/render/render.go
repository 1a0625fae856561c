// Package render wraps html/template with the formatters available to blag
// templates:
//
//	markdown  expands a Markdown string to HTML: {{.md_content | markdown}}
//	commasep  joins a sequence with ", ":       {{commasep .front.tags}}
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"reflect"
	"strings"

	"github.com/blagsite/blag/internal/blagerr"
	"github.com/blagsite/blag/internal/markdown"
)

// Template is a parsed template with the blag formatters installed.
type Template struct {
	name string
	t    *template.Template
}

// New parses source. A malformed template is a render error.
func New(name, source string, md markdown.Renderer) (*Template, error) {
	t, err := template.New(name).Funcs(Funcs(md)).Parse(source)
	if err != nil {
		return nil, blagerr.Wrap(err, blagerr.KindRender, "parse template").
			WithContext("template", name).
			Build()
	}
	return &Template{name: name, t: t}, nil
}

// Execute renders the template over data.
func (t *Template) Execute(data any) (string, error) {
	var b bytes.Buffer
	if err := t.t.Execute(&b, data); err != nil {
		return "", blagerr.Wrap(err, blagerr.KindRender, "execute template").
			WithContext("template", t.name).
			Build()
	}
	return b.String(), nil
}

// Funcs returns the formatter functions backed by md.
func Funcs(md markdown.Renderer) template.FuncMap {
	return template.FuncMap{
		"markdown": func(v any) (template.HTML, error) { return Markdown(md, v) },
		"commasep": CommaSep,
	}
}

// Markdown expands a string through md. Booleans and numbers are written in
// their literal form and nil as nothing; composite values are rejected.
func Markdown(md markdown.Renderer, v any) (template.HTML, error) {
	if v == nil {
		return "", nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		out, err := md.Render([]byte(rv.String()))
		if err != nil {
			return "", blagerr.Wrap(err, blagerr.KindFormatter, "markdown").Build()
		}
		return template.HTML(out), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "", nil
		}
		return Markdown(md, rv.Elem().Interface())
	}
	s, err := scalar(rv)
	if err != nil {
		return "", blagerr.Wrap(err, blagerr.KindFormatter, "markdown").Build()
	}
	return template.HTML(template.HTMLEscapeString(s)), nil
}

// CommaSep formats each element of a sequence and joins them with ", ".
func CommaSep(v any) (string, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return "", blagerr.New(blagerr.KindFormatter, "commasep expects a sequence").
			WithContext("got", fmt.Sprintf("%T", v)).
			Build()
	}
	parts := make([]string, rv.Len())
	for i := range parts {
		s, err := scalar(rv.Index(i))
		if err != nil {
			return "", blagerr.Wrap(err, blagerr.KindFormatter, "commasep").
				WithContext("index", i).
				Build()
		}
		parts[i] = s
	}
	return strings.Join(parts, ", "), nil
}

// scalar is the default formatting of a leaf value.
func scalar(rv reflect.Value) (string, error) {
	for rv.Kind() == reflect.Interface || rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprint(rv.Interface()), nil
	case reflect.Invalid:
		return "", nil
	default:
		return "", fmt.Errorf("expected a printable value but found %s", rv.Kind())
	}
}
