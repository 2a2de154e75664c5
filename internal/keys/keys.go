// Package keys rewrites object keys of a JSON tree into a naming style.
package keys

import (
	"fmt"

	"github.com/iancoleman/strcase"

	"github.com/mcncl/inspectorjson/pkg/jsonvalue"
)

// Style selects how keys are rewritten
type Style string

const (
	StyleKeep   Style = "keep"
	StyleCamel  Style = "camel"
	StylePascal Style = "pascal"
	StyleSnake  Style = "snake"
	StyleKebab  Style = "kebab"
)

// ParseStyle converts a config or flag value to a Style
func ParseStyle(s string) (Style, error) {
	switch style := Style(s); style {
	case StyleKeep, StyleCamel, StylePascal, StyleSnake, StyleKebab:
		return style, nil
	case "":
		return StyleKeep, nil
	default:
		return "", fmt.Errorf("unknown key style %q", s)
	}
}

// Convert applies style to a single key.
func (s Style) Convert(key string) string {
	switch s {
	case StyleCamel:
		return strcase.ToLowerCamel(key)
	case StylePascal:
		return strcase.ToCamel(key)
	case StyleSnake:
		return strcase.ToSnake(key)
	case StyleKebab:
		return strcase.ToKebab(key)
	default:
		return key
	}
}

// Rewrite returns a copy of v with every object key converted. Members keep
// the source order. When two keys convert to the same name the later value
// wins and the name stays where it first appeared.
func Rewrite(v jsonvalue.Value, style Style) jsonvalue.Value {
	switch v.Type() {
	case jsonvalue.TypeObject:
		src := v.AsObject()
		dst := jsonvalue.NewObject()
		for key, member := range src.All() {
			dst.SetValue(style.Convert(key), Rewrite(member, style))
		}
		return dst
	case jsonvalue.TypeArray:
		src := v.AsArray()
		dst := jsonvalue.NewArray()
		for _, item := range src.All() {
			dst.PushValue(Rewrite(item, style))
		}
		return dst
	default:
		// Scalars are immutable and can be shared.
		return v
	}
}
