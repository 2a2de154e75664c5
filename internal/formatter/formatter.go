package formatter

import (
	"fmt"
	"go/format"
	"regexp"
	"sort"
	"strings"

	"github.com/mcncl/inspectorjson/pkg/jsonvalue"
)

// Formatter renders JSON trees for humans and tidies generated Go code
type Formatter struct {
	indent string
}

// NewFormatter creates a Formatter that indents with indent. An empty indent
// produces the compact canonical form.
func NewFormatter(indent string) *Formatter {
	return &Formatter{indent: indent}
}

// Pretty renders v across multiple lines. Scalars are written exactly as the
// canonical serializer writes them, so Pretty output parses back to an equal
// tree.
func (f *Formatter) Pretty(v jsonvalue.Value) string {
	if f.indent == "" {
		return v.ToJSONString()
	}
	var sb strings.Builder
	f.WritePretty(&sb, v)
	return sb.String()
}

// WritePretty is Pretty writing into w.
func (f *Formatter) WritePretty(w jsonvalue.Writer, v jsonvalue.Value) {
	if f.indent == "" {
		v.WriteJSON(w)
		return
	}
	f.writeValue(w, v, 0)
}

func (f *Formatter) newline(w jsonvalue.Writer, depth int) {
	_ = w.WriteByte('\n')
	for range depth {
		_, _ = w.WriteString(f.indent)
	}
}

func (f *Formatter) writeValue(w jsonvalue.Writer, v jsonvalue.Value, depth int) {
	switch v.Type() {
	case jsonvalue.TypeObject:
		obj := v.AsObject()
		if obj.Len() == 0 {
			_, _ = w.WriteString("{}")
			return
		}
		_ = w.WriteByte('{')
		first := true
		for key, member := range obj.All() {
			if !first {
				_ = w.WriteByte(',')
			}
			first = false
			f.newline(w, depth+1)
			_, _ = w.WriteString(jsonvalue.Quote(key))
			_, _ = w.WriteString(": ")
			f.writeValue(w, member, depth+1)
		}
		f.newline(w, depth)
		_ = w.WriteByte('}')
	case jsonvalue.TypeArray:
		arr := v.AsArray()
		if arr.Len() == 0 {
			_, _ = w.WriteString("[]")
			return
		}
		_ = w.WriteByte('[')
		for i, item := range arr.All() {
			if i > 0 {
				_ = w.WriteByte(',')
			}
			f.newline(w, depth+1)
			f.writeValue(w, item, depth+1)
		}
		f.newline(w, depth)
		_ = w.WriteByte(']')
	default:
		v.WriteJSON(w)
	}
}

// Format takes Go code as a string and returns properly formatted Go code
func (f *Formatter) Format(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", nil
	}

	formatted, err := format.Source([]byte(code))
	if err != nil {
		return "", fmt.Errorf("failed to parse Go code: %w", err)
	}

	return f.formatImports(string(formatted)), nil
}

var importBlockRegex = regexp.MustCompile(`(?s)import\s*\((.+?)\)`)

// formatImports groups standard library imports first, followed by
// third-party imports with a blank line in between
func (f *Formatter) formatImports(code string) string {
	importMatches := importBlockRegex.FindStringSubmatch(code)
	if len(importMatches) < 2 {
		return code
	}

	var stdLibImports, thirdPartyImports []string
	for _, line := range strings.Split(strings.TrimSpace(importMatches[1]), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		// Standard library paths have no dot in their first element
		importPath := strings.Trim(line, `"`)
		if !strings.Contains(importPath, ".") {
			stdLibImports = append(stdLibImports, line)
		} else {
			thirdPartyImports = append(thirdPartyImports, line)
		}
	}

	sort.Strings(stdLibImports)
	sort.Strings(thirdPartyImports)

	var sb strings.Builder
	sb.WriteString("import (\n")
	for _, imp := range stdLibImports {
		sb.WriteString("\t" + imp + "\n")
	}
	if len(stdLibImports) > 0 && len(thirdPartyImports) > 0 {
		sb.WriteString("\n")
	}
	for _, imp := range thirdPartyImports {
		sb.WriteString("\t" + imp + "\n")
	}
	sb.WriteString(")")

	return importBlockRegex.ReplaceAllLiteralString(code, sb.String())
}
