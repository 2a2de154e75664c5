package generator

import (
	"bytes"
	"fmt"
	"go/token"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/iancoleman/strcase"

	apperrors "github.com/mcncl/inspectorjson/internal/errors"
	"github.com/mcncl/inspectorjson/pkg/jsonvalue"
)

const (
	jsonvaluePath   = "github.com/mcncl/inspectorjson/pkg/jsonvalue"
	defaultPackage  = "main"
	defaultFuncName = "Build"
	// Integers beyond this lose precision as float64 and are written as numbers.
	maxExactInteger = 1 << 53
)

// Options controls the generated file
type Options struct {
	Package  string
	FuncName string
}

// Generator emits Go source that rebuilds a JSON tree through the jsonvalue
// builder API
type Generator struct {
	buf      bytes.Buffer // function body
	names    map[string]int
	needMath bool
}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns an unformatted Go file declaring one function that
// returns v. Containers get one variable each and members are added in
// insertion order, so the rebuilt tree serializes identically.
func (g *Generator) Generate(v jsonvalue.Value, opts Options) (string, error) {
	pkg := opts.Package
	if pkg == "" {
		pkg = defaultPackage
	}
	if !token.IsIdentifier(pkg) {
		return "", apperrors.NewGenerateError(fmt.Sprintf("invalid package name %q", pkg), nil)
	}
	funcName := strcase.ToCamel(opts.FuncName)
	if funcName == "" {
		funcName = defaultFuncName
	}
	if !token.IsIdentifier(funcName) {
		return "", apperrors.NewGenerateError(fmt.Sprintf("invalid function name %q", opts.FuncName), nil)
	}

	g.buf.Reset()
	g.names = map[string]int{}
	g.needMath = false
	result := g.emitRoot(v)

	var out bytes.Buffer
	out.WriteString("// Code generated by inspectorjson; DO NOT EDIT.\n\n")
	fmt.Fprintf(&out, "package %s\n\n", pkg)
	if g.needMath {
		fmt.Fprintf(&out, "import (\n\t\"math\"\n\n\t%q\n)\n\n", jsonvaluePath)
	} else {
		fmt.Fprintf(&out, "import %q\n\n", jsonvaluePath)
	}
	fmt.Fprintf(&out, "// %s rebuilds the document this file was generated from.\n", funcName)
	fmt.Fprintf(&out, "func %s() jsonvalue.Value {\n", funcName)
	out.Write(g.buf.Bytes())
	fmt.Fprintf(&out, "\treturn %s\n}\n", result)

	return out.String(), nil
}

// emitRoot writes the statements building v and returns the expression
// holding it.
func (g *Generator) emitRoot(v jsonvalue.Value) string {
	switch v.Type() {
	case jsonvalue.TypeObject, jsonvalue.TypeArray:
		name := g.variable("root")
		g.emitContainer(name, v)
		return name
	default:
		return g.scalarValue(v)
	}
}

func (g *Generator) emitContainer(name string, v jsonvalue.Value) {
	if obj := v.AsObject(); obj != nil {
		fmt.Fprintf(&g.buf, "\t%s := jsonvalue.NewObject()\n", name)
		for key, member := range obj.All() {
			g.emitMember(name, key, member)
		}
		return
	}
	fmt.Fprintf(&g.buf, "\t%s := jsonvalue.NewArray()\n", name)
	for _, item := range v.AsArray().All() {
		g.emitItem(name, item)
	}
}

func (g *Generator) emitMember(parent, key string, v jsonvalue.Value) {
	quoted := strconv.Quote(key)
	switch v.Type() {
	case jsonvalue.TypeObject:
		child := g.variable(key)
		g.emitContainer(child, v)
		fmt.Fprintf(&g.buf, "\t%s.SetObject(%s, %s)\n", parent, quoted, child)
	case jsonvalue.TypeArray:
		child := g.variable(key)
		g.emitContainer(child, v)
		fmt.Fprintf(&g.buf, "\t%s.SetArray(%s, %s)\n", parent, quoted, child)
	default:
		method, arg := g.scalarCall(v, "Set")
		fmt.Fprintf(&g.buf, "\t%s.%s(%s, %s)\n", parent, method, quoted, arg)
	}
}

func (g *Generator) emitItem(parent string, v jsonvalue.Value) {
	switch v.Type() {
	case jsonvalue.TypeObject:
		child := g.variable(parent + "Item")
		g.emitContainer(child, v)
		fmt.Fprintf(&g.buf, "\t%s.PushObject(%s)\n", parent, child)
	case jsonvalue.TypeArray:
		child := g.variable(parent + "Item")
		g.emitContainer(child, v)
		fmt.Fprintf(&g.buf, "\t%s.PushArray(%s)\n", parent, child)
	default:
		method, arg := g.scalarCall(v, "Push")
		fmt.Fprintf(&g.buf, "\t%s.%s(%s)\n", parent, method, arg)
	}
}

// scalarCall picks the typed Set/Push method for a scalar and its argument.
func (g *Generator) scalarCall(v jsonvalue.Value, prefix string) (string, string) {
	switch v.Type() {
	case jsonvalue.TypeBoolean:
		b, _ := v.AsBoolean()
		return prefix + "Boolean", strconv.FormatBool(b)
	case jsonvalue.TypeNumber:
		n, _ := v.AsNumber()
		if isExactInteger(n) {
			return prefix + "Integer", strconv.FormatInt(int64(n), 10)
		}
		return prefix + "Number", g.numberLiteral(n)
	case jsonvalue.TypeString:
		if s, ok := plainString(v); ok {
			return prefix + "String", strconv.Quote(s)
		}
	}
	return prefix + "Value", g.scalarValue(v)
}

// scalarValue returns an expression of type jsonvalue.Value for a scalar.
func (g *Generator) scalarValue(v jsonvalue.Value) string {
	switch v.Type() {
	case jsonvalue.TypeBoolean:
		b, _ := v.AsBoolean()
		return fmt.Sprintf("jsonvalue.NewBoolean(%t)", b)
	case jsonvalue.TypeNumber:
		n, _ := v.AsNumber()
		if isExactInteger(n) {
			return fmt.Sprintf("jsonvalue.NewInteger(%d)", int64(n))
		}
		return fmt.Sprintf("jsonvalue.NewNumber(%s)", g.numberLiteral(n))
	case jsonvalue.TypeString:
		if s, ok := plainString(v); ok {
			return fmt.Sprintf("jsonvalue.NewString(%s)", strconv.Quote(s))
		}
		units, _ := v.AsUTF16()
		parts := make([]string, len(units))
		for i, u := range units {
			parts[i] = fmt.Sprintf("0x%04X", u)
		}
		return fmt.Sprintf("jsonvalue.NewStringUTF16([]uint16{%s})", strings.Join(parts, ", "))
	default:
		return "jsonvalue.Null()"
	}
}

func (g *Generator) numberLiteral(n float64) string {
	switch {
	case math.IsNaN(n):
		g.needMath = true
		return "math.NaN()"
	case math.IsInf(n, 1):
		g.needMath = true
		return "math.Inf(1)"
	case math.IsInf(n, -1):
		g.needMath = true
		return "math.Inf(-1)"
	case n == 0 && math.Signbit(n):
		// A -0 constant is positive zero in Go.
		g.needMath = true
		return "math.Copysign(0, -1)"
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

func isExactInteger(n float64) bool {
	return n == math.Trunc(n) && math.Abs(n) < maxExactInteger && !(n == 0 && math.Signbit(n))
}

// plainString reports whether v's code units survive a round trip through a
// Go string, which fails for lone surrogates.
func plainString(v jsonvalue.Value) (string, bool) {
	s, _ := v.AsString()
	units, _ := v.AsUTF16()
	encoded := utf16.Encode([]rune(s))
	if len(encoded) != len(units) {
		return "", false
	}
	for i := range units {
		if units[i] != encoded[i] {
			return "", false
		}
	}
	return s, true
}

// variable derives a unique Go identifier from a key
func (g *Generator) variable(hint string) string {
	name := strcase.ToLowerCamel(hint)
	name = strings.Map(func(r rune) rune {
		if r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			return r
		}
		return -1
	}, name)
	if name == "" || name == "_" || ('0' <= name[0] && name[0] <= '9') {
		name = "v" + name
	}
	if token.IsKeyword(name) || name == "jsonvalue" || name == "math" {
		name += "Value"
	}

	count := g.names[name]
	g.names[name] = count + 1
	if count == 0 {
		return name
	}
	// Suffixed names can collide with a later plain key; keep counting.
	for {
		candidate := fmt.Sprintf("%s%d", name, count)
		if g.names[candidate] == 0 {
			g.names[candidate] = 1
			return candidate
		}
		count++
	}
}
