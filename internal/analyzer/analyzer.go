package analyzer

import (
	"regexp"

	"github.com/mcncl/inspectorjson/pkg/jsonvalue"
)

// String formats recognised in string values
const (
	FormatUUID     = "uuid"
	FormatDateTime = "date-time"
	FormatDate     = "date"
	FormatURL      = "url"
)

var formatOrder = []string{FormatUUID, FormatDateTime, FormatDate, FormatURL}

var (
	uuidRegex     = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	rfc3339Regex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`) // 2006-01-02T15:04:05Z
	dateOnlyRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)                                              // 2006-01-02
	urlRegex      = regexp.MustCompile(`^(https?|wss?|file)://\S+$`)
)

// Summary describes the shape of a JSON document
type Summary struct {
	Nulls    int
	Booleans int
	Numbers  int
	Strings  int
	Objects  int
	Arrays   int

	// MaxDepth counts nested containers; a scalar document has depth 0.
	MaxDepth     int
	TotalKeys    int
	LongestArray int
	// Keys lists distinct object keys in the order they were first seen.
	Keys    []string
	Formats map[string]int
}

// Analyzer walks JSON trees and summarizes them
type Analyzer struct {
	summary Summary
	seen    map[string]struct{}
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze returns the summary of v. The tree is not modified.
func (a *Analyzer) Analyze(v jsonvalue.Value) Summary {
	a.summary = Summary{Keys: []string{}, Formats: map[string]int{}}
	a.seen = map[string]struct{}{}
	a.visit(v, 0)
	return a.summary
}

// Analyze summarizes v with a fresh Analyzer.
func Analyze(v jsonvalue.Value) Summary {
	return NewAnalyzer().Analyze(v)
}

// visit records v. depth is the number of containers enclosing it.
func (a *Analyzer) visit(v jsonvalue.Value, depth int) {
	switch v.Type() {
	case jsonvalue.TypeNull:
		a.summary.Nulls++
	case jsonvalue.TypeBoolean:
		a.summary.Booleans++
	case jsonvalue.TypeNumber:
		a.summary.Numbers++
	case jsonvalue.TypeString:
		a.summary.Strings++
		s, _ := v.AsString()
		if format := detectFormat(s); format != "" {
			a.summary.Formats[format]++
		}
	case jsonvalue.TypeObject:
		a.summary.Objects++
		a.enter(depth)
		obj := v.AsObject()
		a.summary.TotalKeys += obj.Len()
		for key, member := range obj.All() {
			if _, ok := a.seen[key]; !ok {
				a.seen[key] = struct{}{}
				a.summary.Keys = append(a.summary.Keys, key)
			}
			a.visit(member, depth+1)
		}
	case jsonvalue.TypeArray:
		a.summary.Arrays++
		a.enter(depth)
		arr := v.AsArray()
		a.summary.LongestArray = max(a.summary.LongestArray, arr.Len())
		for _, item := range arr.All() {
			a.visit(item, depth+1)
		}
	}
}

func (a *Analyzer) enter(depth int) {
	a.summary.MaxDepth = max(a.summary.MaxDepth, depth+1)
}

func detectFormat(s string) string {
	switch {
	case uuidRegex.MatchString(s):
		return FormatUUID
	case rfc3339Regex.MatchString(s):
		return FormatDateTime
	case dateOnlyRegex.MatchString(s):
		return FormatDate
	case urlRegex.MatchString(s):
		return FormatURL
	default:
		return ""
	}
}

// Total is the number of values in the document, containers included.
func (s Summary) Total() int {
	return s.Nulls + s.Booleans + s.Numbers + s.Strings + s.Objects + s.Arrays
}

// Value renders the summary as a JSON object with a fixed member order.
func (s Summary) Value() *jsonvalue.Object {
	types := jsonvalue.NewObject()
	types.SetInteger(jsonvalue.TypeNull.String(), s.Nulls)
	types.SetInteger(jsonvalue.TypeBoolean.String(), s.Booleans)
	types.SetInteger(jsonvalue.TypeNumber.String(), s.Numbers)
	types.SetInteger(jsonvalue.TypeString.String(), s.Strings)
	types.SetInteger(jsonvalue.TypeObject.String(), s.Objects)
	types.SetInteger(jsonvalue.TypeArray.String(), s.Arrays)

	keys := jsonvalue.NewArray()
	for _, key := range s.Keys {
		keys.PushString(key)
	}

	formats := jsonvalue.NewObject()
	for _, name := range formatOrder {
		if n := s.Formats[name]; n > 0 {
			formats.SetInteger(name, n)
		}
	}

	out := jsonvalue.NewObject()
	out.SetInteger("values", s.Total())
	out.SetObject("types", types)
	out.SetInteger("maxDepth", s.MaxDepth)
	out.SetInteger("totalKeys", s.TotalKeys)
	out.SetInteger("longestArray", s.LongestArray)
	out.SetArray("keys", keys)
	out.SetObject("stringFormats", formats)
	return out
}
