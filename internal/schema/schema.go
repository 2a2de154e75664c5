// Package schema loads inspector protocol descriptions (domains with their
// types, commands and events) and serves them as validating stub handlers.
package schema

import (
	"context"
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/mcncl/inspectorjson/internal/errors"
	"github.com/mcncl/inspectorjson/internal/parser"
	"github.com/mcncl/inspectorjson/internal/protocol"
	"github.com/mcncl/inspectorjson/pkg/jsonvalue"
)

// Primitive parameter types of the protocol description format
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
	TypeAny     = "any"
)

var primitiveTypes = []string{TypeString, TypeInteger, TypeNumber, TypeBoolean, TypeObject, TypeArray, TypeAny}

// Parameter is a command or event parameter, or a command return value
type Parameter struct {
	Name     string
	Type     string // resolved primitive type
	Ref      string // the $ref it was declared with, if any
	Optional bool
	Enum     []string
}

// TypeDef is a named type declared by a domain
type TypeDef struct {
	ID   string
	Type string
	Enum []string
}

type Command struct {
	Name       string
	Parameters []Parameter
	Returns    []Parameter
}

type Event struct {
	Name       string
	Parameters []Parameter
}

type Domain struct {
	Name     string
	Types    []TypeDef
	Commands []Command
	Events   []Event
}

// Protocol is a parsed protocol description
type Protocol struct {
	Version string
	Domains []Domain
}

// ParseFile reads and parses a protocol description from a file
func ParseFile(path string) (*Protocol, error) {
	v, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return FromValue(v)
}

// ParseString parses a protocol description from a string
func ParseString(s string) (*Protocol, error) {
	v, err := parser.ParseString(s)
	if err != nil {
		return nil, err
	}
	return FromValue(v)
}

func invalid(format string, args ...any) error {
	return apperrors.NewParsingError(fmt.Sprintf(format, args...), apperrors.ErrInvalidProtocol)
}

// FromValue builds a Protocol from a parsed description and resolves every
// $ref to a primitive type.
func FromValue(v jsonvalue.Value) (*Protocol, error) {
	root := v.AsObject()
	if root == nil {
		return nil, invalid("protocol description must be an object")
	}
	domains := root.GetArray("domains")
	if domains == nil {
		return nil, invalid("'domains' array is missing")
	}

	p := &Protocol{Version: readVersion(root)}
	for i, item := range domains.All() {
		domain, err := readDomain(item)
		if err != nil {
			return nil, err
		}
		if slices.ContainsFunc(p.Domains, func(d Domain) bool { return d.Name == domain.Name }) {
			return nil, invalid("domain '%s' is declared twice", domain.Name)
		}
		if domain.Name == "" {
			return nil, invalid("domain %d has no name", i)
		}
		p.Domains = append(p.Domains, domain)
	}

	if err := p.resolve(); err != nil {
		return nil, err
	}
	return p, nil
}

// readVersion accepts {"major":"1","minor":"3"} as well as a plain string.
func readVersion(root *jsonvalue.Object) string {
	if s, ok := root.GetString("version"); ok {
		return s
	}
	version := root.GetObject("version")
	if version == nil {
		return "1.0"
	}
	major, _ := version.GetString("major")
	minor, _ := version.GetString("minor")
	if major == "" {
		major = "1"
	}
	if minor == "" {
		minor = "0"
	}
	return major + "." + minor
}

func readDomain(v jsonvalue.Value) (Domain, error) {
	obj := v.AsObject()
	if obj == nil {
		return Domain{}, invalid("domain entries must be objects")
	}
	name, _ := obj.GetString("domain")
	domain := Domain{Name: name}

	if types := obj.GetArray("types"); types != nil {
		for _, item := range types.All() {
			def := item.AsObject()
			if def == nil {
				return Domain{}, invalid("types of '%s' must be objects", name)
			}
			id, _ := def.GetString("id")
			typ, _ := def.GetString("type")
			if id == "" || !slices.Contains(primitiveTypes, typ) {
				return Domain{}, invalid("type '%s.%s' needs an id and a known type", name, id)
			}
			domain.Types = append(domain.Types, TypeDef{ID: id, Type: typ, Enum: readEnum(def)})
		}
	}

	if commands := obj.GetArray("commands"); commands != nil {
		for _, item := range commands.All() {
			cmd := item.AsObject()
			if cmd == nil {
				return Domain{}, invalid("commands of '%s' must be objects", name)
			}
			cmdName, _ := cmd.GetString("name")
			if cmdName == "" {
				return Domain{}, invalid("a command of '%s' has no name", name)
			}
			params, err := readParameters(cmd.GetArray("parameters"), name+"."+cmdName)
			if err != nil {
				return Domain{}, err
			}
			returns, err := readParameters(cmd.GetArray("returns"), name+"."+cmdName)
			if err != nil {
				return Domain{}, err
			}
			domain.Commands = append(domain.Commands, Command{Name: cmdName, Parameters: params, Returns: returns})
		}
	}

	if events := obj.GetArray("events"); events != nil {
		for _, item := range events.All() {
			event := item.AsObject()
			if event == nil {
				return Domain{}, invalid("events of '%s' must be objects", name)
			}
			eventName, _ := event.GetString("name")
			params, err := readParameters(event.GetArray("parameters"), name+"."+eventName)
			if err != nil {
				return Domain{}, err
			}
			domain.Events = append(domain.Events, Event{Name: eventName, Parameters: params})
		}
	}

	return domain, nil
}

func readParameters(list *jsonvalue.Array, owner string) ([]Parameter, error) {
	if list == nil {
		return nil, nil
	}
	params := make([]Parameter, 0, list.Len())
	for _, item := range list.All() {
		obj := item.AsObject()
		if obj == nil {
			return nil, invalid("parameters of '%s' must be objects", owner)
		}
		param := Parameter{Enum: readEnum(obj)}
		param.Name, _ = obj.GetString("name")
		param.Type, _ = obj.GetString("type")
		param.Ref, _ = obj.GetString("$ref")
		param.Optional, _ = obj.GetBoolean("optional")

		if param.Name == "" {
			return nil, invalid("a parameter of '%s' has no name", owner)
		}
		if param.Ref == "" && !slices.Contains(primitiveTypes, param.Type) {
			return nil, invalid("parameter '%s' of '%s' has unknown type '%s'", param.Name, owner, param.Type)
		}
		params = append(params, param)
	}
	return params, nil
}

func readEnum(obj *jsonvalue.Object) []string {
	list := obj.GetArray("enum")
	if list == nil {
		return nil
	}
	var values []string
	for _, item := range list.All() {
		if s, ok := item.AsString(); ok {
			values = append(values, s)
		}
	}
	return values
}

// resolve replaces every $ref with the primitive type of its target. Refs are
// either local ("CallFrameId") or qualified ("Runtime.RemoteObject").
func (p *Protocol) resolve() error {
	types := map[string]TypeDef{}
	for _, domain := range p.Domains {
		for _, def := range domain.Types {
			types[domain.Name+"."+def.ID] = def
		}
	}

	resolveList := func(domain string, owner string, params []Parameter) error {
		for i := range params {
			ref := params[i].Ref
			if ref == "" {
				continue
			}
			key := ref
			if !strings.Contains(ref, ".") {
				key = domain + "." + ref
			}
			def, ok := types[key]
			if !ok {
				return invalid("parameter '%s' of '%s' refers to unknown type '%s'", params[i].Name, owner, ref)
			}
			params[i].Type = def.Type
			if len(params[i].Enum) == 0 {
				params[i].Enum = def.Enum
			}
		}
		return nil
	}

	for _, domain := range p.Domains {
		for _, cmd := range domain.Commands {
			owner := domain.Name + "." + cmd.Name
			if err := resolveList(domain.Name, owner, cmd.Parameters); err != nil {
				return err
			}
			if err := resolveList(domain.Name, owner, cmd.Returns); err != nil {
				return err
			}
		}
		for _, event := range domain.Events {
			if err := resolveList(domain.Name, domain.Name+"."+event.Name, event.Parameters); err != nil {
				return err
			}
		}
	}
	return nil
}

// Command looks up a "Domain.command" method
func (p *Protocol) Command(method string) (*Command, bool) {
	domainName, name, ok := strings.Cut(method, ".")
	if !ok {
		return nil, false
	}
	for i := range p.Domains {
		if p.Domains[i].Name != domainName {
			continue
		}
		for j := range p.Domains[i].Commands {
			if p.Domains[i].Commands[j].Name == name {
				return &p.Domains[i].Commands[j], true
			}
		}
	}
	return nil, false
}

// Counts returns the number of commands and events across all domains
func (p *Protocol) Counts() (commands, events int) {
	for _, domain := range p.Domains {
		commands += len(domain.Commands)
		events += len(domain.Events)
	}
	return commands, events
}

// CheckParams reads every declared parameter through params so that missing
// or mistyped ones are recorded as problems.
func CheckParams(cmd *Command, params *protocol.Params) {
	for _, param := range cmd.Parameters {
		switch param.Type {
		case TypeString:
			s, ok := params.String(param.Name, param.Optional)
			if ok && len(param.Enum) > 0 && !slices.Contains(param.Enum, s) {
				params.Reject(param.Name, "must be one of '"+strings.Join(param.Enum, "', '")+"'")
			}
		case TypeInteger:
			n, ok := params.Number(param.Name, param.Optional)
			if ok && n != float64(int64(n)) {
				params.Reject(param.Name, "must be an integer")
			}
		case TypeNumber:
			params.Number(param.Name, param.Optional)
		case TypeBoolean:
			params.Boolean(param.Name, param.Optional)
		case TypeObject:
			params.Object(param.Name, param.Optional)
		case TypeArray:
			params.Array(param.Name, param.Optional)
		default:
			params.Value(param.Name, param.Optional)
		}
	}
}

// StubResult builds a result holding a zero value for every required return.
func StubResult(cmd *Command) *jsonvalue.Object {
	result := jsonvalue.NewObject()
	for _, ret := range cmd.Returns {
		if ret.Optional {
			continue
		}
		result.SetValue(ret.Name, zeroValue(ret))
	}
	return result
}

func zeroValue(p Parameter) jsonvalue.Value {
	switch p.Type {
	case TypeString:
		if len(p.Enum) > 0 {
			return jsonvalue.NewString(p.Enum[0])
		}
		return jsonvalue.NewString("")
	case TypeInteger, TypeNumber:
		return jsonvalue.NewInteger(0)
	case TypeBoolean:
		return jsonvalue.NewBoolean(false)
	case TypeObject:
		return jsonvalue.NewObject()
	case TypeArray:
		return jsonvalue.NewArray()
	default:
		return jsonvalue.Null()
	}
}

// Register installs a stub handler for every command. Stubs validate their
// parameters and answer with StubResult.
func (p *Protocol) Register(d *protocol.Dispatcher) {
	for _, domain := range p.Domains {
		for i := range domain.Commands {
			cmd := &domain.Commands[i]
			d.Register(domain.Name+"."+cmd.Name, func(ctx context.Context, params *protocol.Params) (*jsonvalue.Object, error) {
				CheckParams(cmd, params)
				if err := params.Err(); err != nil {
					return nil, err
				}
				return StubResult(cmd), nil
			})
		}
	}
}
