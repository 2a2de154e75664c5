package protocol

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/mcncl/inspectorjson/internal/metrics"
	"github.com/mcncl/inspectorjson/pkg/jsonvalue"
)

// Handler runs one command. Returning a *Error sends it as is; any other
// error is reported as a ServerError.
type Handler func(ctx context.Context, params *Params) (*jsonvalue.Object, error)

// Dispatcher routes commands to registered handlers by method name
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	metrics  *metrics.Metrics
}

// NewDispatcher creates an empty dispatcher. m may be nil.
func NewDispatcher(m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]Handler),
		metrics:  m,
	}
}

// Register installs handler for method, replacing any previous one.
// Methods are named "Domain.command".
func (d *Dispatcher) Register(method string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[method] = handler
}

func (d *Dispatcher) handler(method string) (Handler, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.handlers[method]
	return h, ok
}

// Domains lists the registered domains in sorted order.
func (d *Dispatcher) Domains() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var domains []string
	for method := range d.handlers {
		domain, _, _ := strings.Cut(method, ".")
		if !slices.Contains(domains, domain) {
			domains = append(domains, domain)
		}
	}
	slices.Sort(domains)
	return domains
}

// Dispatch handles one incoming message and returns the text to send back.
// Every message gets exactly one reply.
func (d *Dispatcher) Dispatch(ctx context.Context, text string) string {
	cmd, perr := ParseCommand(text)
	if perr != nil {
		if perr.Code == ParseError {
			d.metrics.RecordParseFailure()
		}
		if cmd.HasID() {
			return NewErrorResponse(cmd.ID, perr)
		}
		return NewErrorNotification(perr)
	}

	handler, ok := d.handler(cmd.Method)
	if !ok {
		d.metrics.RecordCommand(cmd.Method, metrics.OutcomeError)
		return NewErrorResponse(cmd.ID, NewError(MethodNotFound, fmt.Sprintf("'%s' wasn't found", cmd.Method)))
	}

	params := NewParams(cmd.Method, cmd.Params)
	result, err := d.run(ctx, handler, params)
	if perr := params.Err(); perr != nil {
		err = perr
	}
	if err != nil {
		d.metrics.RecordCommand(cmd.Method, metrics.OutcomeError)
		return NewErrorResponse(cmd.ID, asProtocolError(err))
	}

	d.metrics.RecordCommand(cmd.Method, metrics.OutcomeSuccess)
	return NewResponse(cmd.ID, result)
}

// run calls handler, turning a panic into an InternalError so one bad
// handler cannot take the session down.
func (d *Dispatcher) run(ctx context.Context, handler Handler, params *Params) (result *jsonvalue.Object, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = NewError(InternalError, "Internal error", fmt.Sprint(r))
		}
	}()
	return handler(ctx, params)
}

func asProtocolError(err error) *Error {
	var perr *Error
	if errors.As(err, &perr) && perr != nil {
		return perr
	}
	return NewError(ServerError, err.Error())
}

// RegisterSchema installs Schema.getDomains, which lists the domains this
// dispatcher serves.
func (d *Dispatcher) RegisterSchema(version string) {
	d.Register("Schema.getDomains", func(ctx context.Context, params *Params) (*jsonvalue.Object, error) {
		list := jsonvalue.NewArray()
		for _, name := range d.Domains() {
			domain := jsonvalue.NewObject()
			domain.SetString("name", name)
			domain.SetString("version", version)
			list.PushObject(domain)
		}
		result := jsonvalue.NewObject()
		result.SetArray("domains", list)
		return result, nil
	})
}
