package oasbind

import (
	"fmt"
	"net/http"
	"reflect"
	"runtime"
	"strings"
)

// HandlerFunc handles a request that passed validation. Returned errors are
// rendered by the error boundary, so handlers signal failures by returning
// the typed errors of this package.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ViewMethod binds one HTTP method of a View to its handler. OperationID,
// when set, replaces the identifier derived from the view prefix.
type ViewMethod struct {
	Method      string
	Handler     HandlerFunc
	OperationID string
}

// View groups the handlers of several methods of one path.
//
//	type UserView struct{ store *Store }
//
//	func (v *UserView) Methods() []oasbind.ViewMethod {
//	    return []oasbind.ViewMethod{
//	        {Method: http.MethodGet, Handler: v.get},
//	        {Method: http.MethodPatch, Handler: v.patch, OperationID: "updateUser"},
//	    }
//	}
//
// Registered as is, the GET handler expects operation "UserView.get".
type View interface {
	Methods() []ViewMethod
}

type handlerDef struct {
	operationID string
	handler     HandlerFunc
	err         error
}

// viewOperation is one resolved method of a registered view.
type viewOperation struct {
	method      string
	operationID string
	handler     HandlerFunc
}

type viewDef struct {
	prefix     string
	operations []viewOperation
}

// Operations maps operation identifiers to handlers. Build it at init time
// and hand it to [Setup]. The zero value is ready to use.
type Operations struct {
	handlers []handlerDef
	views    []viewDef
}

// NewOperations returns an empty registry.
func NewOperations() *Operations {
	return &Operations{}
}

// Register binds h to the operation named like the function itself, so
// func helloWorld expects operationId "helloWorld". Anonymous functions have
// no usable name; register them with RegisterAs.
func (o *Operations) Register(h HandlerFunc) *Operations {
	id, err := handlerName(h)
	o.handlers = append(o.handlers, handlerDef{operationID: id, handler: h, err: err})
	return o
}

// RegisterAs binds h to the operation with the given identifier.
func (o *Operations) RegisterAs(operationID string, h HandlerFunc) *Operations {
	o.handlers = append(o.handlers, handlerDef{operationID: operationID, handler: h})
	return o
}

// RegisterView binds each method of v to "<TypeName>.<method>", where method
// is lower case, unless the ViewMethod names its own operation.
func (o *Operations) RegisterView(v View) *Operations {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return o.RegisterViewAs(t.Name(), v)
}

// RegisterViewAs is like RegisterView with an explicit identifier prefix.
// Entries whose Method is not an HTTP method are ignored.
func (o *Operations) RegisterViewAs(prefix string, v View) *Operations {
	def := viewDef{prefix: prefix}
	for _, m := range v.Methods() {
		if !isHTTPMethod(m.Method) || m.Handler == nil {
			continue
		}
		id := m.OperationID
		if id == "" {
			id = prefix + "." + strings.ToLower(m.Method)
		}
		def.operations = append(def.operations, viewOperation{
			method:      strings.ToUpper(m.Method),
			operationID: id,
			handler:     m.Handler,
		})
	}
	o.views = append(o.views, def)
	return o
}

// Add returns a registry holding the entries of o followed by those of other.
// Neither input is modified.
func (o *Operations) Add(other *Operations) *Operations {
	return Merge(o, other)
}

// Merge concatenates registries in order.
func Merge(regs ...*Operations) *Operations {
	out := &Operations{}
	for _, r := range regs {
		if r == nil {
			continue
		}
		out.handlers = append(out.handlers, r.handlers...)
		out.views = append(out.views, r.views...)
	}
	return out
}

// OperationIDs lists every registered identifier in registration order,
// handlers first.
func (o *Operations) OperationIDs() []string {
	var ids []string
	for _, h := range o.handlers {
		ids = append(ids, h.operationID)
	}
	for _, v := range o.views {
		for _, op := range v.operations {
			ids = append(ids, op.operationID)
		}
	}
	return ids
}

// handlerName derives an operation identifier from a function name, e.g.
// "github.com/acme/api.helloWorld" or "api.(*Server).helloWorld-fm".
func handlerName(h HandlerFunc) (string, error) {
	if h == nil {
		return "", fmt.Errorf("nil handler")
	}
	fn := runtime.FuncForPC(reflect.ValueOf(h).Pointer())
	if fn == nil {
		return "", fmt.Errorf("unable to resolve handler name")
	}
	name := fn.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || (strings.HasPrefix(name, "func") && strings.Trim(name[4:], "0123456789") == "") {
		return "", fmt.Errorf("unable to derive operation id from %q, use RegisterAs", fn.Name())
	}
	return name, nil
}
