package oasbind

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Parameters holds the validated parameters of a request by location.
type Parameters struct {
	Path   Map `json:"path"`
	Query  Map `json:"query"`
	Header Map `json:"header"`
	Cookie Map `json:"cookie"`
}

// rawParameter is a parameter as read from the request before casting.
type rawParameter struct {
	values  []string
	present bool
	// deep holds name[key]=value pairs of deepObject query parameters.
	deep map[string]string
}

// validateParameters reads, casts and validates every declared parameter of
// op. Failures are collected for all parameters before returning.
func (c coercer) validateParameters(op *Operation, r *http.Request) (Parameters, []error) {
	out := map[string]map[string]any{
		openapi3.ParameterInPath:   {},
		openapi3.ParameterInQuery:  {},
		openapi3.ParameterInHeader: {},
		openapi3.ParameterInCookie: {},
	}
	query := r.URL.Query()

	var errs []error
	for _, ref := range op.Parameters {
		p := ref.Value
		if p == nil {
			continue
		}
		value, perrs := c.parameter(p, readParameter(p, r, query), query)
		if len(perrs) > 0 {
			errs = append(errs, perrs...)
			continue
		}
		if value != nil {
			out[p.In][p.Name] = value
		}
	}
	if len(errs) > 0 {
		return Parameters{}, errs
	}
	return Parameters{
		Path:   freezeMap(out[openapi3.ParameterInPath]),
		Query:  freezeMap(out[openapi3.ParameterInQuery]),
		Header: freezeMap(out[openapi3.ParameterInHeader]),
		Cookie: freezeMap(out[openapi3.ParameterInCookie]),
	}, nil
}

func readParameter(p *openapi3.Parameter, r *http.Request, query url.Values) rawParameter {
	switch p.In {
	case openapi3.ParameterInPath:
		v := r.PathValue(p.Name)
		return rawParameter{values: []string{v}, present: v != ""}
	case openapi3.ParameterInQuery:
		if sm, err := p.SerializationMethod(); err == nil && sm.Style == openapi3.SerializationDeepObject {
			deep := map[string]string{}
			prefix := p.Name + "["
			for key, vals := range query {
				if strings.HasPrefix(key, prefix) && strings.HasSuffix(key, "]") && len(vals) > 0 {
					deep[key[len(prefix):len(key)-1]] = vals[0]
				}
			}
			return rawParameter{deep: deep, present: len(deep) > 0}
		}
		vals, ok := query[p.Name]
		return rawParameter{values: vals, present: ok}
	case openapi3.ParameterInHeader:
		vals := r.Header.Values(p.Name)
		return rawParameter{values: vals, present: len(vals) > 0}
	case openapi3.ParameterInCookie:
		ck, err := r.Cookie(p.Name)
		if err != nil {
			return rawParameter{}
		}
		return rawParameter{values: []string{ck.Value}, present: true}
	}
	return rawParameter{}
}

// parameter returns the validated value of p, or nil when an optional
// parameter without default is absent. Errors are located at the
// parameter name.
func (c coercer) parameter(p *openapi3.Parameter, raw rawParameter, query url.Values) (any, []error) {
	if !raw.present {
		if p.Required {
			return nil, []error{&ParameterError{Name: p.Name, In: p.In, Reason: ParameterRequired}}
		}
		if p.Schema != nil && p.Schema.Value != nil && p.Schema.Value.Default != nil {
			return Freeze(c.convert(p.Schema.Value, p.Schema.Value.Default, nil, nil)), nil
		}
		return nil, nil
	}
	if p.In == openapi3.ParameterInQuery && raw.deep == nil && len(raw.values) == 1 && raw.values[0] == "" && !p.AllowEmptyValue {
		return nil, []error{&ParameterError{Name: p.Name, In: p.In, Reason: ParameterEmpty}}
	}

	schemaRef := p.Schema
	var value any
	if schemaRef == nil {
		// Parameters declared with content carry a JSON document.
		mt := p.Content.Get("application/json")
		if mt == nil || len(raw.values) == 0 {
			return nil, []error{&ParameterError{Name: p.Name, In: p.In, Reason: ParameterInvalid}}
		}
		dec := json.NewDecoder(strings.NewReader(raw.values[0]))
		dec.UseNumber()
		if err := dec.Decode(&value); err != nil {
			return nil, []error{&ParameterError{Name: p.Name, In: p.In, Reason: ParameterInvalid, Err: err}}
		}
		schemaRef = mt.Schema
	} else {
		var err error
		if value, err = deserialize(p, raw, query); err != nil {
			return nil, []error{err}
		}
	}

	out, errs := c.coerce(schemaRef, value)
	for i, err := range errs {
		if fe, ok := err.(*FieldError); ok {
			errs[i] = &FieldError{Loc: Loc{p.Name}.Join(fe.Loc...), Message: fe.Message}
		}
	}
	return out, errs
}

// deserialize applies the parameter's style and casts primitives to the
// types its schema declares.
func deserialize(p *openapi3.Parameter, raw rawParameter, query url.Values) (any, error) {
	sm, err := p.SerializationMethod()
	if err != nil {
		return nil, &ParameterError{Name: p.Name, In: p.In, Reason: ParameterInvalid, Err: err}
	}
	schema := p.Schema.Value

	if raw.deep != nil {
		obj := make(map[string]any, len(raw.deep))
		for k, v := range raw.deep {
			cast, err := castString(propertySchema(schema, k), p.Name, v)
			if err != nil {
				return nil, err
			}
			obj[k] = cast
		}
		return obj, nil
	}

	first := ""
	if len(raw.values) > 0 {
		first = raw.values[0]
	}

	switch {
	case schema != nil && schema.Type.Is(openapi3.TypeArray):
		parts := arrayParts(p.Name, sm, raw.values, first)
		var items *openapi3.Schema
		if schema.Items != nil {
			items = schema.Items.Value
		}
		out := make([]any, len(parts))
		for i, part := range parts {
			cast, err := castString(items, p.Name, part)
			if err != nil {
				return nil, err
			}
			out[i] = cast
		}
		return out, nil
	case schema != nil && schema.Type.Is(openapi3.TypeObject):
		pairs := objectPairs(p.Name, sm, first, schema, query)
		obj := make(map[string]any, len(pairs))
		for k, v := range pairs {
			cast, err := castString(propertySchema(schema, k), p.Name, v)
			if err != nil {
				return nil, err
			}
			obj[k] = cast
		}
		return obj, nil
	}
	return castString(schema, p.Name, primitivePart(p.Name, sm, first))
}

func arrayParts(name string, sm *openapi3.SerializationMethod, values []string, first string) []string {
	switch sm.Style {
	case openapi3.SerializationForm:
		if sm.Explode {
			return values
		}
		return strings.Split(first, ",")
	case openapi3.SerializationSpaceDelimited:
		return strings.Split(first, " ")
	case openapi3.SerializationPipeDelimited:
		return strings.Split(first, "|")
	case openapi3.SerializationLabel:
		v := strings.TrimPrefix(first, ".")
		if sm.Explode {
			return strings.Split(v, ".")
		}
		return strings.Split(v, ",")
	case openapi3.SerializationMatrix:
		v := strings.TrimPrefix(first, ";")
		prefix := name + "="
		if sm.Explode {
			var out []string
			for _, part := range strings.Split(v, ";") {
				if strings.HasPrefix(part, prefix) {
					out = append(out, part[len(prefix):])
				}
			}
			return out
		}
		return strings.Split(strings.TrimPrefix(v, prefix), ",")
	}
	// simple, also the header default
	if len(values) > 1 {
		return values
	}
	return strings.Split(first, ",")
}

func objectPairs(name string, sm *openapi3.SerializationMethod, first string, schema *openapi3.Schema, query url.Values) map[string]string {
	out := map[string]string{}
	switch sm.Style {
	case openapi3.SerializationForm:
		if sm.Explode {
			for prop := range schema.Properties {
				if v, ok := query[prop]; ok && len(v) > 0 {
					out[prop] = v[0]
				}
			}
			return out
		}
	case openapi3.SerializationLabel:
		first = strings.TrimPrefix(first, ".")
		if sm.Explode {
			return keyValuePairs(strings.Split(first, "."))
		}
	case openapi3.SerializationMatrix:
		first = strings.TrimPrefix(first, ";")
		if sm.Explode {
			return keyValuePairs(strings.Split(first, ";"))
		}
		first = strings.TrimPrefix(first, name+"=")
	default:
		if sm.Explode {
			return keyValuePairs(strings.Split(first, ","))
		}
	}
	parts := strings.Split(first, ",")
	for i := 0; i+1 < len(parts); i += 2 {
		out[parts[i]] = parts[i+1]
	}
	return out
}

func keyValuePairs(parts []string) map[string]string {
	out := map[string]string{}
	for _, part := range parts {
		if k, v, ok := strings.Cut(part, "="); ok && k != "" {
			out[k] = v
		}
	}
	return out
}

func primitivePart(name string, sm *openapi3.SerializationMethod, first string) string {
	switch sm.Style {
	case openapi3.SerializationLabel:
		return strings.TrimPrefix(first, ".")
	case openapi3.SerializationMatrix:
		return strings.TrimPrefix(strings.TrimPrefix(first, ";"), name+"=")
	}
	return first
}
