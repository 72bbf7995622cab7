package oasbind

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// BasicAuth holds decoded HTTP basic credentials.
type BasicAuth struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CredentialSource reads credential-bearing values of a request. Absent
// values are returned as empty strings.
type CredentialSource interface {
	Header(name string) string
	Query(name string) string
	Cookie(name string) string
}

// RequestCredentials adapts an *http.Request to CredentialSource.
func RequestCredentials(r *http.Request) CredentialSource {
	return requestCredentials{r: r}
}

type requestCredentials struct {
	r *http.Request
}

func (c requestCredentials) Header(name string) string { return c.r.Header.Get(name) }
func (c requestCredentials) Query(name string) string  { return c.r.URL.Query().Get(name) }

func (c requestCredentials) Cookie(name string) string {
	ck, err := c.r.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}

// orderAlternatives copies reqs and moves empty alternatives, which make the
// whole requirement optional, to the end so real credentials win when present.
func orderAlternatives(reqs openapi3.SecurityRequirements) openapi3.SecurityRequirements {
	out := make(openapi3.SecurityRequirements, 0, len(reqs))
	empty := 0
	for _, req := range reqs {
		if len(req) == 0 {
			empty++
			continue
		}
		out = append(out, req)
	}
	for range empty {
		out = append(out, openapi3.SecurityRequirement{})
	}
	return out
}

// ResolveSecurity extracts the credentials op requires from src.
//
// Alternatives are tried in declared order, except that an empty
// alternative is tried last. An alternative is satisfied when every scheme
// in it yields a credential; the first satisfied one wins and its
// credentials are returned keyed by scheme name. Operations without security
// yield an empty Map.
//
// When nothing is satisfied the error is a *BasicSecurityError if the only
// accepted credentials are a single HTTP basic scheme, and a *SecurityError
// otherwise. Malformed basic credentials leave their alternative
// unsatisfied; the first such *InvalidCredentials is returned when no later
// alternative is satisfied either.
func ResolveSecurity(spec *Spec, op *Operation, src CredentialSource) (Map, error) {
	reqs := spec.SecurityFor(op)
	if len(reqs) == 0 {
		return Map{}, nil
	}
	reqs = orderAlternatives(reqs)

	var invalid error
	for _, req := range reqs {
		data := make(map[string]any, len(req))
		satisfied := true
		for _, name := range sortedKeys(req) {
			value, err := extractCredential(spec.SecurityScheme(name), src)
			if err != nil && invalid == nil {
				invalid = err
			}
			if err != nil || value == nil {
				satisfied = false
				break
			}
			data[name] = value
		}
		if satisfied {
			return Map{m: data}, nil
		}
	}
	if invalid != nil {
		return Map{}, invalid
	}

	if len(reqs) == 1 && len(reqs[0]) == 1 {
		for name := range reqs[0] {
			if isBasicScheme(spec.SecurityScheme(name)) {
				return Map{}, &BasicSecurityError{}
			}
		}
	}
	return Map{}, &SecurityError{}
}

func isBasicScheme(s *openapi3.SecurityScheme) bool {
	return s != nil && s.Type == "http" && strings.EqualFold(s.Scheme, "basic")
}

// extractCredential returns nil when the credential is absent.
func extractCredential(s *openapi3.SecurityScheme, src CredentialSource) (any, error) {
	if s == nil {
		return nil, nil
	}
	switch s.Type {
	case "apiKey":
		var v string
		switch s.In {
		case openapi3.ParameterInHeader:
			v = src.Header(s.Name)
		case openapi3.ParameterInQuery:
			v = src.Query(s.Name)
		case openapi3.ParameterInCookie:
			v = src.Cookie(s.Name)
		}
		if v == "" {
			return nil, nil
		}
		return v, nil
	case "http":
		scheme, value, ok := authorization(src)
		if !ok || !strings.EqualFold(scheme, s.Scheme) {
			return nil, nil
		}
		if strings.EqualFold(s.Scheme, "basic") {
			return decodeBasic(value)
		}
		return value, nil
	case "oauth2", "openIdConnect":
		scheme, value, ok := authorization(src)
		if !ok || !strings.EqualFold(scheme, "bearer") {
			return nil, nil
		}
		return value, nil
	}
	return nil, nil
}

// authorization splits the Authorization header into scheme and credentials
// on the first space.
func authorization(src CredentialSource) (scheme, value string, ok bool) {
	header := src.Header("Authorization")
	scheme, value, ok = strings.Cut(header, " ")
	if !ok || value == "" {
		return "", "", false
	}
	return scheme, value, true
}

func decodeBasic(value string) (BasicAuth, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(value))
	if err != nil {
		return BasicAuth{}, &InvalidCredentials{Err: err}
	}
	username, password, ok := strings.Cut(string(raw), ":")
	if !ok {
		return BasicAuth{}, &InvalidCredentials{Message: "Invalid credentials: missing colon in basic auth value"}
	}
	return BasicAuth{Username: username, Password: password}, nil
}
