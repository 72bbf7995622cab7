package oasbind

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

// EmailOptions configures the "email" string format.
type EmailOptions struct {
	// CheckDeliverability additionally requires the domain to resolve to a
	// mail exchanger or host. It performs DNS lookups.
	CheckDeliverability bool
}

// FormatError reports a string that does not match its declared format.
type FormatError struct {
	Value  string
	Format string
}

func (e *FormatError) Error() string {
	article := "a"
	if strings.ContainsRune("aeiou", rune(e.Format[0])) {
		article = "an"
	}
	return fmt.Sprintf("'%s' is not %s '%s'", e.Value, article, e.Format)
}

// ValidateEmail checks the syntax of an address as parsed by net/mail: a
// bare addr-spec whose domain has at least one dot.
func ValidateEmail(value string, opts EmailOptions) error {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Name != "" || addr.Address != value {
		return &FormatError{Value: value, Format: "email"}
	}
	at := strings.LastIndexByte(value, '@')
	domain := value[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return &FormatError{Value: value, Format: "email"}
	}
	if opts.CheckDeliverability && !govalidator.IsExistingEmail(value) {
		return &FormatError{Value: value, Format: "email"}
	}
	return nil
}

// ParseDateTime parses an RFC 3339 timestamp. A value without a timezone
// offset is rejected.
func ParseDateTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, &FormatError{Value: value, Format: "date-time"}
	}
	return t, nil
}
