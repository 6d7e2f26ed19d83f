// Package uri parses resource URIs of the form
// scheme://[user[:password]@]host[:port][/path][?key=value...][#fragment].
//
// Percent-encoding policy: credentials, host, path, and query values are
// percent-decoded exactly once at parse time. The Raw field keeps the
// original string with its encoding intact.
package uri

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ParsedURI is the structured form of a resource URI.
// Port 0 means absent. A root path "/" collapses to the empty string.
type ParsedURI struct {
	Scheme   string            `json:"scheme"`
	User     string            `json:"user,omitempty"`
	Password string            `json:"password,omitempty"`
	Host     string            `json:"host,omitempty"`
	Port     int               `json:"port,omitempty"`
	Path     string            `json:"path,omitempty"`
	Element  string            `json:"element,omitempty"`
	Query    map[string]string `json:"query,omitempty"`
	Fragment string            `json:"fragment,omitempty"`
	Raw      string            `json:"raw"`
}

// Resource returns everything after "scheme://" in the original string,
// with query and fragment stripped. Adapters that take a file path or a
// bare name consume this rather than the decomposed fields.
func (p ParsedURI) Resource() string {
	rest := p.Raw
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// SyntaxError reports a malformed or disallowed resource URI.
type SyntaxError struct {
	URI string
	Msg string
}

func (e *SyntaxError) Error() string {
	if e.URI == "" {
		return fmt.Sprintf("invalid resource URI: %s", e.Msg)
	}
	return fmt.Sprintf("invalid resource URI %q: %s", e.URI, e.Msg)
}

// Option adjusts parsing behavior
type Option func(*parseOptions)

type parseOptions struct {
	defaultPort    int
	allowedSchemes []string
	requirePath    bool
}

// WithDefaultPort sets the port used when the URI carries none
func WithDefaultPort(port int) Option {
	return func(o *parseOptions) { o.defaultPort = port }
}

// WithAllowedSchemes restricts parsing to the given schemes.
// A scheme outside the set is a syntax error listing the set.
func WithAllowedSchemes(schemes ...string) Option {
	return func(o *parseOptions) { o.allowedSchemes = schemes }
}

// Parse turns a raw resource URI into its structured form.
//
// When no explicit element query parameter is present and the path is
// non-empty, Element derives from the first path segment with the leading
// slash stripped.
func Parse(raw string, opts ...Option) (ParsedURI, error) {
	var o parseOptions
	for _, opt := range opts {
		opt(&o)
	}

	if strings.TrimSpace(raw) == "" {
		return ParsedURI{}, &SyntaxError{Msg: "empty string"}
	}

	scheme, rest, ok := splitScheme(raw)
	if !ok {
		return ParsedURI{}, &SyntaxError{URI: raw, Msg: "missing scheme delimiter \"://\""}
	}

	if len(o.allowedSchemes) > 0 && !containsString(o.allowedSchemes, scheme) {
		sorted := append([]string(nil), o.allowedSchemes...)
		sort.Strings(sorted)
		return ParsedURI{}, &SyntaxError{
			URI: raw,
			Msg: fmt.Sprintf("scheme %q not allowed (allowed: %s)", scheme, strings.Join(sorted, ", ")),
		}
	}

	p := ParsedURI{Scheme: scheme, Raw: raw}

	// Fragment first, then query, then authority/path.
	if i := strings.Index(rest, "#"); i >= 0 {
		p.Fragment = decode(rest[i+1:])
		rest = rest[:i]
	}
	if i := strings.Index(rest, "?"); i >= 0 {
		p.Query = parseQuery(rest[i+1:])
		rest = rest[:i]
	}

	authority := rest
	if i := strings.Index(rest, "/"); i >= 0 {
		authority = rest[:i]
		p.Path = decode(rest[i:])
	}

	if err := parseAuthority(authority, &p); err != nil {
		return ParsedURI{}, &SyntaxError{URI: raw, Msg: err.Error()}
	}

	if p.Port == 0 {
		p.Port = o.defaultPort
	}

	// Root path is represented as absent.
	if p.Path == "/" {
		p.Path = ""
	}

	if el, ok := p.Query["element"]; ok {
		p.Element = el
	} else if p.Path != "" {
		seg := strings.TrimPrefix(p.Path, "/")
		if i := strings.Index(seg, "/"); i >= 0 {
			seg = seg[:i]
		}
		p.Element = seg
	}

	return p, nil
}

// RequirePath makes ParseConnectionString reject URIs without an explicit
// path. File-backed schemes (sqlite, xlsx) use it: a bare "scheme://"
// names nothing for them.
func RequirePath() Option {
	return func(o *parseOptions) { o.requirePath = true }
}

// ParseConnectionString parses a URI that must use expectedScheme. A bare
// "scheme://" with nothing after it is accepted and treated as host-less,
// using only the default port — unless RequirePath is given.
func ParseConnectionString(raw, expectedScheme string, defaultPort int, opts ...Option) (ParsedURI, error) {
	var o parseOptions
	for _, opt := range opts {
		opt(&o)
	}

	prefix := expectedScheme + "://"
	if !strings.HasPrefix(raw, prefix) {
		return ParsedURI{}, &SyntaxError{
			URI: raw,
			Msg: fmt.Sprintf("expected %q connection string", prefix),
		}
	}
	if raw == prefix {
		if o.requirePath {
			return ParsedURI{}, &SyntaxError{
				URI: raw,
				Msg: fmt.Sprintf("scheme %q requires an explicit path", expectedScheme),
			}
		}
		return ParsedURI{Scheme: expectedScheme, Port: defaultPort, Raw: raw}, nil
	}

	parsed, err := Parse(raw, WithDefaultPort(defaultPort), WithAllowedSchemes(expectedScheme))
	if err != nil {
		return ParsedURI{}, err
	}
	if o.requirePath && parsed.Path == "" {
		return ParsedURI{}, &SyntaxError{
			URI: raw,
			Msg: fmt.Sprintf("scheme %q requires an explicit path", expectedScheme),
		}
	}
	return parsed, nil
}

// splitScheme splits "scheme://rest"; returns ok=false when the delimiter
// is missing or the scheme is empty.
func splitScheme(raw string) (scheme, rest string, ok bool) {
	i := strings.Index(raw, "://")
	if i <= 0 {
		return "", "", false
	}
	return raw[:i], raw[i+3:], true
}

// parseAuthority fills user, password, host, and port from the
// [user[:password]@]host[:port] form. IPv6 literals in brackets are
// unwrapped.
func parseAuthority(authority string, p *ParsedURI) error {
	if authority == "" {
		return nil
	}

	hostport := authority
	if i := strings.LastIndex(authority, "@"); i >= 0 {
		userinfo := authority[:i]
		hostport = authority[i+1:]
		if j := strings.Index(userinfo, ":"); j >= 0 {
			p.User = decode(userinfo[:j])
			p.Password = decode(userinfo[j+1:])
		} else {
			p.User = decode(userinfo)
		}
	}

	if strings.HasPrefix(hostport, "[") {
		end := strings.Index(hostport, "]")
		if end < 0 {
			return fmt.Errorf("unterminated IPv6 literal in %q", hostport)
		}
		p.Host = hostport[1:end]
		tail := hostport[end+1:]
		if tail == "" {
			return nil
		}
		if !strings.HasPrefix(tail, ":") {
			return fmt.Errorf("unexpected characters after IPv6 literal in %q", hostport)
		}
		return parsePort(tail[1:], p)
	}

	if i := strings.LastIndex(hostport, ":"); i >= 0 {
		p.Host = decode(hostport[:i])
		return parsePort(hostport[i+1:], p)
	}
	p.Host = decode(hostport)
	return nil
}

func parsePort(s string, p *ParsedURI) error {
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %q", s)
	}
	p.Port = port
	return nil
}

// parseQuery splits key=value pairs on "&". A key without "=" gets the
// value "true"; keys with an empty value are dropped. Duplicate keys keep
// the last value.
func parseQuery(s string) map[string]string {
	q := make(map[string]string)
	for _, pair := range strings.Split(s, "&") {
		if pair == "" {
			continue
		}
		key, value, hasValue := strings.Cut(pair, "=")
		if key == "" {
			continue
		}
		switch {
		case !hasValue:
			q[decode(key)] = "true"
		case value != "":
			q[decode(key)] = decode(value)
		}
	}
	if len(q) == 0 {
		return nil
	}
	return q
}

// decode percent-decodes once, keeping the input verbatim when the
// encoding is malformed.
func decode(s string) string {
	out, err := url.QueryUnescape(strings.ReplaceAll(s, "+", "%2B"))
	if err != nil {
		return s
	}
	return out
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
