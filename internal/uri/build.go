package uri

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// BuildConnectionString is the inverse of Parse: it renders components back
// into a URI string such that parsing the output reproduces the same
// components. Lossy by design: query keys with empty values are dropped,
// matching the parser's treatment of empty values. An Element with no Path
// is emitted as an explicit element query parameter.
func BuildConnectionString(p ParsedURI) string {
	var b strings.Builder
	b.WriteString(p.Scheme)
	b.WriteString("://")

	if p.User != "" || p.Password != "" {
		b.WriteString(escape(p.User))
		if p.Password != "" {
			b.WriteString(":")
			b.WriteString(escape(p.Password))
		}
		b.WriteString("@")
	}

	if strings.Contains(p.Host, ":") {
		b.WriteString("[")
		b.WriteString(p.Host)
		b.WriteString("]")
	} else {
		b.WriteString(escape(p.Host))
	}

	if p.Port > 0 {
		b.WriteString(":")
		b.WriteString(strconv.Itoa(p.Port))
	}

	if p.Path != "" {
		b.WriteString(escapePath(p.Path))
	}

	query := make(map[string]string, len(p.Query)+1)
	for k, v := range p.Query {
		if v != "" {
			query[k] = v
		}
	}
	if p.Path == "" && p.Element != "" {
		query["element"] = p.Element
	}
	if len(query) > 0 {
		keys := make([]string, 0, len(query))
		for k := range query {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("?")
		for i, k := range keys {
			if i > 0 {
				b.WriteString("&")
			}
			b.WriteString(escape(k))
			b.WriteString("=")
			b.WriteString(escape(query[k]))
		}
	}

	if p.Fragment != "" {
		b.WriteString("#")
		b.WriteString(escape(p.Fragment))
	}

	return b.String()
}

// escape percent-encodes reserved characters, using %20 rather than "+"
// for spaces so the parser's decoding reads it back exactly.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// escapePath escapes each path segment, keeping the separators.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = escape(seg)
	}
	return strings.Join(segments, "/")
}
