// Package ingest decodes /api/process submissions.
package ingest

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrMissingBoundary is returned when the content type carries no multipart boundary.
	ErrMissingBoundary = errors.New("missing boundary")
	// ErrMissingField is returned when audio or email is absent after parsing.
	ErrMissingField = errors.New("missing audio or email")
)

var (
	reName     = regexp.MustCompile(`(?:^|[;\s])name="([^"]+)"`)
	reFilename = regexp.MustCompile(`filename="([^"]+)"`)

	headerSep = []byte("\r\n\r\n")
)

// Field is one decoded form part: a file when Filename is set, a string otherwise.
type Field struct {
	Value    string
	Filename string
	Data     []byte
}

// IsFile reports whether the part carried a filename attribute.
func (f Field) IsFile() bool {
	return f.Filename != ""
}

// Form maps field names to decoded parts. A repeated name keeps the last part.
type Form map[string]Field

// BoundaryFromContentType extracts the boundary token from a multipart content type.
func BoundaryFromContentType(contentType string) (string, error) {
	_, after, ok := strings.Cut(contentType, "boundary=")
	if !ok {
		return "", ErrMissingBoundary
	}
	if i := strings.IndexByte(after, ';'); i >= 0 {
		after = after[:i]
	}
	boundary := strings.Trim(strings.TrimSpace(after), `"`)
	if boundary == "" {
		return "", ErrMissingBoundary
	}
	return boundary, nil
}

// Parse splits body on --boundary delimiters. Each part is split once on the
// first blank line into headers and content; the name and optional filename
// attributes are read from the headers. Parts without a name are skipped.
func Parse(body []byte, boundary string) (Form, error) {
	if boundary == "" {
		return nil, ErrMissingBoundary
	}
	delim := []byte("--" + boundary)
	form := make(Form)

	i := bytes.Index(body, delim)
	if i < 0 {
		return form, nil
	}
	rest := body[i+len(delim):]
	for {
		if bytes.HasPrefix(rest, []byte("--")) {
			break // closing delimiter
		}
		rest = trimLeadingNewline(rest)

		end := bytes.Index(rest, delim)
		if end < 0 {
			break
		}
		part := trimTrailingNewline(rest[:end])
		rest = rest[end+len(delim):]

		name, field, ok := parsePart(part)
		if ok {
			form[name] = field
		}
	}
	return form, nil
}

func parsePart(part []byte) (string, Field, bool) {
	h := bytes.Index(part, headerSep)
	if h < 0 {
		return "", Field{}, false
	}
	header := string(part[:h])
	content := part[h+len(headerSep):]

	m := reName.FindStringSubmatch(header)
	if m == nil {
		return "", Field{}, false
	}
	if fm := reFilename.FindStringSubmatch(header); fm != nil {
		data := make([]byte, len(content))
		copy(data, content)
		return m[1], Field{Filename: fm[1], Data: data}, true
	}
	return m[1], Field{Value: string(content)}, true
}

func trimLeadingNewline(b []byte) []byte {
	if bytes.HasPrefix(b, []byte("\r\n")) {
		return b[2:]
	}
	if bytes.HasPrefix(b, []byte("\n")) {
		return b[1:]
	}
	return b
}

func trimTrailingNewline(b []byte) []byte {
	if bytes.HasSuffix(b, []byte("\r\n")) {
		return b[:len(b)-2]
	}
	if bytes.HasSuffix(b, []byte("\n")) {
		return b[:len(b)-1]
	}
	return b
}
