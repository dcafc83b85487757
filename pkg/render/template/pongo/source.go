package pongo

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/flosch/pongo2/v6"
)

var (
	// bareReference matches an output tag body that is only a variable path,
	// e.g. "name" or "release.notes.0".
	bareReference = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z0-9_]+)*$`)
	endVerbatim   = regexp.MustCompile(`\{%-?\s*endverbatim\s*-?%\}`)
	verbatimTag   = regexp.MustCompile(`^\{%-?\s*verbatim\s*-?%\}$`)
)

// sourceLoader prepares every template it loads, including templates pulled
// in through include or extends.
type sourceLoader struct {
	inner      pongo2.TemplateLoader
	autoescape bool
}

func (l sourceLoader) Abs(base, name string) string {
	return l.inner.Abs(base, name)
}

func (l sourceLoader) Get(path string) (io.Reader, error) {
	r, err := l.inner.Get(path)
	if err != nil {
		return nil, err
	}
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return strings.NewReader(prepareSource(string(src), l.autoescape)), nil
}

// prepareSource rewrites bare variable output tags so that a reference which
// does not resolve fails evaluation: {{ a.b }} becomes {{ a.b|required:"a.b" }}.
// Everything else, including tags, comments and verbatim blocks, is copied
// byte for byte. With autoescape the whole template is wrapped in an
// autoescape block, which pongo2 does not allow around extends or block tags.
func prepareSource(src string, autoescape bool) string {
	var b strings.Builder
	b.Grow(len(src) + len(src)/4)
	if autoescape {
		b.WriteString("{% autoescape on %}")
	}

	rest := src
	for rest != "" {
		i := strings.IndexByte(rest, '{')
		if i < 0 || i == len(rest)-1 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:i])
		rest = rest[i:]

		var closer string
		switch rest[1] {
		case '{':
			closer = "}}"
		case '%':
			closer = "%}"
		case '#':
			closer = "#}"
		default:
			b.WriteByte('{')
			rest = rest[1:]
			continue
		}

		end := strings.Index(rest[2:], closer)
		if end < 0 {
			b.WriteString(rest)
			break
		}
		tag := rest[:2+end+2]
		rest = rest[len(tag):]

		switch closer {
		case "}}":
			b.WriteString(rewriteOutput(tag))
		case "%}":
			b.WriteString(tag)
			if verbatimTag.MatchString(tag) {
				loc := endVerbatim.FindStringIndex(rest)
				if loc == nil {
					b.WriteString(rest)
					rest = ""
					continue
				}
				b.WriteString(rest[:loc[1]])
				rest = rest[loc[1]:]
			}
		default:
			b.WriteString(tag)
		}
	}

	if autoescape {
		b.WriteString("{% endautoescape %}")
	}
	return b.String()
}

func rewriteOutput(tag string) string {
	body := tag[2 : len(tag)-2]
	lead, trail := "", ""
	if strings.HasPrefix(body, "-") {
		lead, body = "-", body[1:]
	}
	if strings.HasSuffix(body, "-") {
		trail, body = "-", body[:len(body)-1]
	}
	ref := strings.TrimSpace(body)
	if !bareReference.MatchString(ref) {
		return tag
	}
	return fmt.Sprintf("{{%s %s|required:%q %s}}", lead, ref, ref, trail)
}
