package render

import (
	"fmt"
	"strings"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"

	sectionOpen  = "#highlights"
	sectionClose = "/highlights"
)

// Document-level token names.
var documentTokens = map[string]bool{
	"title":  true,
	"uri":    true,
	"author": true,
}

// Annotation-level token names, valid inside the highlights section.
var annotationTokens = map[string]bool{
	"text":    true,
	"note":    true,
	"tags":    true,
	"created": true,
	"updated": true,
	"link":    true,
	"id":      true,
}

// SyntaxError reports an invalid template.
type SyntaxError struct {
	// Pos is the byte offset of the offending token.
	Pos int

	// Reason describes the problem.
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("template syntax error at offset %d: %s", e.Pos, e.Reason)
}

// Validate checks that every substitution token is recognised and
// structurally closed, independent of any annotation data.
func Validate(template string) error {
	depth := 0
	for pos := 0; ; {
		open := strings.Index(template[pos:], openDelim)
		if open < 0 {
			break
		}
		open += pos

		end := strings.Index(template[open:], closeDelim)
		if end < 0 {
			return &SyntaxError{Pos: open, Reason: "unclosed token"}
		}
		name := strings.TrimSpace(template[open+len(openDelim) : open+end])
		switch {
		case name == sectionOpen:
			if depth > 0 {
				return &SyntaxError{Pos: open, Reason: "nested highlights section"}
			}
			depth++
		case name == sectionClose:
			if depth == 0 {
				return &SyntaxError{Pos: open, Reason: "highlights section closed without opening"}
			}
			depth--
		case name == "":
			return &SyntaxError{Pos: open, Reason: "empty token"}
		case !documentTokens[name] && !annotationTokens[name]:
			return &SyntaxError{Pos: open, Reason: fmt.Sprintf("unknown token %q", name)}
		}
		pos = open + end + len(closeDelim)
	}
	if depth != 0 {
		return &SyntaxError{Pos: len(template), Reason: "unclosed highlights section"}
	}
	return nil
}

// Renderer renders templates with a configured date layout.
type Renderer struct {
	dateLayout string
}

// New creates a renderer. dateTimeFormat uses moment-style tokens
// (e.g. "YYYY-MM-DD HH:mm:ss").
func New(dateTimeFormat string) *Renderer {
	if dateTimeFormat == "" {
		dateTimeFormat = domain.DefaultDateTimeFormat
	}
	return &Renderer{dateLayout: DateLayout(dateTimeFormat)}
}

// Render substitutes document and annotation fields into the template.
// Literal text is preserved verbatim. The highlights section repeats once
// per annotation in the given order. Unknown-but-closed tokens render as
// the empty string so user templates stay forward-compatible.
func (r *Renderer) Render(template string, doc domain.SourceDocument) (string, error) {
	prefix, section, suffix, err := splitSection(template)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(r.substitute(prefix, doc, nil))
	for i := range doc.Annotations {
		b.WriteString(r.substitute(section, doc, &doc.Annotations[i]))
	}
	b.WriteString(r.substitute(suffix, doc, nil))
	return b.String(), nil
}

// splitSection separates the template into the text before, inside and after
// the highlights section. A template without a section renders once with no
// per-annotation part.
func splitSection(template string) (prefix, section, suffix string, err error) {
	openTok, openStart, openEnd := findToken(template, sectionOpen)
	if !openTok {
		if closeTok, pos, _ := findToken(template, sectionClose); closeTok {
			return "", "", "", &SyntaxError{Pos: pos, Reason: "highlights section closed without opening"}
		}
		return template, "", "", nil
	}
	closeTok, closeStart, closeEnd := findToken(template[openEnd:], sectionClose)
	if !closeTok {
		return "", "", "", &SyntaxError{Pos: openStart, Reason: "unclosed highlights section"}
	}
	return template[:openStart],
		template[openEnd : openEnd+closeStart],
		template[openEnd+closeEnd:],
		nil
}

// findToken locates {{name}} and returns its start and the offset just past
// its closing delimiter.
func findToken(s, name string) (found bool, start, end int) {
	for pos := 0; ; {
		open := strings.Index(s[pos:], openDelim)
		if open < 0 {
			return false, 0, 0
		}
		open += pos
		rel := strings.Index(s[open:], closeDelim)
		if rel < 0 {
			return false, 0, 0
		}
		if strings.TrimSpace(s[open+len(openDelim):open+rel]) == name {
			return true, open, open + rel + len(closeDelim)
		}
		pos = open + rel + len(closeDelim)
	}
}

// substitute replaces every token in text. ann is nil outside the
// highlights section, where annotation tokens resolve to empty.
func (r *Renderer) substitute(text string, doc domain.SourceDocument, ann *domain.Annotation) string {
	var b strings.Builder
	for pos := 0; ; {
		open := strings.Index(text[pos:], openDelim)
		if open < 0 {
			b.WriteString(text[pos:])
			return b.String()
		}
		open += pos
		rel := strings.Index(text[open:], closeDelim)
		if rel < 0 {
			// Unclosed trailing delimiter is literal text.
			b.WriteString(text[pos:])
			return b.String()
		}
		b.WriteString(text[pos:open])
		name := strings.TrimSpace(text[open+len(openDelim) : open+rel])
		b.WriteString(r.tokenValue(name, doc, ann))
		pos = open + rel + len(closeDelim)
	}
}

func (r *Renderer) tokenValue(name string, doc domain.SourceDocument, ann *domain.Annotation) string {
	switch name {
	case "title":
		return doc.Title
	case "uri":
		return doc.URI
	case "author":
		if len(doc.Annotations) > 0 {
			return doc.Annotations[0].Owner
		}
		return ""
	}
	if ann == nil {
		return ""
	}
	switch name {
	case "text":
		return ann.Text
	case "note":
		return ann.Note
	case "tags":
		return formatTags(ann.Tags)
	case "created":
		return ann.Created.Format(r.dateLayout)
	case "updated":
		return ann.Updated.Format(r.dateLayout)
	case "link":
		return ann.Link
	case "id":
		return ann.ID
	}
	return ""
}

// formatTags renders tags as space-separated #words, replacing inner
// whitespace so each stays a single tag.
func formatTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, "#"+strings.Join(strings.Fields(t), "-"))
	}
	return strings.Join(out, " ")
}
