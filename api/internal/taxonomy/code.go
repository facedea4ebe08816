package taxonomy

import "strings"

const (
	minSegments = 3
	maxSegments = 4
)

// ParsedCode is a classification code resolved against the taxonomy.
type ParsedCode struct {
	Subject  string
	Exam     string
	Topic    string
	Subtopic string // empty when absent or unresolvable

	// Raw is the code as the user typed it (trimmed).
	Raw string
	// Code is the canonical code made of the resolved segments only.
	Code string
	// FolderPath holds the display names, subtopic last when present.
	FolderPath []string
}

// HasSubtopic reports whether the 4th segment resolved.
func (p ParsedCode) HasSubtopic() bool { return p.Subtopic != "" }

// Breadcrumb renders the folder path as "A > B > C".
func (p ParsedCode) Breadcrumb() string { return strings.Join(p.FolderPath, " > ") }

// Parse resolves a dotted code subject.exam.topic[.subtopic].
// An unresolvable 4th segment is dropped, not rejected.
func (t *Taxonomy) Parse(code string) (ParsedCode, bool) {
	raw := strings.TrimSpace(code)
	seg := strings.Split(raw, ".")
	if len(seg) < minSegments || len(seg) > maxSegments {
		return ParsedCode{}, false
	}

	subject, ok := t.Subject(seg[0])
	if !ok {
		return ParsedCode{}, false
	}
	exam, ok := subject.Child(seg[1])
	if !ok {
		return ParsedCode{}, false
	}
	topic, ok := exam.Child(seg[2])
	if !ok {
		return ParsedCode{}, false
	}

	p := ParsedCode{
		Subject:    subject.Name,
		Exam:       exam.Name,
		Topic:      topic.Name,
		Raw:        raw,
		Code:       strings.Join(seg[:3], "."),
		FolderPath: []string{subject.Name, exam.Name, topic.Name},
	}
	if len(seg) == maxSegments {
		if sub, ok := topic.Child(seg[3]); ok {
			p.Subtopic = sub.Name
			p.Code += "." + sub.ID
			p.FolderPath = append(p.FolderPath, sub.Name)
		}
	}
	return p, true
}

// Resolves reports whether every segment of code resolves, i.e. Parse
// succeeds and nothing was dropped.
func (t *Taxonomy) Resolves(code string) bool {
	p, ok := t.Parse(code)
	return ok && p.Code == p.Raw
}
