// Package taxonomy holds the static Subject → Exam → Topic → Subtopic tree
// the bot files questions under, the dotted code parser over it and the
// /menu rendering.
package taxonomy

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Level of a node in the tree.
type Level int

const (
	LevelSubject Level = iota
	LevelExam
	LevelTopic
	LevelSubtopic
)

func (l Level) String() string {
	switch l {
	case LevelSubject:
		return "subject"
	case LevelExam:
		return "exam"
	case LevelTopic:
		return "topic"
	case LevelSubtopic:
		return "subtopic"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Node is one entry of the tree. Children keep document order.
type Node struct {
	ID       string
	Name     string
	Level    Level
	Children []*Node

	index map[string]*Node
}

// Child returns the direct child with the given identifier (exact, case-sensitive).
func (n *Node) Child(id string) (*Node, bool) {
	c, ok := n.index[id]
	return c, ok
}

// Taxonomy is read-only after Load/Decode.
type Taxonomy struct {
	Subjects []*Node

	index map[string]*Node
}

// Subject returns the subject with the given identifier.
func (t *Taxonomy) Subject(id string) (*Node, bool) {
	s, ok := t.index[id]
	return s, ok
}

// child-collection keys per level; the Turkish keys are the ones the
// original config.json uses.
var childKeys = [...][]string{
	LevelSubject: {"sinavlar", "exams"},
	LevelExam:    {"konular", "topics"},
	LevelTopic:   {"alt_konular", "subtopics"},
}

var (
	rootKeys = []string{"dersler", "subjects"}
	nameKeys = []string{"ad", "name"}
)

// Load reads a taxonomy document (JSON or YAML) from path.
func Load(path string) (*Taxonomy, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	t, err := Decode(b)
	if err != nil {
		return nil, fmt.Errorf("taxonomy %s: %w", path, err)
	}
	return t, nil
}

// Decode parses a taxonomy document. Mapping order in the document is kept.
func Decode(data []byte) (*Taxonomy, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("empty document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("top level must be a mapping")
	}
	subjects := lookup(root, rootKeys...)
	if subjects == nil {
		return nil, fmt.Errorf("missing %q", rootKeys[0])
	}
	nodes, index, err := decodeLevel(subjects, LevelSubject, "")
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, errors.New("no subjects defined")
	}
	return &Taxonomy{Subjects: nodes, index: index}, nil
}

func decodeLevel(m *yaml.Node, level Level, where string) ([]*Node, map[string]*Node, error) {
	if m.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("%s%s list must be a mapping (line %d)", where, level, m.Line)
	}
	nodes := make([]*Node, 0, len(m.Content)/2)
	index := make(map[string]*Node, len(m.Content)/2)

	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i], m.Content[i+1]
		id := strings.TrimSpace(key.Value)
		switch {
		case id == "":
			return nil, nil, fmt.Errorf("%sempty %s id (line %d)", where, level, key.Line)
		case strings.Contains(id, "."):
			return nil, nil, fmt.Errorf("%s%s id %q contains '.' (line %d)", where, level, id, key.Line)
		}
		if _, dup := index[id]; dup {
			return nil, nil, fmt.Errorf("%sduplicate %s id %q (line %d)", where, level, id, key.Line)
		}

		n := &Node{ID: id, Level: level}
		path := where + id + "."

		switch {
		case val.Kind == yaml.ScalarNode && level == LevelSubtopic:
			n.Name = strings.TrimSpace(val.Value)
		case val.Kind == yaml.MappingNode:
			if nm := lookup(val, nameKeys...); nm != nil {
				n.Name = strings.TrimSpace(nm.Value)
			}
			if level < LevelSubtopic {
				if kids := lookup(val, childKeys[level]...); kids != nil {
					children, childIndex, err := decodeLevel(kids, level+1, path)
					if err != nil {
						return nil, nil, err
					}
					n.Children, n.index = children, childIndex
				}
			}
		default:
			return nil, nil, fmt.Errorf("%s%s %q: unexpected value (line %d)", where, level, id, val.Line)
		}
		if n.Name == "" {
			return nil, nil, fmt.Errorf("%s%s %q has no name (line %d)", where, level, id, key.Line)
		}
		if n.index == nil {
			n.index = map[string]*Node{}
		}
		nodes = append(nodes, n)
		index[id] = n
	}
	return nodes, index, nil
}

func lookup(m *yaml.Node, keys ...string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for _, k := range keys {
		for i := 0; i+1 < len(m.Content); i += 2 {
			if m.Content[i].Value == k {
				return m.Content[i+1]
			}
		}
	}
	return nil
}
