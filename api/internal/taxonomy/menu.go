package taxonomy

import (
	"fmt"
	"strings"
)

// MenuHeader opens the rendered menu.
const MenuHeader = "📚 *DERS VE KONU YAPISI*"

// RenderMenu renders the whole tree, one paragraph per subject. esc is
// applied to display names (nil leaves them as is).
func RenderMenu(t *Taxonomy, esc func(string) string) string {
	if esc == nil {
		esc = func(s string) string { return s }
	}
	var b strings.Builder
	b.WriteString(MenuHeader)
	b.WriteString("\n\n")

	for _, s := range t.Subjects {
		fmt.Fprintf(&b, "*%s. %s*\n", s.ID, esc(s.Name))
		for _, e := range s.Children {
			fmt.Fprintf(&b, "  %s.%s - %s\n", s.ID, e.ID, esc(e.Name))
			for _, tp := range e.Children {
				fmt.Fprintf(&b, "    %s.%s.%s - %s\n", s.ID, e.ID, tp.ID, esc(tp.Name))
				for _, st := range tp.Children {
					fmt.Fprintf(&b, "      %s.%s.%s.%s - %s\n", s.ID, e.ID, tp.ID, st.ID, esc(st.Name))
				}
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// SplitMessage cuts text into messages of at most limit bytes. Paragraphs
// (blocks separated by a blank line) are packed whole; a paragraph that is
// too large on its own is packed line by line. Lines are never cut, so a
// single line longer than limit is sent alone.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}

	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		if strings.TrimSpace(cur.String()) != "" {
			out = append(out, cur.String())
		}
		cur.Reset()
	}

	for _, block := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(block) == "" {
			continue
		}
		piece := block + "\n\n"
		if cur.Len()+len(piece) <= limit {
			cur.WriteString(piece)
			continue
		}
		flush()
		if len(piece) <= limit {
			cur.WriteString(piece)
			continue
		}
		for _, line := range strings.Split(block, "\n") {
			l := line + "\n"
			if cur.Len()+len(l) > limit {
				flush()
			}
			cur.WriteString(l)
		}
		flush()
	}
	flush()
	return out
}
