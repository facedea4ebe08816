package taxonomy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "dersler": {
    "1": {
      "ad": "Matematik",
      "sinavlar": {
        "1": {
          "ad": "AYT",
          "konular": {
            "2": {
              "ad": "Türev",
              "alt_konular": {"3": "Zincir Kuralı", "4": "Limit"}
            },
            "1": {"ad": "Fonksiyonlar"}
          }
        }
      }
    },
    "2": {
      "ad": "Fizik",
      "sinavlar": {
        "1": {"ad": "AYT", "konular": {"1": {"ad": "Kuvvet", "alt_konular": {"2": "Bağıl Hareket"}}}}
      }
    }
  }
}`

func mustDecode(t *testing.T, doc string) *Taxonomy {
	t.Helper()
	tx, err := Decode([]byte(doc))
	require.NoError(t, err)
	return tx
}

func TestDecode_KeepsDocumentOrder(t *testing.T) {
	tx := mustDecode(t, sampleJSON)

	require.Len(t, tx.Subjects, 2)
	assert.Equal(t, "Matematik", tx.Subjects[0].Name)
	assert.Equal(t, "Fizik", tx.Subjects[1].Name)

	topics := tx.Subjects[0].Children[0].Children
	require.Len(t, topics, 2)
	assert.Equal(t, "2", topics[0].ID)
	assert.Equal(t, "1", topics[1].ID)
	assert.Equal(t, LevelSubtopic, topics[0].Children[0].Level)
}

func TestDecode_YAMLWithEnglishKeys(t *testing.T) {
	tx := mustDecode(t, `
subjects:
  m:
    name: Math
    exams:
      tyt:
        name: TYT
        topics:
          geo:
            name: Geometry
            subtopics:
              tri: Triangles
`)
	p, ok := tx.Parse("m.tyt.geo.tri")
	require.True(t, ok)
	assert.Equal(t, []string{"Math", "TYT", "Geometry", "Triangles"}, p.FolderPath)
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":        ``,
		"no subjects":  `{"dersler": {}}`,
		"missing root": `{"x": 1}`,
		"dotted id":    `{"dersler": {"1.2": {"ad": "A"}}}`,
		"no name":      `{"dersler": {"1": {"sinavlar": {}}}}`,
		"duplicate":    "dersler:\n  a: {ad: A}\n  a: {ad: B}\n",
		"scalar exam":  `{"dersler": {"1": {"ad": "A", "sinavlar": {"1": "x"}}}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o600))

	tx, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, tx.Subjects, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	tx := mustDecode(t, sampleJSON)

	tests := []struct {
		code     string
		ok       bool
		path     []string
		subtopic string
		canon    string
	}{
		{code: "1.1.2", ok: true, path: []string{"Matematik", "AYT", "Türev"}, canon: "1.1.2"},
		{code: "1.1.2.3", ok: true, path: []string{"Matematik", "AYT", "Türev", "Zincir Kuralı"}, subtopic: "Zincir Kuralı", canon: "1.1.2.3"},
		{code: " 2.1.1.2 ", ok: true, path: []string{"Fizik", "AYT", "Kuvvet", "Bağıl Hareket"}, subtopic: "Bağıl Hareket", canon: "2.1.1.2"},
		{code: "1.1.2.9", ok: true, path: []string{"Matematik", "AYT", "Türev"}, canon: "1.1.2"},
		{code: "1.1", ok: false},
		{code: "9.9.9", ok: false},
		{code: "9.1.2.3", ok: false},
		{code: "1.9.2.3", ok: false},
		{code: "1.1.9.3", ok: false},
		{code: "1..2", ok: false},
		{code: "1.1.2.3.1", ok: false},
		{code: "", ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			p, ok := tx.Parse(tc.code)
			require.Equal(t, tc.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tc.path, p.FolderPath)
			assert.Equal(t, tc.subtopic, p.Subtopic)
			assert.Equal(t, tc.canon, p.Code)
			assert.Equal(t, strings.TrimSpace(tc.code), p.Raw)
		})
	}
}

func TestParse_CaseSensitive(t *testing.T) {
	tx := mustDecode(t, `subjects: {m: {name: Math, exams: {a: {name: A, topics: {t: {name: T}}}}}}`)
	_, ok := tx.Parse("M.a.t")
	assert.False(t, ok)
	_, ok = tx.Parse("m.a.t")
	assert.True(t, ok)
}

func TestResolves(t *testing.T) {
	tx := mustDecode(t, sampleJSON)
	assert.True(t, tx.Resolves("1.1.2"))
	assert.True(t, tx.Resolves("1.1.2.3"))
	assert.False(t, tx.Resolves("1.1.2.7"))
	assert.False(t, tx.Resolves("1.1"))
}

func TestRenderMenu(t *testing.T) {
	tx := mustDecode(t, sampleJSON)
	menu := RenderMenu(tx, nil)

	assert.True(t, strings.HasPrefix(menu, MenuHeader+"\n\n"))
	assert.Contains(t, menu, "*1. Matematik*\n")
	assert.Contains(t, menu, "  1.1 - AYT\n")
	assert.Contains(t, menu, "    1.1.2 - Türev\n")
	assert.Contains(t, menu, "      1.1.2.3 - Zincir Kuralı\n")
	assert.Less(t, strings.Index(menu, "Matematik"), strings.Index(menu, "Fizik"))

	escaped := RenderMenu(tx, strings.ToUpper)
	assert.Contains(t, escaped, "MATEMATIK")
}

func bigTaxonomy(t *testing.T, subjects, topics int) *Taxonomy {
	t.Helper()
	var b strings.Builder
	b.WriteString("dersler:\n")
	for s := 1; s <= subjects; s++ {
		fmt.Fprintf(&b, "  %q:\n    ad: Ders %d\n    sinavlar:\n      \"1\":\n        ad: Sınav\n        konular:\n", fmt.Sprint(s), s)
		for k := 1; k <= topics; k++ {
			fmt.Fprintf(&b, "          %q: {ad: \"Konu numarası %d olan oldukça uzun bir başlık\"}\n", fmt.Sprint(k), k)
		}
	}
	return mustDecode(t, b.String())
}

func TestSplitMessage_WholeParagraphs(t *testing.T) {
	tx := bigTaxonomy(t, 8, 20)
	menu := RenderMenu(tx, nil)
	require.Greater(t, len(menu), 4000)

	msgs := SplitMessage(menu, 4000)
	require.GreaterOrEqual(t, len(msgs), 2)

	blocks := map[string]bool{}
	for _, b := range strings.Split(menu, "\n\n") {
		if b != "" {
			blocks[b] = true
		}
	}
	var joined strings.Builder
	for _, m := range msgs {
		assert.LessOrEqual(t, len(m), 4000)
		for _, b := range strings.Split(strings.TrimSuffix(m, "\n\n"), "\n\n") {
			assert.True(t, blocks[b], "message contains a partial paragraph: %q", b)
		}
		joined.WriteString(m)
	}
	assert.Equal(t, menu, joined.String())
}

func TestSplitMessage_Short(t *testing.T) {
	assert.Equal(t, []string{"abc"}, SplitMessage("abc", 4000))
}

func TestSplitMessage_OversizedParagraphKeepsLines(t *testing.T) {
	lines := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		lines = append(lines, fmt.Sprintf("line %02d xxxxxxxxxxxxxxxxxxxx", i))
	}
	text := "head\n\n" + strings.Join(lines, "\n") + "\n\n"

	msgs := SplitMessage(text, 200)
	require.Greater(t, len(msgs), 2)
	seen := 0
	for _, m := range msgs {
		assert.LessOrEqual(t, len(m), 200)
		for _, l := range strings.Split(strings.TrimRight(m, "\n"), "\n") {
			if strings.HasPrefix(l, "line ") {
				assert.Len(t, l, len(lines[0]))
				seen++
			}
		}
	}
	assert.Equal(t, 50, seen)
}
