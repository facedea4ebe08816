package questions_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sorubank-bot/api/internal/drive"
	"sorubank-bot/api/internal/drive/drivetest"
	"sorubank-bot/api/internal/questions"
	"sorubank-bot/api/internal/taxonomy"
)

const tax = `
dersler:
  "1":
    ad: Matematik
    sinavlar:
      "1":
        ad: AYT
        konular:
          "2":
            ad: Türev
            alt_konular:
              "3": Zincir Kuralı
`

func TestFileName(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC)
	assert.Equal(t, "1.1.2.3.4_ali_09-05.jpg", questions.FileName("1.1.2.3", 4, "ali", at, "jpg"))
	assert.Equal(t, "1.1.2.1_john-doe_09-05.png", questions.FileName("1.1.2", 1, "john_doe", at, "png"))
	assert.Equal(t, "1.1.2.1_Ayşe-Nur_09-05.jpg", questions.FileName("1.1.2", 1, " Ayşe Nur ", at, ""))
	assert.Equal(t, "1.1.2.1_anonim_09-05.jpg", questions.FileName("1.1.2", 1, "", at, ""))
}

func TestLabelAndSubmitter(t *testing.T) {
	name := "1.1.2.3.4_ali_09-05.jpg"
	assert.Equal(t, "1.1.2.3.4", questions.Label(name))
	assert.Equal(t, "ali", questions.Submitter(name))

	assert.Equal(t, "scan", questions.Label("scan.png"))
	assert.Equal(t, "", questions.Submitter("scan.png"))
}

type fixture struct {
	svc     *questions.Service
	backend *drivetest.Backend
	storage *drive.Storage
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	tx, err := taxonomy.Decode([]byte(tax))
	require.NoError(t, err)
	b := drivetest.New()
	st := drive.NewStorage(b, "SoruBankasi", nil)
	return fixture{svc: questions.NewService(tx, st, nil), backend: b, storage: st}
}

func (f *fixture) seed(t *testing.T, path []string, code string, n int) string {
	t.Helper()
	folder, err := f.storage.EnsureFolderPath(context.Background(), path)
	require.NoError(t, err)
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		f.backend.Put(folder, questions.FileName(code, i, "ali", at, "jpg"), "image/jpeg", []byte{0xFF, 0xD8, byte(i)})
	}
	return folder
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.List(ctx, "9.9.9")
	assert.ErrorIs(t, err, questions.ErrInvalidCode)

	l, err := f.svc.List(ctx, "1.1.2")
	require.NoError(t, err)
	assert.Empty(t, l.Entries, "missing folder lists as empty")
	assert.Equal(t, 1, f.backend.Calls["create"], "only the root folder was created")

	f.seed(t, []string{"Matematik", "AYT", "Türev"}, "1.1.2", 2)
	l, err = f.svc.List(ctx, "1.1.2")
	require.NoError(t, err)
	require.Len(t, l.Entries, 2)
	assert.Equal(t, questions.Entry{Index: 1, Label: "1.1.2.1", Submitter: "ali", Link: l.Entries[0].Link}, l.Entries[0])
	assert.Equal(t, "1.1.2.2", l.Entries[1].Label)
}

func TestList_BackendFailure(t *testing.T) {
	f := newFixture(t)
	f.backend.Fail["find"] = true
	_, err := f.svc.List(context.Background(), "1.1.2")
	assert.ErrorIs(t, err, drive.ErrBackend)
}

func TestSelect(t *testing.T) {
	f := newFixture(t)

	sel, ok := f.svc.Select("1.1.2")
	require.True(t, ok)
	assert.Zero(t, sel.Seq)

	sel, ok = f.svc.Select("1.1.2.3")
	require.True(t, ok)
	assert.Zero(t, sel.Seq, "3 is a subtopic, so the whole subtopic folder")
	assert.Equal(t, "Zincir Kuralı", sel.Parsed.Subtopic)

	sel, ok = f.svc.Select("1.1.2.3.1")
	require.True(t, ok)
	assert.Equal(t, 1, sel.Seq)
	assert.Equal(t, "1.1.2.3", sel.Parsed.Code)

	sel, ok = f.svc.Select("1.1.2.7")
	require.True(t, ok)
	assert.Equal(t, 7, sel.Seq)
	assert.Equal(t, "1.1.2", sel.Parsed.Code)

	for _, bad := range []string{"1.1", "9.9.9", "1.1.2.x", "1.1.2.0", "1.1.2.3.1.1", ""} {
		_, ok := f.svc.Select(bad)
		assert.False(t, ok, bad)
	}
}

func TestCollect_SingleQuestion(t *testing.T) {
	f := newFixture(t)
	f.seed(t, []string{"Matematik", "AYT", "Türev"}, "1.1.2", 3)

	c, err := f.svc.Collect(context.Background(), []string{"1.1.2.2"})
	require.NoError(t, err)
	require.Len(t, c.Images, 1)
	assert.Equal(t, []byte{0xFF, 0xD8, 2}, c.Images[0])
	assert.Equal(t, 1, f.backend.Downloads())
}

func TestCollect_WholeFolderInNameOrder(t *testing.T) {
	f := newFixture(t)
	f.seed(t, []string{"Matematik", "AYT", "Türev"}, "1.1.2", 3)

	c, err := f.svc.Collect(context.Background(), []string{"1.1.2"})
	require.NoError(t, err)
	require.Len(t, c.Images, 3)
	for i, img := range c.Images {
		assert.Equal(t, byte(i+1), img[2])
	}
}

func TestCollect_ArgumentOrderAndSkips(t *testing.T) {
	f := newFixture(t)
	f.seed(t, []string{"Matematik", "AYT", "Türev"}, "1.1.2", 2)
	sub := f.seed(t, []string{"Matematik", "AYT", "Türev", "Zincir Kuralı"}, "1.1.2.3", 1)
	require.NotEmpty(t, sub)

	c, err := f.svc.Collect(context.Background(), []string{"1.1.2.3", "bogus", "1.1.2.2"})
	require.NoError(t, err)
	require.Len(t, c.Images, 2)
	assert.Equal(t, []string{"bogus"}, c.Skipped)
	assert.Equal(t, byte(1), c.Images[0][2])
	assert.Equal(t, byte(2), c.Images[1][2])
}

func TestCollect_NothingFound(t *testing.T) {
	f := newFixture(t)
	c, err := f.svc.Collect(context.Background(), []string{"1.1.2"})
	require.NoError(t, err)
	assert.Empty(t, c.Images)
}

func TestCollect_DownloadFailure(t *testing.T) {
	f := newFixture(t)
	f.seed(t, []string{"Matematik", "AYT", "Türev"}, "1.1.2", 2)
	f.backend.Fail["download"] = true

	c, err := f.svc.Collect(context.Background(), []string{"1.1.2"})
	assert.ErrorIs(t, err, drive.ErrBackend)
	assert.Equal(t, 2, c.Failed)
}
