package questions

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"sorubank-bot/api/internal/drive"
	"sorubank-bot/api/internal/taxonomy"
)

// ErrInvalidCode means the code does not resolve against the taxonomy.
var ErrInvalidCode = errors.New("questions: invalid code")

// Storage is the read side of drive.Storage.
type Storage interface {
	FindFolderPath(ctx context.Context, path []string) (string, error)
	ListImages(ctx context.Context, folderID string) ([]drive.File, error)
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

type Service struct {
	Tax     *taxonomy.Taxonomy
	Storage Storage
	Log     *zap.Logger
}

func NewService(tax *taxonomy.Taxonomy, st Storage, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Tax: tax, Storage: st, Log: log.Named("questions")}
}

// Entry is one line of a /list reply.
type Entry struct {
	Index     int
	Label     string
	Submitter string
	Link      string
}

type Listing struct {
	Parsed  taxonomy.ParsedCode
	Entries []Entry
}

// List returns the questions stored for code. A folder that was never
// created lists as empty.
func (s *Service) List(ctx context.Context, code string) (Listing, error) {
	parsed, ok := s.Tax.Parse(code)
	if !ok {
		return Listing{}, ErrInvalidCode
	}
	out := Listing{Parsed: parsed}

	files, err := s.folderImages(ctx, parsed)
	if err != nil {
		return out, err
	}
	for i, f := range files {
		out.Entries = append(out.Entries, Entry{
			Index:     i + 1,
			Label:     Label(f.Name),
			Submitter: Submitter(f.Name),
			Link:      f.ViewLink,
		})
	}
	return out, nil
}

func (s *Service) folderImages(ctx context.Context, parsed taxonomy.ParsedCode) ([]drive.File, error) {
	folder, err := s.Storage.FindFolderPath(ctx, parsed.FolderPath)
	if errors.Is(err, drive.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.Storage.ListImages(ctx, folder)
}

// Selection is one /pdf argument: a whole folder (Seq == 0) or one question.
type Selection struct {
	Arg    string
	Parsed taxonomy.ParsedCode
	Seq    int
}

// Select interprets a /pdf argument. A code that resolves completely
// selects its whole folder; otherwise a trailing positive integer after a
// completely resolving prefix selects that question number.
func (s *Service) Select(arg string) (Selection, bool) {
	arg = strings.TrimSpace(arg)
	if s.Tax.Resolves(arg) {
		p, _ := s.Tax.Parse(arg)
		return Selection{Arg: arg, Parsed: p}, true
	}
	i := strings.LastIndexByte(arg, '.')
	if i < 0 {
		return Selection{}, false
	}
	base, num := arg[:i], arg[i+1:]
	n, err := strconv.Atoi(num)
	if err != nil || n < 1 || !s.Tax.Resolves(base) {
		return Selection{}, false
	}
	p, _ := s.Tax.Parse(base)
	return Selection{Arg: arg, Parsed: p, Seq: n}, true
}

// Collection is the outcome of gathering images for /pdf.
type Collection struct {
	Images  [][]byte
	Skipped []string // arguments that did not parse
	Failed  int      // backend failures (folders or files)
}

// Collect downloads the images selected by args, in argument order and
// name order within a folder. Backend failures are counted and skipped; the
// error is non-nil only when nothing could be collected because of them.
func (s *Service) Collect(ctx context.Context, args []string) (Collection, error) {
	var c Collection
	var lastErr error

	for _, arg := range args {
		sel, ok := s.Select(arg)
		if !ok {
			s.Log.Info("pdf argument skipped", zap.String("arg", arg))
			c.Skipped = append(c.Skipped, arg)
			continue
		}
		files, err := s.folderImages(ctx, sel.Parsed)
		if err != nil {
			c.Failed++
			lastErr = err
			continue
		}
		marker := ""
		if sel.Seq > 0 {
			marker = SelectionMarker(sel.Parsed.Code, sel.Seq)
		}
		for _, f := range files {
			if marker != "" && !strings.Contains(f.Name, marker) {
				continue
			}
			b, err := s.Storage.DownloadFile(ctx, f.ID)
			if err != nil {
				c.Failed++
				lastErr = err
				continue
			}
			c.Images = append(c.Images, b)
		}
	}
	if len(c.Images) == 0 && lastErr != nil {
		return c, lastErr
	}
	return c, nil
}
