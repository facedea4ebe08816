// Package conversation drives the two-step "photo, then code" submission.
//
//	Idle --photo--> AwaitingCode --valid code--> Idle (stored or failed)
//	AwaitingCode --invalid code--> AwaitingCode
//	AwaitingCode --cancel--> Idle
//
// The state of a user is fully described by whether a session.Pending
// exists for them; there is no timeout on AwaitingCode.
package conversation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sorubank-bot/api/internal/drive"
	"sorubank-bot/api/internal/questions"
	"sorubank-bot/api/internal/session"
	"sorubank-bot/api/internal/taxonomy"
	"sorubank-bot/api/internal/util"
)

type State int

const (
	Idle State = iota
	AwaitingCode
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingCode:
		return "awaiting_code"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Filer is the write side of drive.Storage.
type Filer interface {
	EnsureFolderPath(ctx context.Context, path []string) (string, error)
	CountImages(ctx context.Context, folderID string) (int, error)
	UploadImage(ctx context.Context, content []byte, filename, folderID string) (drive.File, error)
}

// Record describes a stored question for the Journal.
type Record struct {
	UserID    int64
	Submitter string
	Code      string
	Seq       int
	File      drive.File
	At        time.Time
}

// Journal is told about every successful submission.
type Journal interface {
	Record(ctx context.Context, r Record) error
}

// JournalFunc adapts a function to Journal.
type JournalFunc func(ctx context.Context, r Record) error

func (f JournalFunc) Record(ctx context.Context, r Record) error { return f(ctx, r) }

// Photo is an incoming picture with its sender's display name.
type Photo struct {
	Image     []byte
	Submitter string
}

// Kind of a text turn's outcome.
type Kind int

const (
	NoPending   Kind = iota // text without a preceding photo
	InvalidCode             // still AwaitingCode
	Stored
	Failed // backend failure, pending dropped
)

type Outcome struct {
	Kind   Kind
	State  State
	Parsed taxonomy.ParsedCode
	Seq    int
	File   drive.File
}

type Machine struct {
	Tax      *taxonomy.Taxonomy
	Sessions session.Store
	Files    Filer
	Journal  Journal // optional
	Log      *zap.Logger
	Now      func() time.Time
}

func NewMachine(tax *taxonomy.Taxonomy, sessions session.Store, files Filer, log *zap.Logger) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Machine{Tax: tax, Sessions: sessions, Files: files, Log: log.Named("conversation"), Now: time.Now}
}

// State reports where userID is in the conversation.
func (m *Machine) State(ctx context.Context, userID int64) (State, error) {
	_, ok, err := m.Sessions.Get(ctx, userID)
	if err != nil {
		return Idle, err
	}
	if ok {
		return AwaitingCode, nil
	}
	return Idle, nil
}

// OnPhoto records the photo as the user's pending submission. A photo sent
// while a code is awaited replaces the earlier one.
func (m *Machine) OnPhoto(ctx context.Context, userID int64, p Photo) (State, error) {
	pending := session.Pending{
		Image:     p.Image,
		MIME:      util.SniffImageMIME(p.Image),
		Submitter: p.Submitter,
		CreatedAt: m.Now(),
	}
	if err := m.Sessions.Put(ctx, userID, pending); err != nil {
		return Idle, fmt.Errorf("save pending: %w", err)
	}
	m.Log.Debug("photo pending", zap.Int64("user_id", userID), zap.Int("bytes", len(p.Image)))
	return AwaitingCode, nil
}

// OnText treats text as the classification code for the pending photo.
func (m *Machine) OnText(ctx context.Context, userID int64, text string) (Outcome, error) {
	pending, ok, err := m.Sessions.Get(ctx, userID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load pending: %w", err)
	}
	if !ok {
		return Outcome{Kind: NoPending, State: Idle}, nil
	}

	parsed, ok := m.Tax.Parse(text)
	if !ok {
		return Outcome{Kind: InvalidCode, State: AwaitingCode}, nil
	}

	out := m.store(ctx, userID, pending, parsed)
	if err := m.Sessions.Delete(ctx, userID); err != nil {
		m.Log.Error("drop pending", zap.Int64("user_id", userID), zap.Error(err))
	}
	return out, nil
}

func (m *Machine) store(ctx context.Context, userID int64, p session.Pending, parsed taxonomy.ParsedCode) Outcome {
	failed := Outcome{Kind: Failed, State: Idle, Parsed: parsed}

	folder, err := m.Files.EnsureFolderPath(ctx, parsed.FolderPath)
	if err != nil {
		return failed
	}
	n, err := m.Files.CountImages(ctx, folder)
	if err != nil {
		return failed
	}
	// two submissions to one folder at once can get the same number
	seq := n + 1
	now := m.Now()
	name := questions.FileName(parsed.Code, seq, p.Submitter, now, util.ExtForMIME(p.MIME))

	f, err := m.Files.UploadImage(ctx, p.Image, name, folder)
	if err != nil {
		return failed
	}
	m.Log.Info("question stored",
		zap.Int64("user_id", userID),
		zap.String("code", parsed.Code),
		zap.Int("seq", seq),
		zap.String("file", f.Name),
	)

	if m.Journal != nil {
		rec := Record{UserID: userID, Submitter: p.Submitter, Code: parsed.Code, Seq: seq, File: f, At: now}
		if err := m.Journal.Record(ctx, rec); err != nil {
			m.Log.Warn("journal record", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	return Outcome{Kind: Stored, State: Idle, Parsed: parsed, Seq: seq, File: f}
}

// Cancel drops any pending submission. It reports whether one existed.
func (m *Machine) Cancel(ctx context.Context, userID int64) (bool, error) {
	_, ok, err := m.Sessions.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if err := m.Sessions.Delete(ctx, userID); err != nil {
		return false, err
	}
	return ok, nil
}
