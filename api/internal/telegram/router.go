package telegram

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"sorubank-bot/api/internal/conversation"
	"sorubank-bot/api/internal/questions"
	"sorubank-bot/api/internal/store"
	"sorubank-bot/api/internal/taxonomy"
)

// Bot is the part of *tgbotapi.BotAPI the router talks to.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Suggester proposes a code for a photo; see suggest.Engine.
type Suggester interface {
	Suggest(ctx context.Context, image []byte, menu string) (string, error)
}

// RecentLister reads the submissions journal; see store.SubmissionRepo.
type RecentLister interface {
	Recent(ctx context.Context, userID int64, limit int) ([]store.Submission, error)
}

type Router struct {
	Bot       Bot
	Tax       *taxonomy.Taxonomy
	Machine   *conversation.Machine
	Questions *questions.Service

	Recent  RecentLister // nil without a database
	Suggest Suggester    // nil without GEMINI_API_KEY

	Log       *zap.Logger
	MenuChunk int
	Fetch     func(ctx context.Context, url string) ([]byte, error)
	Now       func() time.Time
}

func NewRouter(bot Bot, tax *taxonomy.Taxonomy, m *conversation.Machine, qs *questions.Service, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		Bot:       bot,
		Tax:       tax,
		Machine:   m,
		Questions: qs,
		Log:       log.Named("telegram"),
		MenuChunk: 4000,
		Fetch:     download,
		Now:       time.Now,
	}
}

// HandleUpdate reacts to one update. Updates of one user must not be handled
// concurrently; Dispatcher takes care of that.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	switch {
	case msg.IsCommand():
		r.handleCommand(ctx, msg)
	case len(msg.Photo) > 0:
		r.handlePhoto(ctx, msg)
	case strings.TrimSpace(msg.Text) != "":
		r.handleText(ctx, msg)
	}
}

func (r *Router) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		r.sendMarkdown(cid, startText(firstName(msg.From)))
	case "help":
		r.sendMarkdown(cid, helpText)
	case "menu":
		r.sendMenu(cid)
	case "list":
		r.handleList(ctx, cid, args)
	case "pdf":
		r.handlePDF(ctx, cid, args)
	case "cancel":
		had, err := r.Machine.Cancel(ctx, userID(msg))
		if err != nil {
			r.Log.Error("cancel", zap.Int64("user_id", userID(msg)), zap.Error(err))
			r.send(cid, genericFailureText)
			return
		}
		r.Log.Debug("cancelled", zap.Int64("user_id", userID(msg)), zap.Bool("had_pending", had))
		r.send(cid, cancelledText)
	case "recent":
		r.handleRecent(ctx, cid, userID(msg))
	default:
		r.send(cid, unknownCommandText)
	}
}

func (r *Router) sendMenu(chatID int64) {
	menu := taxonomy.RenderMenu(r.Tax, esc)
	for _, part := range taxonomy.SplitMessage(menu, r.MenuChunk) {
		r.sendMarkdown(chatID, part)
	}
}

func (r *Router) send(chatID int64, text string) {
	r.deliver(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	r.deliver(msg)
}

func (r *Router) deliver(c tgbotapi.Chattable) {
	if _, err := r.Bot.Send(c); err != nil {
		r.Log.Warn("telegram send", zap.Error(err))
	}
}

func userID(msg *tgbotapi.Message) int64 {
	if msg.From != nil {
		return msg.From.ID
	}
	return msg.Chat.ID
}

func firstName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	return u.FirstName
}

// submitterName is the handle written into stored file names.
func submitterName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	if u.UserName != "" {
		return u.UserName
	}
	return u.FirstName
}
