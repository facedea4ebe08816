package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"sorubank-bot/api/internal/pdf"
	"sorubank-bot/api/internal/questions"
	"sorubank-bot/api/internal/taxonomy"
)

const recentLimit = 10

func (r *Router) handleList(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 {
		r.send(chatID, listUsageText)
		return
	}
	l, err := r.Questions.List(ctx, args[0])
	switch {
	case errors.Is(err, questions.ErrInvalidCode):
		r.send(chatID, invalidShortText)
		return
	case err != nil:
		r.send(chatID, genericFailureText)
		return
	}
	if len(l.Entries) == 0 {
		r.send(chatID, noQuestionsText)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📚 *%s*", esc(l.Parsed.Topic))
	if l.Parsed.HasSubtopic() {
		fmt.Fprintf(&b, " > %s", esc(l.Parsed.Subtopic))
	}
	fmt.Fprintf(&b, "\n\n📄 *%d soru:*\n\n", len(l.Entries))
	for _, e := range l.Entries {
		if e.Submitter != "" {
			fmt.Fprintf(&b, "%d. %s - %s\n", e.Index, esc(e.Label), esc(e.Submitter))
		} else {
			fmt.Fprintf(&b, "%d. %s\n", e.Index, esc(e.Label))
		}
	}
	for _, part := range taxonomy.SplitMessage(b.String(), r.MenuChunk) {
		r.sendMarkdown(chatID, part)
	}
}

func (r *Router) handlePDF(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 {
		r.send(chatID, pdfUsageText)
		return
	}
	r.send(chatID, pdfWorkingText)

	c, err := r.Questions.Collect(ctx, args)
	if err != nil {
		r.send(chatID, genericFailureText)
		return
	}
	if len(c.Skipped) > 0 {
		r.send(chatID, "⚠️ Geçersiz kodlar atlandı: "+strings.Join(c.Skipped, ", "))
	}
	if len(c.Images) == 0 {
		r.send(chatID, noImagesText)
		return
	}

	doc, bad, err := pdf.Merge(c.Images)
	if errors.Is(err, pdf.ErrNoImages) {
		r.send(chatID, noImagesText)
		return
	}
	if err != nil {
		r.Log.Error("pdf merge", zap.Error(err))
		r.send(chatID, genericFailureText)
		return
	}
	if bad > 0 {
		r.Log.Warn("pdf skipped undecodable images", zap.Int("count", bad))
	}

	name := fmt.Sprintf("sorular_%s.pdf", r.Now().Format("20060102_1504"))
	m := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: doc})
	m.Caption = fmt.Sprintf("📄 %d soru içeren PDF oluşturuldu!", len(c.Images)-bad)
	r.deliver(m)
}

func (r *Router) handleRecent(ctx context.Context, chatID, uid int64) {
	if r.Recent == nil {
		r.send(chatID, journalOffText)
		return
	}
	subs, err := r.Recent.Recent(ctx, uid, recentLimit)
	if err != nil {
		r.Log.Error("recent submissions", zap.Int64("user_id", uid), zap.Error(err))
		r.send(chatID, genericFailureText)
		return
	}
	if len(subs) == 0 {
		r.send(chatID, noRecentText)
		return
	}
	var b strings.Builder
	b.WriteString("🕘 *Son kaydettiğiniz sorular:*\n\n")
	for i, s := range subs {
		fmt.Fprintf(&b, "%d. %s.%d - %s\n", i+1, s.Code, s.Seq, s.CreatedAt.Format("02.01 15:04"))
	}
	r.sendMarkdown(chatID, b.String())
}
