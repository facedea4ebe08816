package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"sorubank-bot/api/internal/conversation"
	"sorubank-bot/api/internal/taxonomy"
)

const maxPhotoBytes = 20 << 20

func (r *Router) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	cid, uid := msg.Chat.ID, userID(msg)
	log := r.Log.With(zap.Int64("user_id", uid))

	// the last size is the largest
	ph := msg.Photo[len(msg.Photo)-1]
	url, err := r.Bot.GetFileDirectURL(ph.FileID)
	if err != nil {
		log.Warn("photo url", zap.Error(err))
		r.send(cid, photoFailedText)
		return
	}
	img, err := r.Fetch(ctx, url)
	if err != nil {
		log.Warn("photo download", zap.Error(err))
		r.send(cid, photoFailedText)
		return
	}

	if _, err := r.Machine.OnPhoto(ctx, uid, conversation.Photo{Image: img, Submitter: submitterName(msg.From)}); err != nil {
		log.Error("photo pending", zap.Error(err))
		r.send(cid, genericFailureText)
		return
	}
	r.send(cid, photoReceivedText)

	if r.Suggest != nil {
		r.suggestCode(ctx, cid, img)
	}
}

func (r *Router) suggestCode(ctx context.Context, chatID int64, img []byte) {
	code, err := r.Suggest.Suggest(ctx, img, taxonomy.RenderMenu(r.Tax, nil))
	if err != nil {
		r.Log.Warn("code suggestion", zap.Error(err))
		return
	}
	if code == "" {
		return
	}
	p, ok := r.Tax.Parse(code)
	if !ok {
		r.Log.Debug("suggestion outside taxonomy", zap.String("code", code))
		return
	}
	r.sendMarkdown(chatID, fmt.Sprintf("🤖 Önerilen kod: `%s`\n%s", p.Code, esc(p.Breadcrumb())))
}

func (r *Router) handleText(ctx context.Context, msg *tgbotapi.Message) {
	cid, uid := msg.Chat.ID, userID(msg)

	out, err := r.Machine.OnText(ctx, uid, msg.Text)
	if err != nil {
		r.Log.Error("code turn", zap.Int64("user_id", uid), zap.Error(err))
		r.send(cid, genericFailureText)
		return
	}
	switch out.Kind {
	case conversation.NoPending:
		r.send(cid, noPhotoText)
	case conversation.InvalidCode:
		r.send(cid, invalidCodeText)
	case conversation.Failed:
		r.send(cid, uploadFailedText)
	case conversation.Stored:
		r.sendMarkdown(cid, storedText(out))
	}
}

func storedText(out conversation.Outcome) string {
	var b strings.Builder
	b.WriteString("✅ *Başarıyla kaydedildi!*\n\n📚 *Konum:*\n")
	b.WriteString(esc(out.Parsed.Breadcrumb()))
	fmt.Fprintf(&b, "\n\n📄 *Dosya:* %s\n🔢 *Sıra:* %d. soru\n", esc(out.File.Name), out.Seq)
	if out.File.ViewLink != "" {
		fmt.Fprintf(&b, "🔗 *Link:* [Google Drive'da Görüntüle](%s)\n", out.File.ViewLink)
	}
	return b.String()
}

// download fetches a Telegram file URL.
func download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
