package telegram

import (
	"fmt"
	"strings"
)

const (
	photoReceivedText  = "📸 Fotoğraf alındı!\n\n📝 Lütfen konu kodunu yazın.\nÖrnek: 1.1.2.3"
	noPhotoText        = "❌ Önce bir fotoğraf göndermelisiniz!"
	invalidCodeText    = "❌ Geçersiz kod!\nLütfen geçerli bir kod girin.\nÖrnek: 1.1.2.3"
	invalidShortText   = "❌ Geçersiz kod!"
	uploadFailedText   = "❌ Yükleme hatası! Lütfen tekrar deneyin."
	genericFailureText = "❌ Bir hata oluştu. Lütfen daha sonra tekrar deneyin."
	noQuestionsText    = "📭 Bu konuda henüz soru yok!"
	listUsageText      = "Kullanım: /list [kod]\nÖrnek: /list 1.1.2.3"
	pdfUsageText       = "Kullanım: /pdf [kod1] [kod2] ...\nÖrnek: /pdf 1.1.2.3.1 1.1.2.3.2"
	pdfWorkingText     = "📄 PDF oluşturuluyor..."
	noImagesText       = "❌ Görüntü bulunamadı!"
	cancelledText      = "İşlem iptal edildi."
	unknownCommandText = "Bilinmeyen komut. Yardım için /help yazın."
	photoFailedText    = "❌ Fotoğraf indirilemedi. Lütfen tekrar gönderin."
	journalOffText     = "Geçmiş kaydı bu kurulumda kapalı."
	noRecentText       = "Henüz kaydettiğiniz bir soru yok."
)

const helpText = `📚 *YARDIM*

*Temel Kullanım:*
1. Soru fotoğrafı gönderin
2. Konu kodu yazın
3. Otomatik kaydedilir

*Kod Sistemi:*
` + "`Ders.Sınav.Konu.AltKonu`" + `

*Örnekler:*
• 1.1.2.3 = Mat > AYT > Türev > Zincir Kuralı
• 2.1.1.2 = Fizik > AYT > Kuvvet > Bağıl Hareket

*Komutlar:*
/start - Botu başlat
/menu - Tüm ders listesi
/list 1.1.2 - Konudaki soruları listele
/pdf 1.1.2.3.1 1.1.2.3.2 - PDF oluştur
/recent - Son kaydettiğiniz sorular
/cancel - Bekleyen fotoğrafı iptal et
/help - Bu mesaj

*PDF Örnekleri:*
• /pdf 1.1.2.3.1 - Tek soru
• /pdf 1.1.2.3 - Tüm alt konu
• /pdf 1.1.2 - Tüm konu
`

func startText(name string) string {
	return fmt.Sprintf(`🎓 *Soru Bankası Bot'a Hoş Geldiniz!*

Merhaba %s!

📚 *Nasıl Kullanılır:*
1. Bir soru fotoğrafı gönderin
2. Konu kodunu yazın (örn: 1.1.2.3)
3. Otomatik olarak organize edilir!

📝 *Komutlar:*
/menu - Ders ve konu listesi
/list [kod] - Konudaki soruları listele
/pdf [kodlar] - PDF oluştur
/help - Yardım

🔢 *Kod Formatı:*
Ders.Sınav.Konu.AltKonu
Örnek: 1.1.2.3 = Mat > AYT > Türev > Zincir Kuralı
`, esc(name))
}

// esc escapes the legacy Markdown metacharacters.
func esc(s string) string {
	s = strings.ReplaceAll(s, "`", "'")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "[", "\\[")
	return s
}
