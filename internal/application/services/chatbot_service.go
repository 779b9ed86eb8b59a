package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/providers"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/observability"
)

// DefaultBotReplyInterval is the minimum gap between two bot replies to a patient
const DefaultBotReplyInterval = 30 * time.Second

// BotSignature is appended to every automatic reply
const BotSignature = "\n\n🤖 _Otomatik yanıt - Koordinatörümüz kısa süre içinde size dönüş yapacaktır._"

type keywordReply struct {
	keyword string
	reply   string
}

type faqReply struct {
	pattern *regexp.Regexp
	reply   string
}

// Keywords are matched as substrings in this order; the first hit wins.
var keywordReplies = []keywordReply{
	{"randevu", "Randevu için size yardımcı olabilirim. Hangi tarih ve saat aralığı sizin için uygun?"},
	{"ücret", "Tedavi ücretlerimiz hakkında detaylı bilgi için lütfen koordinatörümüzle görüşün. Hemen size ulaşacaklar."},
	{"fiyat", "Fiyat bilgisi için size özel teklif hazırlayacağız. Koordinatörümüz en kısa sürede iletişime geçecek."},
	{"otel", "Otel rezervasyonlarınız için size destek sağlıyoruz. Hangi tarihler için konaklama düşünüyorsunuz?"},
	{"transfer", "Airport transfer service is available. Please share your arrival details."},
	{"vize", "Vize işlemleri için size rehberlik edebiliriz. Hangi ülke vatandaşısınız?"},
	{"whatsapp", "WhatsApp üzerinden de bize ulaşabilirsiniz: +90 XXX XXX XX XX"},
	{"çalışma saatleri", "Hafta içi 09:00-18:00 saatleri arasında hizmetinizdeyiz."},
	{"acil", "⚠️ Acil durumlar için lütfen +90 XXX XXX XX XX numarasını arayın."},
	{"appointment", "I can help you with an appointment. What date and time works best for you?"},
	{"price", "For detailed pricing information, our coordinator will contact you shortly."},
	{"cost", "We will prepare a personalized quote for you. Our coordinator will reach out soon."},
	{"hotel", "We can assist with hotel reservations. What dates are you considering?"},
	{"visa", "We can guide you through the visa process. What is your nationality?"},
	{"working hours", "We are available Monday-Friday, 09:00-18:00."},
	{"emergency", "⚠️ For emergencies, please call +90 XXX XXX XX XX"},
	{"موعد", "يمكنني مساعدتك في حجز موعد. ما هو التاريخ والوقت المناسب لك؟"},
	{"سعر", "للحصول على معلومات تفصيلية عن الأسعار، سيتواصل معك منسقنا قريباً."},
	{"فندق", "يمكننا المساعدة في حجز الفندق. ما هي التواريخ التي تفكر فيها؟"},
}

var faqReplies = []faqReply{
	{regexp.MustCompile(`ne zaman (açık|çalış|kapan)`), "Hafta içi 09:00-18:00 saatleri arasında hizmetinizdeyiz. Hafta sonları kapalıyız."},
	{regexp.MustCompile(`(kaç gün|ne kadar süre|tedavi süresi)`), "Tedavi süreniz durumunuza göre değişmektedir. Koordinatörümüz size özel plan hazırlayacak."},
	{regexp.MustCompile(`(hangi dil|dil desteği|tercüman)`), "Türkçe, İngilizce ve Arapça dillerinde hizmet veriyoruz. İhtiyacınıza göre tercüman desteği sağlanabilir."},
	{regexp.MustCompile(`(ödeme|taksit|kredi kartı)`), "Nakit, kredi kartı ve banka havalesi ile ödeme kabul edilmektedir. Taksit seçenekleri için koordinatörünüzle görüşün."},
	{regexp.MustCompile(`(when .*open|opening hours|business hours)`), "We are available Monday-Friday, 09:00-18:00 (UTC+3). Closed on weekends."},
	{regexp.MustCompile(`(how long .*treatment|treatment duration|how many days .*treatment)`), "Treatment duration varies by individual case. Our coordinator will prepare a personalized plan for you."},
	{regexp.MustCompile(`(language support|interprete?r|translator)`), "We provide support in Turkish, English, and Arabic. Interpreter service can be arranged if needed."},
	{regexp.MustCompile(`(payment methods|how .*pay|installments?|credit card)`), "We accept cash, credit card, and bank transfer. Ask your coordinator for available installment options."},
	{regexp.MustCompile(`(متى تفتح|ساعات العمل|اوقات الدوام)`), "نحن متاحون من الإثنين إلى الجمعة، 09:00-18:00 (UTC+3). مغلقون في عطلة نهاية الأسبوع."},
	{regexp.MustCompile(`(مدة العلاج|كم يوم يستغرق العلاج)`), "مدة العلاج تختلف حسب حالتك الفردية. سيقوم منسقنا بإعداد خطة مخصصة لك."},
	{regexp.MustCompile(`(دعم لغوي|مترجم|لغة)`), "نوفر الدعم باللغات التركية والإنجليزية والعربية. يمكن ترتيب مترجم عند الحاجة."},
	{regexp.MustCompile(`(طرق الدفع|كيف ادفع|اقساط|بطاقة|كريدت)`), "نقبل الدفع نقداً وبطاقة الائتمان والتحويل البنكي. اسأل منسقك عن خيارات التقسيط المتاحة."},
}

// Chatbot answers patient messages from a keyword table and FAQ patterns
type Chatbot struct {
	throttle    providers.ThrottleStore
	minInterval time.Duration
}

// NewChatbot creates a chatbot; a nil throttle disables per-patient throttling
func NewChatbot(throttle providers.ThrottleStore, minInterval time.Duration) *Chatbot {
	if minInterval <= 0 {
		minInterval = DefaultBotReplyInterval
	}
	return &Chatbot{throttle: throttle, minInterval: minInterval}
}

// DetectIntent returns the matching keyword or FAQ pattern, or "" for none
func (c *Chatbot) DetectIntent(msg string) string {
	_, intent, _ := match(msg)
	return intent
}

// GenerateResponse returns the reply for msg. Messages shorter than three
// characters and messages without an intent get ChatResponseNone.
func (c *Chatbot) GenerateResponse(msg string) entities.ChatReply {
	if utf8.RuneCountInString(strings.TrimSpace(msg)) < 3 {
		return entities.ChatReply{Type: entities.ChatResponseNone}
	}
	kind, intent, reply := match(msg)
	if kind == entities.ChatResponseNone {
		return entities.ChatReply{Type: entities.ChatResponseNone}
	}
	return entities.ChatReply{Type: kind, Intent: intent, Text: reply}
}

// ShouldAutoRespond decides whether the bot answers msg. Staff messages,
// messages under five characters and messages without an intent are
// ignored; a patient gets at most one reply per interval. patientID 0
// skips throttling.
func (c *Chatbot) ShouldAutoRespond(ctx context.Context, msg string, senderIsStaff bool, patientID int64) bool {
	if senderIsStaff {
		return false
	}
	if utf8.RuneCountInString(strings.TrimSpace(msg)) < 5 {
		return false
	}
	if c.DetectIntent(msg) == "" {
		return false
	}
	if patientID == 0 || c.throttle == nil {
		return true
	}

	allowed, err := c.throttle.Allow(ctx, fmt.Sprintf("chatbot:reply:%d", patientID), c.minInterval)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Int64("patient_id", patientID).Msg("chatbot throttle unavailable, not replying")
		return false
	}
	if !allowed {
		observability.LoggerFromContext(ctx).Debug().Int64("patient_id", patientID).Msg("chatbot reply throttled")
	}
	return allowed
}

// Signature returns the text appended to automatic replies
func (c *Chatbot) Signature() string {
	return BotSignature
}

func match(msg string) (entities.ChatResponseType, string, string) {
	lower := strings.ToLower(strings.TrimSpace(msg))
	for _, kr := range keywordReplies {
		if strings.Contains(lower, kr.keyword) {
			return entities.ChatResponseKeyword, kr.keyword, kr.reply
		}
	}
	for _, fr := range faqReplies {
		if fr.pattern.MatchString(lower) {
			return entities.ChatResponseFAQ, fr.pattern.String(), fr.reply
		}
	}
	return entities.ChatResponseNone, "", ""
}
