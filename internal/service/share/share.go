package share

import (
	"net/url"
	"strings"
)

// DefaultBaseURL ссылка LINE «отправить текст».
const DefaultBaseURL = "https://line.me/R/msg/text/?"

const messageHeader = "私の眼鏡診断結果！"

// Message формирует текст сообщения для отправки.
func Message(result string) string {
	return messageHeader + "\n" + result + "\n"
}

// Link добавляет текст к базовому URL. Текст кодируется, пробелы как %20:
// LINE не декодирует '+' обратно в пробел.
func Link(baseURL, text string) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return baseURL + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
