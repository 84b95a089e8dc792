// redact маскирует чувствительные данные для логов: токены и тексты комментариев.
// В лог попадает только факт наличия значения и его размер, но не само значение.
package redact

import (
	"strconv"
	"unicode/utf8"
)

const tokenPlaceholder = "[REDACTED_TOKEN]"

// Token возвращает заглушку для непустого токена и "" для пустого.
func Token(s string) string {
	if s == "" {
		return ""
	}

	return tokenPlaceholder
}

// Content заменяет текст комментария его длиной в рунах.
//
// Примеры:
//
//	""        -> "[empty]"
//	"привет"  -> "[6 chars]"
func Content(s string) string {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return "[empty]"
	}

	return "[" + strconv.Itoa(n) + " chars]"
}
