// Package mask hides personal data in responses and logs.
package mask

import (
	"strings"
	"unicode/utf8"
)

// Email keeps the first and last rune of the local part and the full domain.
//
//	jane.doe@example.com -> j******e@example.com
//	jo@example.com       -> j*@example.com
func Email(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return Middle(email, 1, 0)
	}
	local, domain := email[:at], email[at:]
	if utf8.RuneCountInString(local) <= 2 {
		return Middle(local, 1, 0) + domain
	}
	return Middle(local, 1, 1) + domain
}

// Phone keeps the last four digits.
func Phone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	return Middle(phone, 0, 4)
}

// Middle replaces every rune except the first keepStart and last keepEnd with '*'.
func Middle(value string, keepStart, keepEnd int) string {
	runes := []rune(value)
	if len(runes) == 0 {
		return ""
	}
	if keepStart+keepEnd >= len(runes) {
		keepEnd = 0
		if keepStart >= len(runes) {
			keepStart = len(runes) - 1
		}
	}
	for i := keepStart; i < len(runes)-keepEnd; i++ {
		runes[i] = '*'
	}
	return string(runes)
}
