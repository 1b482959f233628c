// Package callbacks decodes telebot inline button data.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseData splits telebot's "\f<unique>|<payload>" encoding.
// Data without the leading form feed is treated as a bare key.
func ParseData(raw string) (unique, payload string) {
	raw = strings.TrimPrefix(raw, "\f")
	unique, payload, _ = strings.Cut(raw, "|")
	return strings.TrimSpace(unique), payload
}

// Parse returns the key and payload of cb. telebot fills Unique only when a
// handler was registered for "\f<unique>"; the generic OnCallback route sees raw Data.
func Parse(cb *tele.Callback) (unique, payload string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	return ParseData(cb.Data)
}

// Key returns the callback key of the update, empty when it is not a callback.
func Key(c tele.Context) string {
	k, _ := Parse(c.Callback())
	return k
}
