package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn describes one inline button. URL buttons ignore Unique and Data.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
	URL    string
}

func (b InlineBtn) build(markup *tele.ReplyMarkup) tele.InlineButton {
	if b.URL != "" {
		return *markup.URL(b.Text, b.URL).Inline()
	}
	if b.Data == "" {
		return *markup.Data(b.Text, b.Unique).Inline()
	}
	return *markup.Data(b.Text, b.Unique, b.Data).Inline()
}

// InlineRows converts rows of buttons to telebot's inline keyboard layout, skipping empty rows.
func InlineRows(rows ...[]InlineBtn) [][]tele.InlineButton {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tele.InlineButton, 0, len(row))
		for _, btn := range row {
			r = append(r, btn.build(markup))
		}
		inline = append(inline, r)
	}
	return inline
}

// InlineButtonsRows builds an inline keyboard markup from rows of InlineBtn.
// It returns nil when there is nothing to show.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	inline := InlineRows(rows...)
	if len(inline) == 0 {
		return nil
	}
	return &tele.ReplyMarkup{InlineKeyboard: inline}
}
