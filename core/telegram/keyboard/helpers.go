// Package keyboard builds inline keyboards from flat button lists.
package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn is one inline button: visible label, callback key, payload.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// InlineButtonsNPerRow lays the buttons out with up to n per row.
func InlineButtonsNPerRow(buttons []InlineBtn, n int) *tele.ReplyMarkup {
	if n < 1 {
		n = 1
	}
	markup := &tele.ReplyMarkup{}
	var grid [][]tele.InlineButton
	for i := 0; i < len(buttons); i += n {
		end := min(i+n, len(buttons))
		row := make([]tele.InlineButton, 0, end-i)
		for _, btn := range buttons[i:end] {
			row = append(row, *markup.Data(btn.Text, btn.Unique, btn.Data).Inline())
		}
		grid = append(grid, row)
	}
	markup.InlineKeyboard = grid
	return markup
}
