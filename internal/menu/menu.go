// Package menu holds the static catalog of inline menus and reply texts.
// Each conversation node maps to one menu; button presses come back as
// callback events keyed by the uniques declared here.
package menu

import (
	"github.com/lknvpn/supportbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// ID names one of the selectable-options menus attached to replies.
type ID string

const (
	// None means the reply carries no menu.
	None    ID = ""
	Main    ID = "main"
	Device  ID = "device"
	Server  ID = "server"
	Country ID = "country"
	Resolve ID = "resolve"
	Rating  ID = "rating"
)

// Callback uniques used across all menus.
const (
	CBTopic   = "topic"
	CBDevice  = "device"
	CBServer  = "server"
	CBCountry = "country"
	CBResolve = "resolve"
	CBRating  = "rating"
)

// Resolution payloads for the resolve menu.
const (
	PayloadResolved    = "resolved"
	PayloadNotResolved = "not_resolved"
)

// Countries offered at the country menu. Only the label is carried in the
// callback payload; the engine special-cases "Украина" against a chosen
// Russia server.
var Countries = []string{
	"Украина", "Россия", "США", "Великобритания", "Казахстан", "Беларусь", "Нет моей страны",
}

// CountryUkraine is the label the Russia-server advisory triggers on.
const CountryUkraine = "Украина"

// Markup builds the inline keyboard for a menu ID, or nil for None and
// unknown IDs.
func Markup(id ID) *tele.ReplyMarkup {
	switch id {
	case Main:
		return keyboard.InlineButtonsNPerRow([]keyboard.InlineBtn{
			{Text: "Как подключить VPN", Unique: CBTopic, Data: "how_connect"},
			{Text: "Не работает VPN", Unique: CBTopic, Data: "vpn_not_work"},
			{Text: "Сбор ip, логов", Unique: CBTopic, Data: "logs"},
			{Text: "Когда платная подписка", Unique: CBTopic, Data: "paid_subscription"},
			{Text: "Предложить инновации", Unique: CBTopic, Data: "ideas"},
			{Text: "Как работает РФ сервер", Unique: CBTopic, Data: "rf_server"},
		}, 2)
	case Device:
		return keyboard.InlineButtonsNPerRow([]keyboard.InlineBtn{
			{Text: "Android", Unique: CBDevice, Data: "Android"},
			{Text: "MacOS", Unique: CBDevice, Data: "MacOS"},
			{Text: "Windows", Unique: CBDevice, Data: "Windows"},
			{Text: "IOS", Unique: CBDevice, Data: "IOS"},
		}, 2)
	case Server:
		return keyboard.InlineButtonsNPerRow([]keyboard.InlineBtn{
			{Text: "Россия 🇷🇺", Unique: CBServer, Data: "Russia"},
			{Text: "Нидерланды 🇳🇱", Unique: CBServer, Data: "Netherlands"},
		}, 2)
	case Country:
		btns := make([]keyboard.InlineBtn, 0, len(Countries))
		for _, c := range Countries {
			btns = append(btns, keyboard.InlineBtn{Text: c, Unique: CBCountry, Data: c})
		}
		return keyboard.InlineButtonsNPerRow(btns, 2)
	case Resolve:
		return keyboard.InlineButtonsNPerRow([]keyboard.InlineBtn{
			{Text: "Решено", Unique: CBResolve, Data: PayloadResolved},
			{Text: "Не решено", Unique: CBResolve, Data: PayloadNotResolved},
		}, 2)
	case Rating:
		btns := make([]keyboard.InlineBtn, 0, 5)
		for _, n := range []string{"1", "2", "3", "4", "5"} {
			btns = append(btns, keyboard.InlineBtn{Text: n, Unique: CBRating, Data: n})
		}
		return keyboard.InlineButtonsNPerRow(btns, 5)
	}
	return nil
}
