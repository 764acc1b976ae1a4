package domain

// Topic identifies a main menu entry.
type Topic string

const (
	TopicHowConnect       Topic = "how_connect"
	TopicVPNNotWorking    Topic = "vpn_not_work"
	TopicLogs             Topic = "logs"
	TopicPaidSubscription Topic = "paid_subscription"
	TopicIdeas            Topic = "ideas"
	TopicRFServer         Topic = "rf_server"
)

// Device identifies the user's platform for connection instructions.
type Device string

const (
	DeviceAndroid Device = "Android"
	DeviceMacOS   Device = "MacOS"
	DeviceWindows Device = "Windows"
	DeviceIOS     Device = "IOS"
)

// Mobile reports whether the device follows the mobile-style setup
// instructions rather than the Windows-style ones.
func (d Device) Mobile() bool {
	switch d {
	case DeviceAndroid, DeviceMacOS, DeviceIOS:
		return true
	}
	return false
}

// Known reports whether the device is one of the offered options.
func (d Device) Known() bool {
	return d.Mobile() || d == DeviceWindows
}

// Server identifies a VPN server location.
type Server string

const (
	ServerRussia      Server = "Russia"
	ServerNetherlands Server = "Netherlands"
)

// Known reports whether the server is one of the offered options.
func (s Server) Known() bool {
	return s == ServerRussia || s == ServerNetherlands
}

// Event is a decoded inbound update from the messaging gateway. The set of
// variants is closed: the conversation engine switches over it exhaustively,
// with a single fallback for anything that does not fit the current node.
type Event interface{ isEvent() }

// TopicSelected carries a main menu selection.
type TopicSelected struct{ Topic Topic }

// DeviceSelected carries a device menu selection.
type DeviceSelected struct{ Device Device }

// ServerSelected carries a server menu selection.
type ServerSelected struct{ Server Server }

// CountrySelected carries a country menu selection. The country is an
// opaque button label; only the Russia/Ukraine pair is special-cased.
type CountrySelected struct{ Country string }

// ResolutionGiven carries the user's answer to "did this solve it".
type ResolutionGiven struct{ Resolved bool }

// RatingGiven carries a service rating between 1 and 5.
type RatingGiven struct{ Rating int }

// FreeText carries an arbitrary text message.
type FreeText struct{ Text string }

func (TopicSelected) isEvent()   {}
func (DeviceSelected) isEvent()  {}
func (ServerSelected) isEvent()  {}
func (CountrySelected) isEvent() {}
func (ResolutionGiven) isEvent() {}
func (RatingGiven) isEvent()     {}
func (FreeText) isEvent()        {}
