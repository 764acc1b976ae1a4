package logger

import "strings"

// Canonical severity names as they appear on the wire.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// normalizeLevel maps a configured level spelling to its canonical
// form. Unknown values pass through upper-cased so they stay visible.
func normalizeLevel(level string) string {
	switch strings.ToLower(level) {
	case "":
		return LevelInfo
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return strings.ToUpper(level)
	}
}

// normalizeStatus lower-cases a status value and reports whether it is
// one of the vocabulary values emitted by the routers and sender.
func normalizeStatus(status string) (string, bool) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case "":
		return "", false
	case "ok", "fail", "skip", "retry", "rate_limited", "cancelled":
		return status, true
	}
	return status, false
}

// normalizeOutcome keeps only the closed set of dialog outcomes.
func normalizeOutcome(outcome string) (string, bool) {
	outcome = strings.ToLower(strings.TrimSpace(outcome))
	switch outcome {
	case "ok", "fail", "cancelled", "rate_limited":
		return outcome, true
	}
	return "", false
}

// defaultKeyOrder fixes the column order of every emitted line so logs
// stay diffable across handlers. Identity first, then dialog state,
// then transport and error detail.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "ts_unix_nano",
	"update_id", "user_id", "chat_id", "chat_type",
	"handler", "cb_key",
	"node", "node_next", "event_kind",
	"topic", "device", "server", "country", "rating",
	"ticket_code", "ticket_status", "feedback_count",
	"outcome", "duration_ms", "messages", "kb",
	"payload", "lang", "username",
	"mode", "listen", "public_url", "db", "host", "port",
	"err", "err_code", "cause",
	"retryable", "attempts", "backoff_ms", "rate_limited",
}
