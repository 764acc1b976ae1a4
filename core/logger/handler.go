package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

// record accumulates fields for one log line, keeping insertion order so
// duplicate keys overwrite in place.
type record struct {
	keys   []string
	values map[string]any
}

func newRecord() *record {
	return &record{values: make(map[string]any, 16)}
}

func (rec *record) set(key string, val any) {
	if key == "" {
		return
	}
	if _, ok := rec.values[key]; !ok {
		rec.keys = append(rec.keys, key)
	}
	rec.values[key] = val
}

func (rec *record) setIfAbsent(key string, val any) {
	if _, ok := rec.values[key]; !ok {
		rec.set(key, val)
	}
}

func (rec *record) get(key string) (string, bool) {
	v, ok := rec.values[key]
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case fmt.Stringer:
		return s.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

func (rec *record) delete(key string) {
	if _, ok := rec.values[key]; !ok {
		return
	}
	delete(rec.values, key)
	for i, k := range rec.keys {
		if k == key {
			rec.keys = append(rec.keys[:i], rec.keys[i+1:]...)
			break
		}
	}
}

// ordered returns keys in schema order first, then the rest sorted.
func (rec *record) ordered(schema []string) []string {
	out := make([]string, 0, len(rec.keys))
	inSchema := make(map[string]struct{}, len(schema))
	for _, key := range schema {
		if _, ok := rec.values[key]; ok {
			out = append(out, key)
			inSchema[key] = struct{}{}
		}
	}
	var rest []string
	for _, key := range rec.keys {
		if _, ok := inSchema[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

type structuredHandler struct {
	cfg    handlerConfig
	attrs  []slog.Attr
	groups []string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = append([]string(nil), defaultKeyOrder...)
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

// Handle formats the slog.Record and writes one line through the shared writer.
func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return fmt.Errorf("logger: writer not initialized")
	}
	isJSON := h.cfg.format == formatJSON

	rec := newRecord()
	ts := r.Time.UTC()
	rec.set("ts", ts.Truncate(time.Millisecond).Format(timeFormatMillis))
	rec.set("level", normalizeLevel(r.Level.String()))
	if isJSON {
		rec.set("ts_unix_nano", ts.UnixNano())
	}

	for _, a := range h.attrs {
		h.addAttr(rec, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.addAttr(rec, a)
		return true
	})
	h.addContextMeta(ctx, rec)

	if rid, ok := rec.get("rid"); ok && rid != "" {
		if compact := CompactRID(rid); compact != "" && compact != rid {
			if isJSON {
				rec.setIfAbsent("rid_full", rid)
			}
			rec.set("rid", compact)
		}
	}
	if event, _ := rec.get("event"); event == "" {
		if r.Message != "" {
			rec.set("event", r.Message)
		} else {
			rec.set("event", "unknown")
		}
	}
	if component, _ := rec.get("component"); component == "" {
		rec.set("component", "app")
	}
	h.normalizeEnums(rec)
	h.pruneEmpty(rec)

	keys := rec.ordered(h.cfg.keyOrder)
	var line []byte
	if isJSON {
		jsonLine, err := emitJSON(rec, keys)
		if err != nil {
			return err
		}
		line = jsonLine
	} else {
		line = emitKV(rec, keys)
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// addAttr flattens groups into dotted keys and coerces values into the
// small set of types the emitters understand.
func (h *structuredHandler) addAttr(rec *record, attr slog.Attr) {
	h.flatten(strings.Join(h.groups, "."), attr, rec)
}

func (h *structuredHandler) flatten(prefix string, attr slog.Attr, rec *record) {
	key := attr.Key
	if prefix != "" {
		if key == "" {
			key = prefix
		} else {
			key = prefix + "." + key
		}
	}
	if attr.Value.Kind() == slog.KindGroup {
		for _, child := range attr.Value.Group() {
			h.flatten(key, child, rec)
		}
		return
	}
	if key == "" {
		return
	}
	if k, v, ok := coerceValue(key, attr.Value); ok {
		rec.set(k, v)
	}
}

func coerceValue(key string, val slog.Value) (string, any, bool) {
	switch val.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(val.String()), true
	case slog.KindBool:
		return key, val.Bool(), true
	case slog.KindInt64:
		return key, val.Int64(), true
	case slog.KindUint64:
		if u := val.Uint64(); u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, val.Uint64(), true
	case slog.KindFloat64:
		return key, val.Float64(), true
	case slog.KindDuration:
		return durationKey(key), RoundMS(val.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, val.Time().UTC().Format(time.RFC3339Nano), true
	case slog.KindAny:
		switch x := val.Any().(type) {
		case nil:
			return key, nil, false
		case error:
			return key, x.Error(), true
		case string:
			return key, strings.TrimSpace(x), true
		case time.Duration:
			return durationKey(key), RoundMS(x).Milliseconds(), true
		case fmt.Stringer:
			return key, x.String(), true
		default:
			return key, fmt.Sprint(x), true
		}
	default:
		return key, val.Any(), true
	}
}

// durationKey rewrites duration field names to carry an explicit _ms unit.
func durationKey(key string) string {
	switch {
	case key == "duration":
		return "duration_ms"
	case strings.HasSuffix(key, "_duration"):
		return strings.TrimSuffix(key, "_duration") + "_duration_ms"
	case !strings.HasSuffix(key, "_ms"):
		return key + "_ms"
	}
	return key
}

func (h *structuredHandler) addContextMeta(ctx context.Context, rec *record) {
	if ctx == nil {
		return
	}
	if rid := RIDFrom(ctx); rid != "" {
		rec.setIfAbsent("rid", rid)
	}
	if uid := UserIDFrom(ctx); uid != 0 {
		rec.setIfAbsent("user_id", uid)
	}
	if updateID := UpdateIDFrom(ctx); updateID != 0 {
		rec.setIfAbsent("update_id", updateID)
	}
	if cid := ChatIDFrom(ctx); cid != 0 {
		rec.setIfAbsent("chat_id", cid)
	}
	if handler := HandlerFrom(ctx); handler != "" {
		rec.setIfAbsent("handler", handler)
	}
}

func (h *structuredHandler) normalizeEnums(rec *record) {
	if s, ok := rec.get("status"); ok && s != "" {
		if normalized, valid := normalizeStatus(s); valid {
			rec.set("status", normalized)
		}
	}
	if o, ok := rec.get("outcome"); ok && o != "" {
		if normalized, valid := normalizeOutcome(o); valid {
			rec.set("outcome", normalized)
		} else {
			rec.delete("outcome")
		}
	}
}

func (h *structuredHandler) pruneEmpty(rec *record) {
	for _, key := range append([]string(nil), rec.keys...) {
		switch v := rec.values[key].(type) {
		case nil:
			rec.delete(key)
		case string:
			if v == "" {
				rec.delete(key)
			}
		case fmt.Stringer:
			if v.String() == "" {
				rec.delete(key)
			}
		}
	}
}

func emitJSON(rec *record, keys []string) ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, key := range keys {
		data, err := json.Marshal(rec.values[key])
		if err != nil {
			return nil, err
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(key))
		b.WriteByte(':')
		b.Write(data)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func emitKV(rec *record, keys []string) []byte {
	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(kvValue(rec.values[key]))
	}
	return []byte(b.String())
}

func kvValue(val any) string {
	switch v := val.(type) {
	case string:
		if strings.IndexFunc(v, kvNeedsQuote) >= 0 {
			return strconv.Quote(v)
		}
		return v
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case int:
		return strconv.Itoa(v)
	default:
		s := fmt.Sprint(v)
		if strings.IndexFunc(s, kvNeedsQuote) >= 0 {
			return strconv.Quote(s)
		}
		return s
	}
}

func kvNeedsQuote(r rune) bool {
	return r <= 32 || r == '=' || r == '"'
}
