package format

import (
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

// WriteEDN writes the EDN form of v. Values go through encoding/json first so
// struct tags decide key names; keys become keywords and RFC 3339 strings
// become #inst literals.
func WriteEDN(w io.Writer, v any, pretty bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}
	e := &ednWriter{pretty: pretty}
	e.value(x, 0)
	e.sb.WriteByte('\n')
	_, err = io.WriteString(w, e.sb.String())
	return err
}

type ednWriter struct {
	sb     strings.Builder
	pretty bool
}

func (e *ednWriter) newline(level int) {
	if e.pretty {
		e.sb.WriteByte('\n')
		e.sb.WriteString(strings.Repeat("  ", level))
	}
}

func (e *ednWriter) value(v any, level int) {
	switch t := v.(type) {
	case nil:
		e.sb.WriteString("nil")
	case bool:
		e.sb.WriteString(strconv.FormatBool(t))
	case float64:
		if t == float64(int64(t)) {
			e.sb.WriteString(strconv.FormatInt(int64(t), 10))
		} else {
			e.sb.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
		}
	case string:
		if isInstant(t) {
			e.sb.WriteString("#inst ")
		}
		e.sb.WriteString(strconv.Quote(t))
	case []any:
		e.sb.WriteByte('[')
		for i, it := range t {
			if i > 0 && !e.pretty {
				e.sb.WriteByte(' ')
			}
			e.newline(level + 1)
			e.value(it, level+1)
		}
		if len(t) > 0 {
			e.newline(level)
		}
		e.sb.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		e.sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 && !e.pretty {
				e.sb.WriteByte(' ')
			}
			e.newline(level + 1)
			e.sb.WriteByte(':')
			e.sb.WriteString(keyword(k))
			e.sb.WriteByte(' ')
			e.value(t[k], level+1)
		}
		if len(keys) > 0 {
			e.newline(level)
		}
		e.sb.WriteByte('}')
	}
}

// keyword turns a JSON key into an EDN keyword name. A leading underscore is
// kept (:_hints).
func keyword(k string) string {
	k = strings.TrimSpace(k)
	if k == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', ',', '"', '(', ')', '[', ']', '{', '}', ';', '\\', '~', '@', '^', '`':
			return '-'
		}
		return r
	}, k)
}

func isInstant(s string) bool {
	if len(s) < 20 || s[4] != '-' || s[10] != 'T' {
		return false
	}
	_, err := time.Parse(time.RFC3339Nano, s)
	return err == nil
}
