package domain

import "strings"

const (
	handlerPrefix = "action"
	beforePrefix  = "before"
	afterPrefix   = "after"
)

// Capitalize uppercases the first character of every word in s.
// Words are separated by spaces, tabs, carriage returns, newlines,
// form feeds and vertical tabs. All other characters are left untouched,
// so Capitalize(Capitalize(s)) == Capitalize(s).
func Capitalize(s string) string {
	if s == "" {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	atWordStart := true
	for _, r := range s {
		if isWordSeparator(r) {
			atWordStart = true
			b.WriteRune(r)
			continue
		}
		if atWordStart {
			r = toUpper(r)
			atWordStart = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// HandlerName returns the name of the handler that implements action,
// e.g. "publish" -> "actionPublish".
func HandlerName(action string) string {
	return handlerPrefix + Capitalize(action)
}

// BeforeEvent returns the event emitted before action runs, e.g. "beforePublish".
func BeforeEvent(action string) string {
	return beforePrefix + Capitalize(action)
}

// AfterEvent returns the event emitted after action succeeded, e.g. "afterPublish".
func AfterEvent(action string) string {
	return afterPrefix + Capitalize(action)
}

// ActionFromHandler reverses HandlerName for single-word actions:
// "actionPublish" -> "publish". It reports false when name does not carry
// the handler prefix or has nothing after it.
func ActionFromHandler(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, handlerPrefix)
	if !ok || rest == "" {
		return "", false
	}
	return strings.ToLower(rest[:1]) + rest[1:], true
}

func isWordSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n', '\f', '\v':
		return true
	}
	return false
}

// toUpper maps ASCII lowercase letters only; other runes are returned unchanged.
func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
