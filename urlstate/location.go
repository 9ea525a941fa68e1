// Package urlstate keeps widget state in the page URL. The query string is the
// single source of truth for the search term, page offset and sort order.
package urlstate

import (
	"net/url"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// Query parameter names shared by the widget and shareable links.
const (
	ParamQuery = "q"
	ParamStart = "start"
	ParamSort  = "sort"
)

// Location is the current page address. Writes never reload anything; they
// rewrite the query string and record the new address in the History.
type Location struct {
	mu      sync.RWMutex
	current *url.URL
	history History
	push    bool
}

// Option configures a Location.
type Option func(*Location)

// WithHistory records address changes in h instead of a fresh MemoryHistory.
func WithHistory(h History) Option {
	return func(l *Location) {
		l.history = h
	}
}

// WithPushHistory makes SetParam push a new entry for every change instead of
// replacing the current one.
func WithPushHistory() Option {
	return func(l *Location) {
		l.push = true
	}
}

// New parses raw as the initial page address.
func New(raw string, opts ...Option) (*Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid page url %q", raw)
	}

	l := &Location{current: u}
	for _, opt := range opts {
		opt(l)
	}
	if l.history == nil {
		l.history = NewMemoryHistory(u.String())
	}

	return l, nil
}

// String returns the full current address.
func (l *Location) String() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current.String()
}

// URL returns a copy of the current address.
func (l *Location) URL() *url.URL {
	l.mu.RLock()
	defer l.mu.RUnlock()
	u := *l.current
	return &u
}

// Host returns the host, including any port, of the current address.
func (l *Location) Host() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current.Host
}

// ReadParam returns the first value of key and whether it is present.
func (l *Location) ReadParam(key string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	values := l.current.Query()
	if !values.Has(key) {
		return "", false
	}
	return values.Get(key), true
}

// SetParam sets key to value on the current address. Other parameters keep
// their values and order. The first occurrence of key is rewritten in place and
// any later duplicates are dropped; a missing key is appended.
func (l *Location) SetParam(key, value string) {
	l.setParam(key, value, l.push)
}

// ReplaceParam is SetParam that always replaces the current History entry,
// for corrections that must not add a back step.
func (l *Location) ReplaceParam(key, value string) {
	l.setParam(key, value, false)
}

func (l *Location) setParam(key, value string, push bool) {
	l.mu.Lock()
	u := *l.current
	u.RawQuery = setQueryParam(u.RawQuery, key, value)
	l.current = &u
	next := u.String()
	l.mu.Unlock()

	if push {
		l.history.PushState(next)
	} else {
		l.history.ReplaceState(next)
	}
}

// Navigate moves to raw without touching the History, the way a back or
// forward step arrives at the page.
func (l *Location) Navigate(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Wrapf(err, "invalid page url %q", raw)
	}

	l.mu.Lock()
	l.current = u
	l.mu.Unlock()
	return nil
}

func setQueryParam(rawQuery, key, value string) string {
	pair := url.QueryEscape(key) + "=" + url.QueryEscape(value)

	var parts []string
	if rawQuery != "" {
		parts = strings.Split(rawQuery, "&")
	}

	out := make([]string, 0, len(parts)+1)
	replaced := false
	for _, part := range parts {
		if part == "" {
			continue
		}
		if queryKey(part) != key {
			out = append(out, part)
			continue
		}
		if !replaced {
			out = append(out, pair)
			replaced = true
		}
	}
	if !replaced {
		out = append(out, pair)
	}

	return strings.Join(out, "&")
}

func queryKey(part string) string {
	k, _, _ := strings.Cut(part, "=")
	if unescaped, err := url.QueryUnescape(k); err == nil {
		return unescaped
	}
	return k
}
