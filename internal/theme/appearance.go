package theme

import (
	"fmt"
	"sync"
)

// Appearance is the host operating system's light/dark setting.
type Appearance string

const (
	AppearanceLight Appearance = "light"
	AppearanceDark  Appearance = "dark"
)

func ParseAppearance(s string) (Appearance, error) {
	switch a := Appearance(s); a {
	case AppearanceLight, AppearanceDark:
		return a, nil
	default:
		return "", fmt.Errorf("%w: appearance %q", ErrInvalidMode, s)
	}
}

// AppearanceSource reports the host appearance and notifies on change.
type AppearanceSource interface {
	Appearance() Appearance
	Subscribe(fn func(Appearance)) (cancel func())
}

// SystemAppearance is an in-process AppearanceSource whose value is set
// explicitly, for hosts that push appearance changes to the process.
type SystemAppearance struct {
	mu   sync.Mutex
	cur  Appearance
	subs map[int]func(Appearance)
	next int
}

func NewSystemAppearance(initial Appearance) *SystemAppearance {
	if initial != AppearanceDark {
		initial = AppearanceLight
	}
	return &SystemAppearance{cur: initial, subs: make(map[int]func(Appearance))}
}

func (a *SystemAppearance) Appearance() Appearance {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cur
}

// Set changes the appearance and notifies subscribers if it differs.
func (a *SystemAppearance) Set(v Appearance) {
	a.mu.Lock()
	if a.cur == v {
		a.mu.Unlock()
		return
	}
	a.cur = v
	fns := make([]func(Appearance), 0, len(a.subs))
	for _, fn := range a.subs {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

func (a *SystemAppearance) Subscribe(fn func(Appearance)) func() {
	a.mu.Lock()
	id := a.next
	a.next++
	a.subs[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.subs, id)
		a.mu.Unlock()
	}
}
