// Package theme resolves the active color palette from the user's chosen
// mode and the host appearance, and persists the chosen mode.
package theme

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"Storefront/internal/storage"
	"Storefront/pkg/kit"
)

type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
	ModeAuto  Mode = "auto"
)

var ErrInvalidMode = errors.New("invalid theme mode")

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeLight, ModeDark, ModeAuto:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// State is what screens render with.
type State struct {
	Mode   Mode    `json:"mode"`
	IsDark bool    `json:"is_dark"`
	Colors Palette `json:"colors"`
}

// Writer schedules a background write; *storage.Queue implements it.
type Writer interface {
	Enqueue(key, value string)
}

type Deps struct {
	Storage    storage.KV
	Writer     Writer
	Appearance AppearanceSource
	Log        *zap.Logger
}

type Store struct {
	kv     storage.KV
	writer Writer
	log    *zap.Logger

	stopTracking func()
	hydrateOnce  sync.Once

	mu     sync.Mutex
	mode   Mode
	system Appearance

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

// NewStore starts in auto mode and tracks deps.Appearance until Close.
func NewStore(deps Deps) *Store {
	src := deps.Appearance
	if src == nil {
		src = NewSystemAppearance(AppearanceLight)
	}

	s := &Store{
		kv:     deps.Storage,
		writer: deps.Writer,
		log:    kit.OrNop(deps.Log),
		mode:   ModeAuto,
		system: src.Appearance(),
		subs:   make(map[int]func(State)),
	}
	s.stopTracking = src.Subscribe(s.onAppearance)
	return s
}

func (s *Store) Close() {
	s.stopTracking()
}

func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Store) IsDark() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isDarkLocked()
}

func (s *Store) Colors() Palette {
	return s.State().Colors
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Toggle switches to the explicit opposite of what is currently shown,
// so toggling out of auto always produces a visible change.
func (s *Store) Toggle() {
	s.apply(func() Mode {
		if s.isDarkLocked() {
			return ModeLight
		}
		return ModeDark
	}, true)
}

func (s *Store) Set(mode Mode) error {
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}
	s.apply(func() Mode { return mode }, true)
	return nil
}

// Hydrate loads the persisted mode once. Unknown values are ignored.
func (s *Store) Hydrate(ctx context.Context) {
	s.hydrateOnce.Do(func() {
		if s.kv == nil {
			return
		}
		raw, found, err := s.kv.Get(ctx, storage.KeyThemeMode)
		if err != nil {
			s.log.Warn("storage read failed", zap.String("key", storage.KeyThemeMode), zap.Error(err))
			return
		}
		if !found {
			return
		}
		mode, err := ParseMode(raw)
		if err != nil {
			s.log.Warn("stored theme mode ignored", zap.String("value", raw))
			return
		}
		s.apply(func() Mode { return mode }, false)
	})
}

func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// apply sets the mode computed by next under the lock, persisting it when
// asked, and notifies if the visible state changed.
func (s *Store) apply(next func() Mode, persist bool) {
	s.mu.Lock()
	before := s.stateLocked()
	s.mode = next()
	if persist && s.writer != nil {
		s.writer.Enqueue(storage.KeyThemeMode, string(s.mode))
	}
	after := s.stateLocked()
	s.mu.Unlock()

	if before.Mode != after.Mode || before.IsDark != after.IsDark {
		s.notify(after)
	}
}

func (s *Store) onAppearance(a Appearance) {
	s.mu.Lock()
	before := s.isDarkLocked()
	s.system = a
	after := s.stateLocked()
	s.mu.Unlock()

	if before != after.IsDark {
		s.notify(after)
	}
}

func (s *Store) isDarkLocked() bool {
	if s.mode == ModeAuto {
		return s.system == AppearanceDark
	}
	return s.mode == ModeDark
}

func (s *Store) stateLocked() State {
	dark := s.isDarkLocked()
	colors := LightPalette
	if dark {
		colors = DarkPalette
	}
	return State{Mode: s.mode, IsDark: dark, Colors: colors}
}

func (s *Store) notify(st State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
