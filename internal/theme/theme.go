package theme

import (
	"fmt"

	"github.com/rohmanhakim/newsfeed/internal/store"
	"github.com/rohmanhakim/newsfeed/pkg/failure"
)

// Key is the store key holding the display preference.
const Key = "theme"

type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"

	Default = Dark
)

func (t Theme) Valid() bool {
	return t == Dark || t == Light
}

// Opposite returns the other theme. Invalid values flip to Light, as Default does.
func (t Theme) Opposite() Theme {
	if t == Light {
		return Dark
	}
	return Light
}

// Parse accepts "dark" or "light".
func Parse(s string) (Theme, error) {
	t := Theme(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
	}
	return t, nil
}

// Preference persists the theme in a store independently of the news cache.
type Preference struct {
	store store.Store
}

func NewPreference(s store.Store) *Preference {
	return &Preference{store: s}
}

// Get returns the stored theme, or Default when nothing valid is stored.
func (p *Preference) Get() Theme {
	raw, found := p.store.Read(Key)
	if !found {
		return Default
	}
	t := Theme(raw)
	if !t.Valid() {
		return Default
	}
	return t
}

func (p *Preference) Set(t Theme) failure.ClassifiedError {
	if !t.Valid() {
		return &ThemeError{
			Message: fmt.Sprintf("%q is not dark or light", string(t)),
			Cause:   ErrCauseInvalidValue,
		}
	}
	if err := p.store.Write(Key, string(t)); err != nil {
		return &ThemeError{
			Message: err.Error(),
			Cause:   ErrCausePersistFailed,
			Err:     err,
		}
	}
	return nil
}

// Toggle flips the stored theme and returns the new value.
// On a write failure the new value is still returned so the caller can apply it for the session.
func (p *Preference) Toggle() (Theme, failure.ClassifiedError) {
	next := p.Get().Opposite()
	return next, p.Set(next)
}
