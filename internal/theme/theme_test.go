package theme_test

import (
	"testing"

	"github.com/rohmanhakim/newsfeed/internal/store"
	"github.com/rohmanhakim/newsfeed/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreference_GetDefaultsToDark(t *testing.T) {
	p := theme.NewPreference(store.NewMemoryStore())
	assert.Equal(t, theme.Dark, p.Get())
}

func TestPreference_GetInvalidStoredValue(t *testing.T) {
	for _, raw := range []string{"", "blue", "DARK", " light"} {
		t.Run(raw, func(t *testing.T) {
			s := store.NewMemoryStore()
			require.NoError(t, s.Write(theme.Key, raw))

			assert.Equal(t, theme.Default, theme.NewPreference(s).Get())
		})
	}
}

func TestPreference_SetThenGet(t *testing.T) {
	s := store.NewMemoryStore()
	p := theme.NewPreference(s)

	require.Nil(t, p.Set(theme.Light))
	assert.Equal(t, theme.Light, p.Get())

	raw, found := s.Read(theme.Key)
	assert.True(t, found)
	assert.Equal(t, "light", raw)
}

func TestPreference_SetInvalid(t *testing.T) {
	s := store.NewMemoryStore()
	p := theme.NewPreference(s)

	err := p.Set(theme.Theme("sepia"))
	var themeErr *theme.ThemeError
	require.ErrorAs(t, err, &themeErr)
	assert.Equal(t, theme.ErrCauseInvalidValue, themeErr.Cause)

	_, found := s.Read(theme.Key)
	assert.False(t, found)
}

func TestPreference_Toggle(t *testing.T) {
	p := theme.NewPreference(store.NewMemoryStore())

	next, err := p.Toggle()
	require.Nil(t, err)
	assert.Equal(t, theme.Light, next)
	assert.Equal(t, theme.Light, p.Get())

	next, err = p.Toggle()
	require.Nil(t, err)
	assert.Equal(t, theme.Dark, next)
	assert.Equal(t, theme.Dark, p.Get())
}

func TestPreference_ToggleWriteFailure(t *testing.T) {
	s := store.NewMemoryStore()
	s.SetDisabled(true)
	p := theme.NewPreference(s)

	next, err := p.Toggle()
	assert.Equal(t, theme.Light, next)
	require.NotNil(t, err)

	var themeErr *theme.ThemeError
	require.ErrorAs(t, err, &themeErr)
	assert.Equal(t, theme.ErrCausePersistFailed, themeErr.Cause)

	var storeErr *store.StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestPreference_DoesNotTouchNewsCache(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.Write("newsCache", "envelope"))

	_, err := theme.NewPreference(s).Toggle()
	require.Nil(t, err)

	raw, _ := s.Read("newsCache")
	assert.Equal(t, "envelope", raw)
}

func TestParse(t *testing.T) {
	got, err := theme.Parse("light")
	require.NoError(t, err)
	assert.Equal(t, theme.Light, got)

	_, err = theme.Parse("sepia")
	assert.ErrorIs(t, err, theme.ErrInvalidTheme)
}

func TestTheme_Opposite(t *testing.T) {
	assert.Equal(t, theme.Light, theme.Dark.Opposite())
	assert.Equal(t, theme.Dark, theme.Light.Opposite())
}
