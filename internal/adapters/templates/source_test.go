package templates

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"eventreminder/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent() *domain.Event {
	return &domain.Event{
		ID:       "ev-1",
		Name:     "General Election",
		Date:     time.Date(2024, 7, 28, 8, 0, 0, 0, time.UTC),
		Location: "Springfield",
	}
}

func TestSource_RendersEveryKind(t *testing.T) {
	src, err := NewSource("", time.UTC)
	require.NoError(t, err)

	event := testEvent()
	for _, kind := range domain.AllKinds() {
		subject := src.Subject(kind, event)
		body := src.Body(kind, event)
		assert.NotEmpty(t, subject, "subject for %s", kind)
		assert.NotEmpty(t, body, "body for %s", kind)
		assert.Contains(t, body, "General Election", "body for %s", kind)
	}
}

func TestSource_Determinism(t *testing.T) {
	src, err := NewSource("", time.UTC)
	require.NoError(t, err)

	event := testEvent()
	first := src.Body(domain.KindDayBefore, event)
	second := src.Body(domain.KindDayBefore, event)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "Sunday, 28 July 2024")
	assert.Contains(t, first, "Springfield")
}

func TestSource_UnknownKindPanics(t *testing.T) {
	src, err := NewSource("", time.UTC)
	require.NoError(t, err)

	assert.Panics(t, func() {
		src.Body(domain.NotificationKind("week_after"), testEvent())
	})
}

func TestSource_OverrideDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "day_before.txt"), []byte("Custom copy for {{.Name}}"), 0o600))

	src, err := NewSource(dir, time.UTC)
	require.NoError(t, err)

	event := testEvent()
	assert.Equal(t, "Custom copy for General Election", src.Body(domain.KindDayBefore, event))
	// Kinds without an override file keep the embedded default.
	assert.Contains(t, src.Body(domain.KindAfterEvent, event), "Thank you")
}
