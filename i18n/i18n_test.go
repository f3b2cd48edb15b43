package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateWithTemplateData(t *testing.T) {
	require.NoError(t, Init("en"))

	ctx := context.Background()
	assert.Equal(t, "Budi checked in", T(ctx, "subject_check_in", map[string]any{"Engineer": "Budi"}))

	id := WithLocale(ctx, "id")
	assert.Equal(t, "Budi telah check-in", T(id, "subject_check_in", map[string]any{"Engineer": "Budi"}))
}

func TestUnknownMessageFallsBackToID(t *testing.T) {
	require.NoError(t, Init("en"))
	assert.Equal(t, "no_such_message", T(context.Background(), "no_such_message"))
}

func TestUnknownLocaleFallsBackToEnglish(t *testing.T) {
	require.NoError(t, Init("en"))
	ctx := WithLocale(context.Background(), "fr")
	assert.Equal(t, "Hello,", T(ctx, "greeting"))
}
