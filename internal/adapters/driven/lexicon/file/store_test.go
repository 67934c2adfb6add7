package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
)

func TestNewStore_UsesEmbeddedDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.toml")

	store, err := NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	lex := store.Lexicon()
	require.NotNil(t, lex)
	assert.Equal(t, "builtin-1", lex.Version)

	// Every category has at least one term out of the box.
	for _, category := range []domain.WarningCategory{
		domain.WarningConvenienceLanguage,
		domain.WarningNonPatientUse,
		domain.WarningPreferenceLanguage,
		domain.WarningCostArgument,
		domain.WarningVagueWellbeing,
	} {
		assert.NotEmpty(t, lex.Terms[category], "category %s", category)
	}
	assert.Contains(t, lex.Terms[domain.WarningNonPatientUse], "family will also use")
}

func TestNewStore_OverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.toml")
	content := `version = "custom-1"

[terms]
cost_argument = ["budget friendly"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	store, err := NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	lex := store.Lexicon()
	assert.Equal(t, "custom-1", lex.Version)
	assert.Equal(t, []string{"budget friendly"}, lex.Terms[domain.WarningCostArgument])

	// Override replaces the whole lexicon, not individual categories.
	assert.Empty(t, lex.Terms[domain.WarningPreferenceLanguage])
}

func TestStore_UnknownCategoryDropped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.toml")
	content := `version = "custom-2"

[terms]
preference_language = ["would rather"]
made_up_category = ["something"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	store, err := NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	lex := store.Lexicon()
	assert.Len(t, lex.Terms, 1)
	assert.Equal(t, []string{"would rather"}, lex.Terms[domain.WarningPreferenceLanguage])
}

func TestStore_Reload_KeepsPreviousOnParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.toml")

	store, err := NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	before := store.Lexicon()

	require.NoError(t, os.WriteFile(path, []byte("not valid toml {{{"), 0600))
	err = store.Reload()
	assert.Error(t, err)

	assert.Same(t, before, store.Lexicon())
}

func TestStore_Reload_PicksUpEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.toml")

	store, err := NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	content := `version = "edited"

[terms]
vague_wellbeing = ["feel good"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	require.NoError(t, store.Reload())

	assert.Equal(t, "edited", store.Lexicon().Version)
}

func TestStore_Watch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.toml")

	store, err := NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Watch())

	content := `version = "watched"

[terms]
convenience_language = ["handy"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	assert.Eventually(t, func() bool {
		return store.Lexicon().Version == "watched"
	}, 3*time.Second, 20*time.Millisecond)
}

func TestStore_Close_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.toml")

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Watch())

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
