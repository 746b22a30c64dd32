package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCensoredLoader_LoadAll(t *testing.T) {
	req := require.New(t)
	loader := NewCensoredLoader()

	data, err := loader.LoadAll("censored")

	req.NoError(err)
	req.NotEmpty(data.Words)
	req.ElementsMatch([]string{"en", "fr"}, data.Languages)
}

func TestCensoredLoader_Unknown_Directory(t *testing.T) {
	loader := NewCensoredLoader()

	_, err := loader.LoadAll("missing")

	require.Error(t, err)
}
