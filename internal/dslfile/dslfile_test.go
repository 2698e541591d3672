package dslfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const arithmeticManifest = `
format = "GRAPE-DSL"

[[primitive]]
name = "1"
type = "int"
semantic = "int.one"

[[primitive]]
name = "0"
type = "int"
semantic = "int.zero"

[[primitive]]
name = "+"
type = "int->int->int"
semantic = "int.add"

[[primitive]]
name = ">0"
type = "int->bool"
semantic = "int.gtzero"

[[sampler]]
type = "int"
int_pool = [-2, -1, 0, 1, 2, 3]
`

func TestParseBuildsRegistryAndBaseInputs(t *testing.T) {
	def, err := Parse([]byte(arithmeticManifest))
	require.NoError(t, err)

	typ, ok := def.DSL.Type("+")
	require.True(t, ok)
	assert.Equal(t, "int->int->int", typ)

	fn, ok := def.DSL.Semantic("+")
	require.True(t, ok)
	assert.Equal(t, 5, fn([]any{2, 3}))

	assert.ElementsMatch(t, []any{-2, -1, 0, 1, 2, 3}, def.BaseInputs["int"])
}

func TestParseRejectsUnknownSemantic(t *testing.T) {
	_, err := Parse([]byte(`
[[primitive]]
name = "mystery"
type = "int"
semantic = "int.frobnicate"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown semantic")
}

func TestParseRejectsEmptyManifest(t *testing.T) {
	_, err := Parse([]byte(`format = "GRAPE-DSL"`))
	require.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arith.toml")
	require.NoError(t, os.WriteFile(path, []byte(arithmeticManifest), 0644))

	def, err := Load(path)
	require.NoError(t, err)
	assert.Contains(t, def.DSL.OriginalNames(), "+")
}
