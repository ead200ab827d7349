package prefixed_uuid

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndParse(t *testing.T) {
	id := New("ask")
	assert.True(t, strings.HasPrefix(id.String(), "ask-"))
	assert.False(t, id.IsZero())

	parsed, err := Parse(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestParseErrors(t *testing.T) {
	for _, s := range []string{"", "nodash", "-6ba7b810-9dad-11d1-80b4-00c04fd430c8", "ask-not-a-uuid"} {
		_, err := Parse(s)
		assert.Error(t, err, s)
	}
}

func TestJSON(t *testing.T) {
	type body struct {
		ID PrefixedUUID `json:"id"`
	}
	in := body{ID: New("ask")}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id":"ask-`)

	var out body
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}
