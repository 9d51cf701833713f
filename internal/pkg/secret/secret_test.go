package secret

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxRoundTrip(t *testing.T) {
	box := NewBox("app-secret")

	token, err := box.Encrypt("sk-abcdef123456")
	require.NoError(t, err)
	assert.NotEqual(t, "sk-abcdef123456", token)
	assert.Equal(t, "sk-abcdef123456", box.Decrypt(token))

	again, err := box.Encrypt("sk-abcdef123456")
	require.NoError(t, err)
	assert.NotEqual(t, token, again, "每次加密应使用新的 nonce")
}

func TestBoxDecryptWithWrongSecret(t *testing.T) {
	token, err := NewBox("secret-a").Encrypt("sk-value")
	require.NoError(t, err)

	assert.Empty(t, NewBox("secret-b").Decrypt(token))
}

func TestBoxEmptyAndGarbage(t *testing.T) {
	box := NewBox("")

	token, err := box.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, token)

	assert.Empty(t, box.Decrypt(""))
	assert.Empty(t, box.Decrypt("not base64!"))
	assert.Empty(t, box.Decrypt("c2hvcnQ="))
}

func TestBoxDefaultSecret(t *testing.T) {
	token, err := NewBox("").Encrypt("sk-value")
	require.NoError(t, err)

	assert.Equal(t, "sk-value", NewBox(DefaultSecret).Decrypt(token))
}

func TestMask(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"a":                "***a",
		"abcd1234":         "***34",
		"sk-1234567890abc": "sk-1...0abc",
	}
	for in, want := range cases {
		assert.Equal(t, want, Mask(in), "input %q", in)
	}
}
