package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Kind
	}{
		{"plain text", "hello", Text},
		{"empty", "", Text},
		{"png data url", "data:image/png;base64,iVBORw0KGgo=", Image},
		{"jpeg data url", "data:image/jpeg;base64,/9j/4AAQ", Image},
		{"prefix without marker", "data:image/png,rawbytes", Text},
		{"marker without prefix", "see base64,abc", Text},
		{"leading space", " data:image/png;base64,abc", Text},
		{"other data url", "data:text/plain;base64,aGk=", Text},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.raw).Kind())
		})
	}
}

func TestKeyTrimsText(t *testing.T) {
	assert.Equal(t, "hello", Classify("  hello\n").Key())
	assert.True(t, Classify("hello").Equal(Classify(" hello ")))
}

func TestKeyUsesImagePrefix(t *testing.T) {
	base := "data:image/png;base64," + strings.Repeat("A", 300)
	a := Classify(base + "tail-one")
	b := Classify(base + "tail-two")

	assert.Len(t, a.Key(), ImageKeyLen)
	assert.True(t, a.Equal(b), "images equal in the first 200 chars compare equal")

	short := Classify("data:image/png;base64,AAAA")
	assert.Equal(t, short.Raw(), short.Key())
}

func TestEqualAcrossKinds(t *testing.T) {
	img := Classify("data:image/png;base64,AAAA")
	txt := Classify("data:image/png;base64,AAAA ")
	// trailing space keeps the prefix, so this is still an image
	assert.Equal(t, Image, txt.Kind())

	plain := Classify("AAAA")
	assert.False(t, img.Equal(plain))
	assert.False(t, plain.Equal(img))
}

func TestBlank(t *testing.T) {
	assert.True(t, Classify("").Blank())
	assert.True(t, Classify(" \t\n").Blank())
	assert.False(t, Classify(" x ").Blank())
}

func TestEncodeDecodeImage(t *testing.T) {
	data := []byte{0x89, 'P', 'N', 'G', 0, 1, 2}
	enc := EncodeImage("", data)
	require.True(t, strings.HasPrefix(enc, "data:image/png;base64,"))

	p := Classify(enc)
	require.Equal(t, Image, p.Kind())
	assert.Equal(t, "image/png", p.MIME())

	got, err := p.Decode()
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Classify("hello").Decode()
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = Classify("data:image/png;base64,!!!").Decode()
	assert.Error(t, err)

	assert.Equal(t, "text/plain", Classify("hello").MIME())
}

func TestKindText(t *testing.T) {
	b, err := Image.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "image", string(b))

	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("IMAGE")))
	assert.Equal(t, Image, k)
	require.NoError(t, k.UnmarshalText([]byte("bogus")))
	assert.Equal(t, Text, k)
}
