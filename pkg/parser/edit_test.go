package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyEdits(t *testing.T) {
	src := []byte("var a = 1; var b = 2;")

	got := ApplyEdits(src, []Edit{
		{Start: 15, End: 16, Text: "bee"},
		{Start: 4, End: 5, Text: "alpha"},
	})
	assert.Equal(t, "var alpha = 1; var bee = 2;", string(got))

	same := ApplyEdits(src, nil)
	assert.Equal(t, src, same)
	same[0] = 'X'
	assert.Equal(t, byte('v'), src[0], "ApplyEdits never aliases the input")
}

func TestSplice(t *testing.T) {
	src := []byte("0123456789")

	s := Splice(src, 2, 8, []Edit{
		{Start: 3, End: 5, Text: "ab"},
		{Start: 4, End: 6, Text: "overlap"},
		{Start: 0, End: 1, Text: "outside"},
		{Start: 6, End: 6, Text: "+"},
	})
	assert.Equal(t, "2ab5+67", s.Text)

	assert.Equal(t, 0, s.Offset(2))
	assert.Equal(t, 3, s.Offset(5))
	assert.Equal(t, 6, s.Offset(7), "insertions shift later offsets")
}
