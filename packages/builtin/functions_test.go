package builtin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_Call(t *testing.T) {
	r := NewRegistry()
	r.SetClock(func() time.Time { return time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC) })
	t.Setenv("HITASSERT_BUILTIN_TEST", "from-env")

	tests := []struct {
		expr string
		want any
	}{
		{`now()`, "2024-03-09T15:04:05Z"},
		{`date()`, "2024-03-09"},
		{`date("02/01/2006")`, "09/03/2024"},
		{`timestamp()`, int64(1709996645)},
		{`env("HITASSERT_BUILTIN_TEST")`, "from-env"},
		{`env("HITASSERT_BUILTIN_UNSET", "fallback")`, "fallback"},
		{`lower("ABC")`, "abc"},
		{`upper('abc')`, "ABC"},
		{`trim("  x ")`, "x"},
		{`base64("hello")`, "aGVsbG8="},
		{`base64Decode("aGVsbG8=")`, "hello"},
		{`base64Decode("%%%")`, ""},
		{`md5("abc")`, "900150983cd24fb0d6963f7d28e17f72"},
		{`sha256("abc")`, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{`urlEncode("a b&c")`, "a+b%26c"},
		{`urlDecode("a+b%26c")`, "a b&c"},
		{`lower()`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, ok := r.Call(tt.expr)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_CallUnknown(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Call("nope()")
	assert.False(t, ok)
	_, ok = r.Call("HOME")
	assert.False(t, ok)

	r.Register("answer", func(_ []string) any { return 42 })
	got, ok := r.Call("answer()")
	assert.True(t, ok)
	assert.Equal(t, 42, got)
}

func TestParseArgs(t *testing.T) {
	assert.Equal(t, []string{"a", "b, c", "d"}, parseArgs(`a, "b, c", 'd'`))
	assert.Nil(t, parseArgs(""))
}
