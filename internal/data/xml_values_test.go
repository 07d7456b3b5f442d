package data

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXMLInt(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"42", 42},
		{" 42 ", 42},
		{"-17", -17},
		{"+5", 5},
		{"0x1F", 31},
		{"0XfF", 255},
		{"12abc", 12},
		{"abc", 0},
		{"", 0},
		{"99999999999", math.MaxInt32},
		{"-99999999999", math.MinInt32},
		{"999999999999999999999999", math.MaxInt32},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, xmlInt(c.in), "input %q", c.in)
	}
}

func TestXMLUnsigned(t *testing.T) {
	assert.Equal(t, uint16(65535), xmlUint16("70000"))
	assert.Equal(t, uint16(0), xmlUint16("-3"))
	assert.Equal(t, uint16(300), xmlUint16("300"))
	assert.Equal(t, uint32(math.MaxUint32), xmlUint32("5000000000"))
	assert.Equal(t, uint16(0), xmlUint16OrZero("12", false))
	assert.Equal(t, uint16(12), xmlUint16OrZero("12", true))
}

func TestXMLBool(t *testing.T) {
	for _, s := range []string{"1", "true", "True", "yes", "Y"} {
		assert.True(t, xmlBool(s), s)
	}
	for _, s := range []string{"0", "false", "no", "", "on"} {
		assert.False(t, xmlBool(s), s)
	}
}
