package prefix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		"10.0.0.0/8",
		"192.168.1.0/24",
		"0.0.0.0/0",
		"255.255.255.255/32",
		"2001:db8::/32",
		"::/0",
		"fe80::1/128",
	}
	for _, s := range cases {
		p := Parse(s)
		require.True(t, p.IsValid(), "expected %q to parse", s)
		assert.Equal(t, s, p.String(), "round-trip mismatch for %q", s)
	}
}

func TestParseMalformedReturnsSentinel(t *testing.T) {
	cases := []string{"", "not a prefix", "10.0.0.0", "10.0.0.0/33", "1.2.3.4/-1", "gibberish/8"}
	for _, s := range cases {
		p := Parse(s)
		assert.False(t, p.IsValid(), "expected %q to be invalid", s)
		assert.Equal(t, Invalid, p.Family())
	}
}

func TestEqualityAndHashing(t *testing.T) {
	a := Parse("10.0.0.0/8")
	b := Parse("10.0.0.0/8")
	c := Parse("10.0.0.0/9")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))

	m := map[Prefix]int{a: 1}
	m[b] = 2
	assert.Len(t, m, 1, "a and b must hash/compare equal as map keys")
}

func TestFamilyDiscrimination(t *testing.T) {
	assert.Equal(t, IPv4, Parse("1.2.3.0/24").Family())
	assert.Equal(t, IPv6, Parse("::1/128").Family())
}
