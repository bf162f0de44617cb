package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAddress(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", true},
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", true},
		{"0x5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED", true},
		{"5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", true},
		{"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359", true},
		// 校验和错误
		{"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAeD", false},
		{"0xfb6916095ca1df60bB79Ce92cE3Ea74c37c5d359", false},
		{"0xABC", false},
		{"", false},
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaeg", false},
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed00", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsAddress(tc.in), tc.in)
	}
}
