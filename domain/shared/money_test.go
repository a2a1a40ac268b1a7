package shared

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestToMinorUnits(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"1450", 145000},
		{"0.01", 1},
		{"19.995", 2000},
		{"19.994", 1999},
		{"0.1", 10},
		{"1234567.89", 123456789},
	}
	for _, tc := range cases {
		if got := ToMinorUnits(decimal.RequireFromString(tc.in)); got != tc.want {
			t.Errorf("ToMinorUnits(%s) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFromMinorUnits(t *testing.T) {
	if got := FromMinorUnits(145050); !got.Equal(decimal.RequireFromString("1450.50")) {
		t.Errorf("FromMinorUnits(145050) = %s", got)
	}
}
