package variable

import (
	"math"
	"testing"
	"time"
)

func TestEqualCrossTypeNumeric(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"integer vs long same value", Integer(123), Long(123), true},
		{"integer vs short same value", Integer(7), Short(7), true},
		{"integer vs double whole", Integer(123), Double(123.0), true},
		{"integer vs double fractional", Integer(123), Double(123.4), false},
		{"double vs number", Double(1.5), Number(1.5), true},
		{"long vs number whole", Long(42), Number(42), true},
		{"double beyond long range vs long", Double(1e19), Long(math.MaxInt64), false},
		{"negative double beyond range", Double(-1e19), Long(math.MinInt64), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Equal(tc.b); got != tc.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
			if got := tc.b.Equal(tc.a); got != tc.want {
				t.Errorf("Equal is not symmetric for %v, %v", tc.a, tc.b)
			}
		})
	}
}

func TestEqualNonNumeric(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if !Null().Equal(Null()) {
		t.Error("null != null")
	}
	if Null().Equal(String("")) {
		t.Error("null == empty string")
	}
	if !String("a").Equal(String("a")) || String("a").Equal(String("b")) {
		t.Error("string equality broken")
	}
	if String("123").Equal(Integer(123)) {
		t.Error("string compared equal to integer")
	}
	if !Date(now).Equal(Date(now)) {
		t.Error("date != same date")
	}
	if !Date(now).Equal(Date(now.In(time.FixedZone("X", 3600)))) {
		t.Error("date equality should ignore location")
	}
	if !Bytes([]byte{1, 2}).Equal(Bytes([]byte{1, 2})) || Bytes([]byte{1}).Equal(Bytes([]byte{2})) {
		t.Error("bytes equality broken")
	}
	if Object([]byte("{}"), "Invoice").Equal(Object([]byte("{}"), "Order")) {
		t.Error("objects with different declared types compared equal")
	}
}

func TestCompareNumericOrdering(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"long less than long", Long(1), Long(2), -1},
		{"integer vs double between", Integer(3), Double(3.5), -1},
		{"double vs integer between", Double(3.5), Integer(4), -1},
		{"equal across types", Short(9), Double(9.0), 0},
		{"huge double above any long", Double(1e19), Long(math.MaxInt64), 1},
		{"huge negative double below any long", Double(-1e19), Long(math.MinInt64), -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.a.Compare(tc.b)
			if !ok {
				t.Fatalf("Compare(%v, %v) not comparable", tc.a, tc.b)
			}
			if sign(got) != tc.want {
				t.Errorf("Compare(%v, %v) = %d, want sign %d", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestCompareRejectsUnorderableTypes(t *testing.T) {
	pairs := [][2]Value{
		{Boolean(true), Boolean(false)},
		{Null(), Null()},
		{Bytes([]byte{1}), Bytes([]byte{2})},
		{String("a"), Integer(1)},
		{Date(time.Now()), String("2025")},
	}
	for _, p := range pairs {
		if _, ok := p[0].Compare(p[1]); ok {
			t.Errorf("Compare(%v, %v) should not be comparable", p[0], p[1])
		}
	}
}

func TestCompareStringsAndDates(t *testing.T) {
	if c, ok := String("alpha").Compare(String("beta")); !ok || c >= 0 {
		t.Errorf("string compare: %d, %v", c, ok)
	}
	earlier := Date(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	later := Date(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	if c, ok := earlier.Compare(later); !ok || c >= 0 {
		t.Errorf("date compare: %d, %v", c, ok)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
