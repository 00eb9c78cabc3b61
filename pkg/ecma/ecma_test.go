package ecma

import (
	"math"
	"testing"

	"github.com/nooga/explicate/pkg/asg"
)

func TestUint32AndInt32(t *testing.T) {
	tests := []struct {
		in     float64
		uint32 uint32
		int32  int32
	}{
		{0, 0, 0},
		{math.Copysign(0, -1), 0, 0},
		{1, 1, 1},
		{-1, 4294967295, -1},
		{4294967295, 4294967295, -1},
		{4294967296, 0, 0},
		{4294967297, 1, 1},
		{2147483647, 2147483647, 2147483647},
		{2147483648, 2147483648, -2147483648},
		{-2147483648, 2147483648, -2147483648},
		{-2147483649, 2147483647, 2147483647},
		{3.9, 3, 3},
		{-3.9, 4294967293, -3},
		{1e21, 3735027712, -559939584},
		{math.NaN(), 0, 0},
		{math.Inf(1), 0, 0},
		{math.Inf(-1), 0, 0},
	}
	for _, tt := range tests {
		if got := Uint32(tt.in); got != tt.uint32 {
			t.Errorf("Uint32(%v) = %d, want %d", tt.in, got, tt.uint32)
		}
		if got := Int32(tt.in); got != tt.int32 {
			t.Errorf("Int32(%v) = %d, want %d", tt.in, got, tt.int32)
		}
	}
}

func TestNodeInt32Conversions(t *testing.T) {
	if got, ok := ToUint32(&asg.LiteralNumber{Value: -1}); !ok || got != 4294967295 {
		t.Errorf("ToUint32(-1) = %d, %v", got, ok)
	}
	if got, ok := ToInt32(&asg.LiteralNumber{Value: 4294967296}); !ok || got != 0 {
		t.Errorf("ToInt32(4294967296) = %d, %v", got, ok)
	}
	if got, ok := ToInt32(&asg.LiteralString{Value: " 0x10 "}); !ok || got != 16 {
		t.Errorf("ToInt32(\" 0x10 \") = %d, %v", got, ok)
	}
	if _, ok := ToInt32(&asg.LiteralEmptyObject{}); ok {
		t.Error("objects must not be converted statically")
	}
}

func TestNumberToString(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-1.5, "-1.5"},
		{13.33, "13.33"},
		{0.30000000000000004, "0.30000000000000004"},
		{123456789, "123456789"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{1.5e21, "1.5e+21"},
		{0.000001, "0.000001"},
		{1e-7, "1e-7"},
		{1.5e-7, "1.5e-7"},
		{0.00001234, "0.00001234"},
		{math.MaxFloat64, "1.7976931348623157e+308"},
		{5e-324, "5e-324"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, tt := range tests {
		if got := NumberToString(tt.in); got != tt.want {
			t.Errorf("NumberToString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStringToNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"   ", 0},
		{"42", 42},
		{" \t\n42\u00a0", 42},
		{"\ufeff7\u00a0", 7},
		{"-1.5", -1.5},
		{"+.5", 0.5},
		{"5.", 5},
		{"1e3", 1000},
		{"1E-2", 0.01},
		{"0x1F", 31},
		{"0o17", 15},
		{"0B101", 5},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
		{"1e1000", math.Inf(1)},
		{"007", 7},
	}
	for _, tt := range tests {
		if got := StringToNumber(tt.in); got != tt.want {
			t.Errorf("StringToNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, in := range []string{"abc", "1a", "0x", "-0x10", "0xG", "1e", ".", "infinity", "1_000", "1 2", "0b2"} {
		if got := StringToNumber(in); !math.IsNaN(got) {
			t.Errorf("StringToNumber(%q) = %v, want NaN", in, got)
		}
	}
}

func TestToBoolean(t *testing.T) {
	tests := []struct {
		node asg.NodeWithValue
		want bool
		ok   bool
	}{
		{&asg.LiteralNumber{Value: 0}, false, true},
		{&asg.LiteralNumber{Value: math.NaN()}, false, true},
		{&asg.LiteralNumber{Value: -2}, true, true},
		{&asg.LiteralString{Value: ""}, false, true},
		{&asg.LiteralString{Value: "0"}, true, true},
		{&asg.LiteralNull{}, false, true},
		{&asg.LiteralUndefined{}, false, true},
		{&asg.LiteralEmptyArray{}, true, true},
		{&asg.LiteralInfinity{}, true, true},
		{&asg.GlobalReference{Name: "x"}, false, false},
	}
	for _, tt := range tests {
		got, ok := ToBoolean(tt.node)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ToBoolean(%s) = %v, %v; want %v, %v", asg.Format(tt.node), got, ok, tt.want, tt.ok)
		}
	}
}

func TestToStringAndNumber(t *testing.T) {
	strs := []struct {
		node asg.NodeWithValue
		want string
	}{
		{&asg.LiteralUndefined{}, "undefined"},
		{&asg.LiteralNull{}, "null"},
		{&asg.LiteralBoolean{Value: true}, "true"},
		{&asg.LiteralNumber{Value: 2}, "2"},
		{&asg.LiteralInfinity{}, "Infinity"},
	}
	for _, tt := range strs {
		if got, ok := ToString(tt.node); !ok || got != tt.want {
			t.Errorf("ToString(%s) = %q, %v", asg.Format(tt.node), got, ok)
		}
	}
	if _, ok := ToString(&asg.LiteralSymbol{Description: "s"}); ok {
		t.Error("ToString of a symbol throws and must stay unknown")
	}
	if _, ok := ToNumber(&asg.LiteralSymbol{}); ok {
		t.Error("ToNumber of a symbol throws and must stay unknown")
	}
	if got, ok := ToNumber(&asg.LiteralUndefined{}); !ok || !math.IsNaN(got) {
		t.Errorf("ToNumber(undefined) = %v, %v", got, ok)
	}
	if got, ok := ToNumber(&asg.LiteralBoolean{Value: true}); !ok || got != 1 {
		t.Errorf("ToNumber(true) = %v, %v", got, ok)
	}
}

func TestType(t *testing.T) {
	tests := []struct {
		node asg.NodeWithValue
		want ValueType
		ok   bool
	}{
		{&asg.LiteralString{Value: "a"}, String, true},
		{&asg.LiteralFunction{}, Object, true},
		{&asg.Not{Expression: &asg.GlobalReference{Name: "x"}}, Boolean, true},
		{&asg.FloatMath{Operator: "+", Left: &asg.LiteralNumber{Value: 1}, Right: &asg.LiteralString{}}, String, true},
		{&asg.FloatMath{Operator: "+", Left: &asg.LiteralNumber{Value: 1}, Right: &asg.LiteralNull{}}, Number, true},
		{&asg.FloatMath{Operator: "+", Left: &asg.LiteralNumber{Value: 1}, Right: &asg.GlobalReference{Name: "x"}}, 0, false},
		{&asg.FloatMath{Operator: "*", Left: &asg.GlobalReference{Name: "x"}, Right: &asg.GlobalReference{Name: "y"}}, Number, true},
		{&asg.GlobalReference{Name: "x"}, 0, false},
	}
	for _, tt := range tests {
		got, ok := Type(tt.node)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("Type(%s) = %v, %v; want %v, %v", asg.Format(tt.node), got, ok, tt.want, tt.ok)
		}
	}
}
