package generator

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestIsEyeCell(t *testing.T) {
	tests := []struct {
		row, col int
		want     bool
	}{
		{0, 0, true},
		{6, 6, true},
		{0, 24, true},
		{24, 0, true},
		{24, 24, false},
		{12, 12, false},
		{7, 7, false},
		{6, 18, true},
		{18, 6, true},
		{17, 6, false},
	}

	for _, tt := range tests {
		if got := IsEyeCell(tt.row, tt.col, 25); got != tt.want {
			t.Errorf("IsEyeCell(%d, %d, 25) = %v, want %v", tt.row, tt.col, got, tt.want)
		}
	}
}

func TestIsEyeCell_ThreeFinderPatterns(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("eye cells cover exactly three 7x7 squares", prop.ForAll(
		func(version int) bool {
			count := 17 + 4*version
			n := 0
			for r := 0; r < count; r++ {
				for c := 0; c < count; c++ {
					if IsEyeCell(r, c, count) {
						n++
					}
				}
			}
			return n == 3*finderSize*finderSize
		},
		gen.IntRange(1, 40),
	))

	properties.TestingRun(t)
}

func TestQRLayout(t *testing.T) {
	l := newQRLayout(21, 250, 2)
	if l.cell != 10 {
		t.Errorf("Expected cell size 10, got %v", l.cell)
	}
	x, y := l.origin(1, 3)
	if x != 50 || y != 30 {
		t.Errorf("Expected origin (50, 30), got (%v, %v)", x, y)
	}
}

func TestRecoveryLevel_DefaultsToMedium(t *testing.T) {
	if recoveryLevel("") != recoveryLevel(ECMedium) {
		t.Error("Expected unknown level to map to medium")
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	p := newTestPipeline()
	properties := gopter.NewProperties(nil)

	nonEmpty := gen.AlphaString().SuchThat(func(s string) bool { return s != "" && len(s) < 64 })

	for _, typ := range []string{"qrcode", "CODE128"} {
		for _, format := range []string{"png", "svg"} {
			typ, format := typ, format
			properties.Property(typ+"/"+format+" output is byte-identical", prop.ForAll(
				func(payload string) bool {
					a, errA := p.Generate(context.Background(), typ, payload, format, Options{})
					b, errB := p.Generate(context.Background(), typ, payload, format, Options{})
					return errA == nil && errB == nil && a.Success && a.Data == b.Data
				},
				nonEmpty,
			))
		}
	}

	properties.TestingRun(t)
}
