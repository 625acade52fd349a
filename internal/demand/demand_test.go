package demand

import (
	"math"
	"testing"
)

func TestHourlyFactorStrictlyPositive(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		for minute := 0; minute < 60; minute += 5 {
			if f := HourlyFactor(hour, minute); f <= 0 {
				t.Errorf("HourlyFactor(%d, %d) = %v, want > 0", hour, minute, f)
			}
		}
	}
}

func TestHourlyFactorContinuous(t *testing.T) {
	// Value at the last minute of one hour must be within one minute's slope
	// of the value at the top of the next. The steepest segment (19h to 24h)
	// moves 1.7 over 5 hours, so one minute can move at most ~0.006.
	const maxStep = 0.02
	for hour := 0; hour < 23; hour++ {
		before := HourlyFactor(hour, 59)
		after := HourlyFactor(hour+1, 0)
		if math.Abs(after-before) > maxStep {
			t.Errorf("discontinuity at hour %d: %v -> %v", hour+1, before, after)
		}
	}

	// Midnight wrap: end of day must land back at the hour-0 value.
	endOfDay := HourlyFactor(23, 59)
	startOfDay := HourlyFactor(0, 0)
	if math.Abs(endOfDay-startOfDay) > maxStep {
		t.Errorf("discontinuity across midnight: %v -> %v", endOfDay, startOfDay)
	}
}

func TestHourlyFactorRushHours(t *testing.T) {
	morning := HourlyFactor(8, 0)
	if morning < 1.5 || morning > 2.0 {
		t.Errorf("morning rush factor = %v, want in [1.5, 2.0]", morning)
	}

	evening := HourlyFactor(18, 0)
	if evening < 1.5 || evening > 2.0 {
		t.Errorf("evening rush factor = %v, want in [1.5, 2.0]", evening)
	}

	overnight := HourlyFactor(3, 0)
	if overnight > 0.5 {
		t.Errorf("overnight factor = %v, want <= 0.5", overnight)
	}

	if overnight >= morning {
		t.Errorf("overnight factor %v should be below the morning rush %v", overnight, morning)
	}
}

func TestHourlyFactorClampsRange(t *testing.T) {
	if f := HourlyFactor(-1, -5); f <= 0 {
		t.Errorf("out-of-range input produced %v, want > 0", f)
	}
	if f := HourlyFactor(99, 99); f <= 0 {
		t.Errorf("out-of-range input produced %v, want > 0", f)
	}
}

func TestDayFactor(t *testing.T) {
	tests := []struct {
		category string
		want     float64
	}{
		{"weekday", 1.0},
		{"Monday", 1.0},
		{"friday", 1.0},
		{"weekend", 0.7},
		{"Saturday", 0.7},
		{"sunday", 0.7},
		{"", 0.85},
		{"holiday", 0.85},
		{"all", 0.85},
	}

	for _, tt := range tests {
		if got := DayFactor(tt.category); got != tt.want {
			t.Errorf("DayFactor(%q) = %v, want %v", tt.category, got, tt.want)
		}
	}
}

func TestIsPeakInclusiveBounds(t *testing.T) {
	peakHours := []int{7, 8, 9, 10, 16, 17, 18, 19}
	offHours := []int{0, 3, 6, 11, 12, 15, 20, 23}

	for _, h := range peakHours {
		if !IsPeak(h) {
			t.Errorf("IsPeak(%d) = false, want true", h)
		}
	}
	for _, h := range offHours {
		if IsPeak(h) {
			t.Errorf("IsPeak(%d) = true, want false", h)
		}
	}
}

func TestTollFeePeakNeverCheaper(t *testing.T) {
	for _, c := range TollableClasses() {
		peak := TollFee(c.ID, true)
		overnight := TollFee(c.ID, false)
		if peak < overnight {
			t.Errorf("class %d: peak fee %v below overnight fee %v", c.ID, peak, overnight)
		}
		if overnight < 0 {
			t.Errorf("class %d: negative overnight fee %v", c.ID, overnight)
		}
	}
}

func TestTollFeeUnknownClassFailsOpen(t *testing.T) {
	if fee := TollFee(99, true); fee != 0 {
		t.Errorf("unknown class fee = %v, want 0", fee)
	}
	if _, ok := ClassByID(99); ok {
		t.Error("ClassByID(99) reported known")
	}
}

func TestSubwayClassNeverTolled(t *testing.T) {
	if fee := TollFee(SubwayClassID, true); fee != 0 {
		t.Errorf("subway peak fee = %v, want 0", fee)
	}
	for _, c := range TollableClasses() {
		if c.ID == SubwayClassID {
			t.Error("subway listed among tollable classes")
		}
	}
}
