package almanac

import (
	"testing"
	"time"
)

func TestComputeSunriseBeforeSunsetAtMidLatitude(t *testing.T) {
	st := Compute(172, 30.2672, -97.7431) // ~June 21
	if st.SunriseUTCMinutes < 0 || st.SunsetUTCMinutes < 0 {
		t.Fatalf("expected both sunrise and sunset at mid-latitude, got %+v", st)
	}
}

func TestComputePolarDayAtHighLatitudeSummer(t *testing.T) {
	st := Compute(172, 75, 0) // summer solstice, deep into the arctic circle
	if st.SunriseUTCMinutes != -1 || st.SunsetUTCMinutes != -1 {
		t.Fatalf("expected polar day sentinel, got %+v", st)
	}
}

func TestFormatLocalHandlesSentinel(t *testing.T) {
	if s := FormatLocal(-1, time.UTC); s != "" {
		t.Fatalf("expected empty string for sentinel minutes, got %q", s)
	}
}

func TestFormatLocalProducesClockString(t *testing.T) {
	s := FormatLocal(750, time.UTC) // 12:30 UTC
	if s != "12:30 PM" {
		t.Fatalf("expected 12:30 PM, got %q", s)
	}
}
