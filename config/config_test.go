package config

import (
	"testing"
	"time"
)

func TestInBreakWindow(t *testing.T) {
	policy := AdmissionPolicy{BreakStartHour: 12, BreakEndHour: 13}

	cases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"just before break", time.Date(2026, 3, 10, 11, 59, 0, 0, time.UTC), false},
		{"break start", time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), true},
		{"inside break", time.Date(2026, 3, 10, 12, 59, 0, 0, time.UTC), true},
		{"break end is open", time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC), false},
		{"morning", time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range cases {
		if got := policy.InBreakWindow(tt.t); got != tt.want {
			t.Fatalf("%s: InBreakWindow(%v)=%v, want %v", tt.name, tt.t, got, tt.want)
		}
	}
}

func TestInBreakWindowZoneIndependent(t *testing.T) {
	policy := AdmissionPolicy{BreakStartHour: 12, BreakEndHour: 13}

	// The same instant, encoded with different offsets, must get one verdict.
	utc := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	offset := utc.In(time.FixedZone("CLIENT", 2*3600)) // reads 12:00+02:00
	if policy.InBreakWindow(utc) != policy.InBreakWindow(offset) {
		t.Fatal("verdict must not depend on the client's zone encoding")
	}
	if policy.InBreakWindow(offset) {
		t.Fatal("10:00 on the clinic clock is not in the break window")
	}
}

func TestInBreakWindowClinicClock(t *testing.T) {
	clinic := time.FixedZone("EAT", 3*3600)
	policy := AdmissionPolicy{BreakStartHour: 12, BreakEndHour: 13, Location: clinic}

	// 09:30 UTC is 12:30 on the clinic's wall clock.
	if !policy.InBreakWindow(time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)) {
		t.Fatal("instant inside the clinic's break window must be rejected")
	}
	if policy.InBreakWindow(time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC)) {
		t.Fatal("12:30 UTC is 15:30 on the clinic clock, outside the break")
	}
}

func TestSlotFull(t *testing.T) {
	policy := AdmissionPolicy{SlotCapacity: 3}

	cases := []struct {
		occupied int64
		want     bool
	}{
		{0, false},
		{2, false},
		{3, true},
		{4, true},
	}
	for _, tt := range cases {
		if got := policy.SlotFull(tt.occupied); got != tt.want {
			t.Fatalf("SlotFull(%d)=%v, want %v", tt.occupied, got, tt.want)
		}
	}
}
