package geo

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestDistance_Identical(t *testing.T) {
	if d := Distance(41.0082, 28.9784, 41.0082, 28.9784); d != 0 {
		t.Fatalf("expected 0 for identical points, got %v", d)
	}
}

func TestDistance_Symmetric(t *testing.T) {
	points := [][2]float64{
		{41.0082, 28.9784},
		{19.4326, -99.1332},
		{-33.8688, 151.2093},
		{0, 0},
		{90, 0},
		{-90, 180},
	}
	for _, a := range points {
		for _, b := range points {
			ab := Distance(a[0], a[1], b[0], b[1])
			ba := Distance(b[0], b[1], a[0], a[1])
			if math.Abs(ab-ba) > epsilon {
				t.Errorf("distance(%v,%v)=%v but reverse=%v", a, b, ab, ba)
			}
		}
	}
}

func TestDistance_KnownValues(t *testing.T) {
	tests := []struct {
		name          string
		lat1, lon1    float64
		lat2, lon2    float64
		wantKm, tolKm float64
	}{
		{"istanbul doorstep", 41.0082, 28.9784, 41.0080, 28.9786, 0.028, 0.005},
		{"one degree of latitude", 0, 0, 1, 0, 111.19, 0.01},
		{"cdmx to guadalajara", 19.4326, -99.1332, 20.6597, -103.3496, 461, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.wantKm) > tt.tolKm {
				t.Fatalf("expected ~%v km, got %v", tt.wantKm, got)
			}
		})
	}
}

func TestDistance_Antipodal(t *testing.T) {
	got := Distance(0, 0, 0, 180)
	want := math.Pi * EarthRadiusKm
	if math.IsNaN(got) || math.Abs(got-want) > 1e-6 {
		t.Fatalf("expected half circumference %v, got %v", want, got)
	}

	got = Distance(90, 0, -90, 0)
	if math.IsNaN(got) || math.Abs(got-want) > 1e-6 {
		t.Fatalf("pole to pole: expected %v, got %v", want, got)
	}
}
