package traffic

import (
	"errors"
	"math"
	"testing"
)

func TestCoordinate_Matches(t *testing.T) {
	const lat, lng = 18.5, 73.85

	tests := []struct {
		name  string
		query Coordinate
		want  bool
	}{
		{"exact", Coordinate{Lat: lat, Lng: lng}, true},
		{"within tolerance", Coordinate{Lat: 18.500005, Lng: 73.850005}, true},
		{"latitude too far", Coordinate{Lat: 18.6, Lng: lng}, false},
		{"longitude too far", Coordinate{Lat: lat, Lng: 73.8501}, false},
		{"out of range", Coordinate{Lat: 200, Lng: -400}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Matches(lat, lng); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCoordinate_Bounds(t *testing.T) {
	b := Coordinate{Lat: 10, Lng: -20}.Bounds()
	if b.MinLat >= 10 || b.MaxLat <= 10 || b.MinLng >= -20 || b.MaxLng <= -20 {
		t.Fatalf("Bounds() = %+v does not contain the query point", b)
	}
	if got := b.MaxLat - b.MinLat; math.Abs(got-2*CenterMatchTolerance) > 1e-12 {
		t.Errorf("latitude span = %v, want %v", got, 2*CenterMatchTolerance)
	}
}

func TestCoordinate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		c       Coordinate
		wantErr bool
	}{
		{"plain", Coordinate{Lat: 18.5, Lng: 73.85}, false},
		{"out of range is allowed", Coordinate{Lat: 95, Lng: 190}, false},
		{"nan lat", Coordinate{Lat: math.NaN(), Lng: 1}, true},
		{"inf lng", Coordinate{Lat: 1, Lng: math.Inf(-1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error %v is not ErrInvalidInput", err)
			}
		})
	}
}

func TestNewFilter(t *testing.T) {
	f, err := NewFilter("  North ", "")
	if err != nil {
		t.Fatalf("NewFilter() error = %v", err)
	}
	if f.Zone != "North" || f.CenterID != AllSentinel {
		t.Errorf("NewFilter() = %+v", f)
	}
	if !f.MatchesZone("North") || f.MatchesZone("South") {
		t.Error("zone matching is wrong")
	}
	if !f.MatchesCenter("anything") {
		t.Error("all sentinel should match every center")
	}

	if _, err := NewFilter("bad\x00zone", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("control characters: error = %v, want ErrInvalidInput", err)
	}
	long := make([]byte, maxFilterValueLen+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := NewFilter("", string(long)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("long center id: error = %v, want ErrInvalidInput", err)
	}
}

func TestNewCenterView(t *testing.T) {
	r := IncidentRecord{
		CenterID:   "PUN-01",
		Location:   Location{Zone: "West", District: 4, Latitude: 18.5, Longitude: 73.85},
		Violations: &Violations{Total: IntPtr(12), Reported: IntPtr(9)},
		Challans: &Challans{
			Total:           IntPtr(7),
			CollectedAmount: FloatPtr(3500),
			Breakdown:       map[string]int64{"Speeding": 4},
		},
	}

	v := NewCenterView(r)
	if v.CenterID != "PUN-01" || v.Location.Zone != "West" || v.Location.District != 4 {
		t.Errorf("identity fields = %+v", v)
	}
	if v.Location.Coordinates.Latitude != 18.5 || v.Location.Coordinates.Longitude != 73.85 {
		t.Errorf("coordinates = %+v", v.Location.Coordinates)
	}
	if v.Violations != (ViolationCounts{Total: 12, Reported: 9}) {
		t.Errorf("violations = %+v", v.Violations)
	}
	if v.Challans.Total != 7 || v.Challans.Breakdown.CollectedAmount != 3500 {
		t.Errorf("challans = %+v", v.Challans)
	}
	if v.Accidents != (AccidentCounts{}) {
		t.Errorf("accidents = %+v, want zeros for a missing section", v.Accidents)
	}
}

func TestMalformedRecordError(t *testing.T) {
	err := error(&MalformedRecordError{CenterID: "C1", Field: "accidents"})
	if !errors.Is(err, ErrMalformedRecord) {
		t.Error("MalformedRecordError should match ErrMalformedRecord")
	}
	if errors.Is(err, ErrStore) {
		t.Error("MalformedRecordError should not match ErrStore")
	}
	if got, want := err.Error(), `malformed record: center "C1" is missing accidents`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
