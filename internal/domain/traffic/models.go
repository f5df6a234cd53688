package traffic

import (
	"time"
)

// IncidentRecord is the per-center document held by the store. Sections are
// pointers because upstream writers may omit them; aggregate.Normalize decides
// which omissions are tolerated.
type IncidentRecord struct {
	CenterID            string          `json:"centerId"`
	Date                *time.Time      `json:"date,omitempty"`
	Location            Location        `json:"location"`
	Violations          *Violations     `json:"violations,omitempty"`
	Challans            *Challans       `json:"challans,omitempty"`
	Accidents           *Accidents      `json:"accidents,omitempty"`
	WeatherConditions   string          `json:"weather_conditions,omitempty"`
	PeakHour            *bool           `json:"peak_hour,omitempty"`
	EnforcementOfficers *int64          `json:"enforcement_officers,omitempty"`
	TrafficVolume       *TrafficVolume  `json:"trafficVolume,omitempty"`
	Cameras             *Cameras        `json:"cameras,omitempty"`
	Response            *ResponseTiming `json:"response,omitempty"`
}

type Location struct {
	Zone      string  `json:"zone"`
	District  int     `json:"district"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Violations struct {
	Total        *int64 `json:"total,omitempty"`
	Reported     *int64 `json:"reported,omitempty"`
	Speeding     *int64 `json:"speeding,omitempty"`
	RedLight     *int64 `json:"redLight,omitempty"`
	DrunkDriving *int64 `json:"drunkDriving,omitempty"`
	NoHelmet     *int64 `json:"noHelmet,omitempty"`
}

// Challans.Breakdown maps a violation label ("Speeding", "No Helmet", ...) to
// the number of citations issued for it.
type Challans struct {
	Total           *int64           `json:"total,omitempty"`
	CollectedAmount *float64         `json:"collected_amount,omitempty"`
	PendingAmount   *float64         `json:"pending_amount,omitempty"`
	OnlinePayment   *float64         `json:"online_payment,omitempty"`
	OfflinePayment  *float64         `json:"offline_payment,omitempty"`
	Breakdown       map[string]int64 `json:"breakdown,omitempty"`
}

type Accidents struct {
	Today    *int64 `json:"today,omitempty"`
	Overall  *int64 `json:"overall,omitempty"`
	Fatal    *int64 `json:"fatal,omitempty"`
	NonFatal *int64 `json:"nonFatal,omitempty"`
}

type TrafficVolume struct {
	Peak    *int64 `json:"peak,omitempty"`
	OffPeak *int64 `json:"offPeak,omitempty"`
	Daily   *int64 `json:"daily,omitempty"`
}

type Cameras struct {
	Operational *int64 `json:"operational,omitempty"`
	Total       *int64 `json:"total,omitempty"`
}

type ResponseTiming struct {
	AvgTimeMinutes *float64 `json:"avgTimeMinutes,omitempty"`
}

// CenterView is the shape returned by the center lookup endpoint. The collected
// amount sits under challans.breakdown for compatibility with existing map clients.
type CenterView struct {
	CenterID   string             `json:"centerId"`
	Location   CenterViewLocation `json:"location"`
	Violations ViolationCounts    `json:"violations"`
	Challans   CenterViewChallans `json:"challans"`
	Accidents  AccidentCounts     `json:"accidents"`
}

type CenterViewLocation struct {
	Zone        string            `json:"zone"`
	District    int               `json:"district"`
	Coordinates CenterCoordinates `json:"coordinates"`
}

type CenterCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type ViolationCounts struct {
	Total    int64 `json:"total"`
	Reported int64 `json:"reported"`
}

type CenterViewChallans struct {
	Total     int64                `json:"total"`
	Breakdown CenterViewCollection `json:"breakdown"`
}

type CenterViewCollection struct {
	CollectedAmount float64 `json:"collected_amount"`
}

type AccidentCounts struct {
	Today   int64 `json:"today"`
	Overall int64 `json:"overall"`
}

// NewCenterView reshapes a stored record for the lookup response. Absent
// counters are reported as zero; the breakdown map is not exposed here.
func NewCenterView(r IncidentRecord) CenterView {
	view := CenterView{
		CenterID: r.CenterID,
		Location: CenterViewLocation{
			Zone:     r.Location.Zone,
			District: r.Location.District,
			Coordinates: CenterCoordinates{
				Latitude:  r.Location.Latitude,
				Longitude: r.Location.Longitude,
			},
		},
	}
	if r.Violations != nil {
		view.Violations.Total = Int(r.Violations.Total)
		view.Violations.Reported = Int(r.Violations.Reported)
	}
	if r.Challans != nil {
		view.Challans.Total = Int(r.Challans.Total)
		view.Challans.Breakdown.CollectedAmount = Float(r.Challans.CollectedAmount)
	}
	if r.Accidents != nil {
		view.Accidents.Today = Int(r.Accidents.Today)
		view.Accidents.Overall = Int(r.Accidents.Overall)
	}
	return view
}

// Int dereferences p, returning 0 for nil.
func Int(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

// Float dereferences p, returning 0 for nil.
func Float(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func IntPtr(v int64) *int64 { return &v }

func FloatPtr(v float64) *float64 { return &v }
