// Package aggregate rolls per-center incident records up into the center and
// zone summaries shown on the dashboard. Everything here is a pure function of
// its inputs.
package aggregate

import (
	"traffic-monitor/internal/domain/traffic"
)

type AccidentTotals struct {
	Today    int64 `json:"today"`
	Overall  int64 `json:"overall"`
	Fatal    int64 `json:"fatal"`
	NonFatal int64 `json:"nonFatal"`
}

type ViolationTotals struct {
	Total        int64 `json:"total"`
	Reported     int64 `json:"reported"`
	Speeding     int64 `json:"speeding"`
	RedLight     int64 `json:"redLight"`
	DrunkDriving int64 `json:"drunkDriving"`
	NoHelmet     int64 `json:"noHelmet"`
}

type ChallanTotals struct {
	Total           int64            `json:"total"`
	CollectedAmount float64          `json:"collected_amount"`
	PendingAmount   float64          `json:"pending_amount"`
	OnlinePayment   float64          `json:"online_payment"`
	OfflinePayment  float64          `json:"offline_payment"`
	Breakdown       map[string]int64 `json:"breakdown,omitempty"`
}

type TrafficVolumeTotals struct {
	Peak    int64 `json:"peak"`
	OffPeak int64 `json:"offPeak"`
	Daily   int64 `json:"daily"`
}

type CameraTotals struct {
	Operational int64 `json:"operational"`
	Total       int64 `json:"total"`
}

type Metrics struct {
	ViolationRatePer1000 float64 `json:"violationRatePer1k"`
	ChallanEfficiency    float64 `json:"challanEfficiency"`
	FatalAccidentRate    float64 `json:"fatalAccidentRate"`
	CameraEffectiveness  float64 `json:"cameraEffectiveness"`
}

// CenterAggregate is the sum of every record sharing one centerId.
type CenterAggregate struct {
	CenterID            string              `json:"centerId"`
	Zone                string              `json:"zone"`
	District            int                 `json:"district"`
	Records             int                 `json:"records"`
	Accidents           AccidentTotals      `json:"accidents"`
	Violations          ViolationTotals     `json:"violations"`
	Challans            ChallanTotals       `json:"challans"`
	EnforcementOfficers int64               `json:"enforcementOfficers"`
	TrafficVolume       TrafficVolumeTotals `json:"trafficVolume"`
	Cameras             CameraTotals        `json:"cameras"`
	AvgResponseMinutes  float64             `json:"avgResponseMinutes"`
	Metrics             Metrics             `json:"metrics"`

	responseSum     float64
	responseSamples int
}

// Totals sums the filtered centers. Averages are taken over centers and are
// zero when no center is selected.
type Totals struct {
	Centers                 int     `json:"centers"`
	Accidents               int64   `json:"accidents"`
	AccidentsToday          int64   `json:"accidentsToday"`
	FatalAccidents          int64   `json:"fatalAccidents"`
	Violations              int64   `json:"violations"`
	ViolationsReported      int64   `json:"violationsReported"`
	Challans                int64   `json:"challans"`
	Revenue                 float64 `json:"revenue"`
	PendingAmount           float64 `json:"pendingAmount"`
	Officers                int64   `json:"officers"`
	CamerasOperational      int64   `json:"camerasOperational"`
	CamerasTotal            int64   `json:"camerasTotal"`
	TrafficVolume           int64   `json:"trafficVolume"`
	AvgResponseMinutes      float64 `json:"avgResponseMinutes"`
	AvgViolationRatePer1000 float64 `json:"avgViolationRatePer1k"`
	AvgChallanEfficiency    float64 `json:"avgChallanEfficiency"`
	CameraEffectiveness     float64 `json:"cameraEffectiveness"`
}

// Summary is the result of Aggregate. Centers holds the filtered per-center
// aggregates in first-appearance order; Zones and CenterIDs feed the filter
// selectors.
type Summary struct {
	Filter    traffic.Filter    `json:"filter"`
	Centers   []CenterAggregate `json:"centers"`
	Zones     []string          `json:"zones"`
	CenterIDs []string          `json:"centerIds"`
	Totals    Totals            `json:"totals"`
}

// Center looks up a filtered center aggregate by id.
func (s Summary) Center(centerID string) (CenterAggregate, bool) {
	for _, c := range s.Centers {
		if c.CenterID == centerID {
			return c, true
		}
	}
	return CenterAggregate{}, false
}

// Aggregate groups records by center, derives per-center metrics, and totals
// the centers selected by filter. Zones lists every zone in the input in the
// order it first appears, regardless of filter. CenterIDs lists the centers
// selectable under the zone filter alone.
func Aggregate(records []traffic.IncidentRecord, filter traffic.Filter) (Summary, error) {
	centers, err := groupByCenter(records)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Filter:    filter,
		Centers:   make([]CenterAggregate, 0, len(centers)),
		Zones:     distinctZones(centers),
		CenterIDs: make([]string, 0, len(centers)),
	}

	for _, c := range centers {
		if !filter.MatchesZone(c.Zone) {
			continue
		}
		summary.CenterIDs = append(summary.CenterIDs, c.CenterID)
		if !filter.MatchesCenter(c.CenterID) {
			continue
		}
		summary.Centers = append(summary.Centers, *c)
	}
	summary.Totals = totalize(summary.Centers)
	return summary, nil
}

func groupByCenter(records []traffic.IncidentRecord) ([]*CenterAggregate, error) {
	order := make([]*CenterAggregate, 0, len(records))
	byID := make(map[string]*CenterAggregate, len(records))

	for _, r := range records {
		f, err := Normalize(r)
		if err != nil {
			return nil, err
		}
		c, ok := byID[f.CenterID]
		if !ok {
			c = &CenterAggregate{CenterID: f.CenterID, Zone: f.Zone, District: f.District}
			byID[f.CenterID] = c
			order = append(order, c)
		}
		c.add(f)
	}

	for _, c := range order {
		c.derive()
	}
	return order, nil
}

func (c *CenterAggregate) add(f Figures) {
	c.Records++

	c.Accidents.Today += f.AccidentsToday
	c.Accidents.Overall += f.AccidentsOverall
	c.Accidents.Fatal += f.AccidentsFatal
	c.Accidents.NonFatal += f.AccidentsNonFatal

	c.Violations.Total += f.ViolationsTotal
	c.Violations.Reported += f.ViolationsReported
	c.Violations.Speeding += f.ViolationsSpeeding
	c.Violations.RedLight += f.ViolationsRedLight
	c.Violations.DrunkDriving += f.ViolationsDrunkDriving
	c.Violations.NoHelmet += f.ViolationsNoHelmet

	c.Challans.Total += f.ChallansTotal
	c.Challans.CollectedAmount += f.CollectedAmount
	c.Challans.PendingAmount += f.PendingAmount
	c.Challans.OnlinePayment += f.OnlinePayment
	c.Challans.OfflinePayment += f.OfflinePayment
	c.Challans.Breakdown = mergeBreakdown(c.Challans.Breakdown, f.ChallanBreakdown)

	c.EnforcementOfficers += f.EnforcementOfficers

	c.TrafficVolume.Peak += f.TrafficPeak
	c.TrafficVolume.OffPeak += f.TrafficOffPeak
	c.TrafficVolume.Daily += f.TrafficDaily

	c.Cameras.Operational += f.CamerasOperational
	c.Cameras.Total += f.CamerasTotal

	if f.HasResponseTime {
		c.responseSum += f.ResponseTimeMinutes
		c.responseSamples++
	}
}

func (c *CenterAggregate) derive() {
	if c.responseSamples > 0 {
		c.AvgResponseMinutes = c.responseSum / float64(c.responseSamples)
	}
	c.Metrics = Metrics{
		ViolationRatePer1000: float64(c.Violations.Total) / float64(atLeastOne(c.TrafficVolume.Daily)) * 1000,
		ChallanEfficiency:    ratioOrZero(float64(c.Challans.Total), float64(c.EnforcementOfficers)),
		FatalAccidentRate:    float64(c.Accidents.Fatal) / float64(atLeastOne(c.Accidents.Overall)) * 100,
		CameraEffectiveness:  float64(c.Cameras.Operational) / float64(atLeastOne(c.Cameras.Total)) * 100,
	}
}

func distinctZones(centers []*CenterAggregate) []string {
	seen := make(map[string]struct{}, len(centers))
	zones := make([]string, 0, len(centers))
	for _, c := range centers {
		if _, ok := seen[c.Zone]; ok {
			continue
		}
		seen[c.Zone] = struct{}{}
		zones = append(zones, c.Zone)
	}
	return zones
}

func totalize(centers []CenterAggregate) Totals {
	var (
		t             Totals
		responseSum   float64
		rateSum       float64
		efficiencySum float64
	)
	for _, c := range centers {
		t.Accidents += c.Accidents.Overall
		t.AccidentsToday += c.Accidents.Today
		t.FatalAccidents += c.Accidents.Fatal
		t.Violations += c.Violations.Total
		t.ViolationsReported += c.Violations.Reported
		t.Challans += c.Challans.Total
		t.Revenue += c.Challans.CollectedAmount
		t.PendingAmount += c.Challans.PendingAmount
		t.Officers += c.EnforcementOfficers
		t.CamerasOperational += c.Cameras.Operational
		t.CamerasTotal += c.Cameras.Total
		t.TrafficVolume += c.TrafficVolume.Daily

		responseSum += c.AvgResponseMinutes
		rateSum += c.Metrics.ViolationRatePer1000
		efficiencySum += c.Metrics.ChallanEfficiency
	}

	t.Centers = len(centers)
	if n := float64(len(centers)); n > 0 {
		t.AvgResponseMinutes = responseSum / n
		t.AvgViolationRatePer1000 = rateSum / n
		t.AvgChallanEfficiency = efficiencySum / n
	}
	t.CameraEffectiveness = ratioOrZero(float64(t.CamerasOperational), float64(t.CamerasTotal)) * 100
	return t
}

func mergeBreakdown(dst, src map[string]int64) map[string]int64 {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]int64, len(src))
	}
	for label, n := range src {
		dst[label] += n
	}
	return dst
}

func atLeastOne(v int64) int64 {
	if v < 1 {
		return 1
	}
	return v
}

func ratioOrZero(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
