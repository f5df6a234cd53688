package aggregate

import (
	"traffic-monitor/internal/domain/traffic"
)

// Figures is an IncidentRecord with every optional counter resolved to a
// concrete value. It is produced once per record by Normalize.
type Figures struct {
	CenterID string
	Zone     string
	District int

	AccidentsToday    int64
	AccidentsOverall  int64
	AccidentsFatal    int64
	AccidentsNonFatal int64

	ViolationsTotal        int64
	ViolationsReported     int64
	ViolationsSpeeding     int64
	ViolationsRedLight     int64
	ViolationsDrunkDriving int64
	ViolationsNoHelmet     int64

	ChallansTotal    int64
	CollectedAmount  float64
	PendingAmount    float64
	OnlinePayment    float64
	OfflinePayment   float64
	ChallanBreakdown map[string]int64

	EnforcementOfficers int64

	TrafficPeak    int64
	TrafficOffPeak int64
	TrafficDaily   int64

	CamerasOperational int64
	CamerasTotal       int64

	// HasResponseTime is false when the record carries no response timing, so
	// that it does not pull the center's average toward zero.
	HasResponseTime     bool
	ResponseTimeMinutes float64
}

// Normalize checks the baseline fields of r and fills every extended field
// with its default. It returns a *traffic.MalformedRecordError for the first
// missing baseline field.
func Normalize(r traffic.IncidentRecord) (Figures, error) {
	switch {
	case r.Location.Zone == "":
		return Figures{}, malformed(r, "location.zone")
	case r.Accidents == nil:
		return Figures{}, malformed(r, "accidents")
	case r.Violations == nil:
		return Figures{}, malformed(r, "violations")
	case r.Challans == nil || r.Challans.Total == nil:
		return Figures{}, malformed(r, "challans.total")
	case r.Challans.CollectedAmount == nil:
		return Figures{}, malformed(r, "challans.collectedAmount")
	}

	f := Figures{
		CenterID: r.CenterID,
		Zone:     r.Location.Zone,
		District: r.Location.District,

		AccidentsToday:    traffic.Int(r.Accidents.Today),
		AccidentsOverall:  traffic.Int(r.Accidents.Overall),
		AccidentsFatal:    traffic.Int(r.Accidents.Fatal),
		AccidentsNonFatal: traffic.Int(r.Accidents.NonFatal),

		ViolationsTotal:        traffic.Int(r.Violations.Total),
		ViolationsReported:     traffic.Int(r.Violations.Reported),
		ViolationsSpeeding:     traffic.Int(r.Violations.Speeding),
		ViolationsRedLight:     traffic.Int(r.Violations.RedLight),
		ViolationsDrunkDriving: traffic.Int(r.Violations.DrunkDriving),
		ViolationsNoHelmet:     traffic.Int(r.Violations.NoHelmet),

		ChallansTotal:   *r.Challans.Total,
		CollectedAmount: *r.Challans.CollectedAmount,
		PendingAmount:   traffic.Float(r.Challans.PendingAmount),
		OnlinePayment:   traffic.Float(r.Challans.OnlinePayment),
		OfflinePayment:  traffic.Float(r.Challans.OfflinePayment),

		EnforcementOfficers: traffic.Int(r.EnforcementOfficers),
	}

	if len(r.Challans.Breakdown) > 0 {
		f.ChallanBreakdown = make(map[string]int64, len(r.Challans.Breakdown))
		for label, n := range r.Challans.Breakdown {
			f.ChallanBreakdown[label] = n
		}
	}
	if r.TrafficVolume != nil {
		f.TrafficPeak = traffic.Int(r.TrafficVolume.Peak)
		f.TrafficOffPeak = traffic.Int(r.TrafficVolume.OffPeak)
		f.TrafficDaily = traffic.Int(r.TrafficVolume.Daily)
	}
	if r.Cameras != nil {
		f.CamerasOperational = traffic.Int(r.Cameras.Operational)
		f.CamerasTotal = traffic.Int(r.Cameras.Total)
	}
	if r.Response != nil && r.Response.AvgTimeMinutes != nil {
		f.HasResponseTime = true
		f.ResponseTimeMinutes = *r.Response.AvgTimeMinutes
	}
	return f, nil
}

func malformed(r traffic.IncidentRecord, field string) error {
	return &traffic.MalformedRecordError{CenterID: r.CenterID, Field: field}
}
