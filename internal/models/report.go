package models

// DurationTotals holds the formatted historical time-in-state figures of a vehicle.
type DurationTotals struct {
	ControlTime string `json:"control_time"`
	ReworkTime  string `json:"rework_time"`
	QualityTime string `json:"quality_time"`
}

// VehicleRow is one row of the vehicle list.
type VehicleRow struct {
	Vehicle     Vehicle `json:"vehicle"`
	StatusLabel string  `json:"status_label"`
	Variant     string  `json:"variant"`
	Icon        string  `json:"icon"`
	Elapsed     string  `json:"elapsed"`
}

// VehicleDetail is the full view of a single vehicle.
type VehicleDetail struct {
	VehicleRow
	Events []TimelineEvent `json:"events"`
	Totals DurationTotals  `json:"totals"`
}

// QualityReportRow holds the totals of one vehicle, or the reason they are missing.
type QualityReportRow struct {
	VehicleID     string          `json:"vehicle_id"`
	ChassisNumber string          `json:"chassis_number"`
	Status        string          `json:"status"`
	Totals        *DurationTotals `json:"totals,omitempty"`
	SkippedEvents int             `json:"skipped_events,omitempty"`
	Error         string          `json:"error,omitempty"`
}
