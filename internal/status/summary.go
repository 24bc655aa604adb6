package status

import (
	"github.com/ukydev/vehicle-quality/internal/models"
)

// SummaryRow counts the vehicles currently in one status.
type SummaryRow struct {
	Status  models.Status `json:"status"`
	Label   string        `json:"label"`
	Variant string        `json:"variant"`
	Count   int           `json:"count"`
}

// Summarize counts vehicles per canonical status in line order. Statuses
// with no vehicles are listed with a zero count; unrecognised statuses are
// grouped in a trailing row.
func Summarize(vehicles []models.Vehicle) []SummaryRow {
	counts := make(map[models.Status]int, len(models.Statuses)+1)
	for _, v := range vehicles {
		counts[models.NormalizeStatus(v.Status)]++
	}

	rows := make([]SummaryRow, 0, len(models.Statuses)+1)
	for _, s := range models.Statuses {
		p := Project(string(s))
		rows = append(rows, SummaryRow{Status: s, Label: p.Label, Variant: p.Variant, Count: counts[s]})
	}
	if n := counts[models.StatusUnknown]; n > 0 {
		rows = append(rows, SummaryRow{Status: models.StatusUnknown, Label: "Bilinmiyor", Variant: VariantOutline, Count: n})
	}
	return rows
}
