package status

import (
	"github.com/ukydev/vehicle-quality/internal/models"
)

// Badge variants understood by the dashboard.
const (
	VariantDefault     = "default"
	VariantSecondary   = "secondary"
	VariantWarning     = "warning"
	VariantDestructive = "destructive"
	VariantSuccess     = "success"
	VariantOutline     = "outline"
)

// Projection is the display classification of a raw vehicle status.
type Projection struct {
	Status   models.Status `json:"status"`
	Label    string        `json:"label"`
	Variant  string        `json:"variant"`
	Icon     string        `json:"icon"`
	Terminal bool          `json:"terminal"`
}

type badge struct {
	variant string
	icon    string
}

var badges = map[models.Status]badge{
	models.StatusInProduction:           {VariantSecondary, "factory"},
	models.StatusQualityEntry:           {VariantDefault, "log-in"},
	models.StatusControlStarted:         {VariantWarning, "search"},
	models.StatusControlCompleted:       {VariantSuccess, "check-circle"},
	models.StatusInRework:               {VariantDestructive, "wrench"},
	models.StatusReworkCompleted:        {VariantSuccess, "check-check"},
	models.StatusInArge:                 {VariantWarning, "flask-conical"},
	models.StatusArgeReturned:           {VariantDefault, "undo-2"},
	models.StatusWaitingForShippingInfo: {VariantSecondary, "clock"},
	models.StatusReadyToShip:            {VariantSuccess, "package-check"},
	models.StatusShipped:                {VariantOutline, "truck"},
}

// Project maps a raw status string to its display classification.
// Unrecognised statuses keep the raw text as label.
func Project(raw string) Projection {
	s := models.NormalizeStatus(raw)
	b, ok := badges[s]
	if !ok {
		return Projection{Status: models.StatusUnknown, Label: raw, Variant: VariantOutline, Icon: "help-circle"}
	}
	return Projection{
		Status:   s,
		Label:    s.Label(),
		Variant:  b.variant,
		Icon:     b.icon,
		Terminal: s == models.StatusShipped,
	}
}
