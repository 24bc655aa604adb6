package models

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is the canonical quality-line state of a vehicle.
type Status string

const (
	StatusUnknown                Status = ""
	StatusInProduction           Status = "in_production"
	StatusQualityEntry           Status = "quality_entry"
	StatusControlStarted         Status = "control_started"
	StatusControlCompleted       Status = "control_completed"
	StatusInRework               Status = "in_rework"
	StatusReworkCompleted        Status = "rework_completed"
	StatusInArge                 Status = "in_arge"
	StatusArgeReturned           Status = "arge_returned"
	StatusWaitingForShippingInfo Status = "waiting_for_shipping_info"
	StatusReadyToShip            Status = "ready_to_ship"
	StatusShipped                Status = "shipped"
)

// Statuses lists the canonical statuses in line order.
var Statuses = []Status{
	StatusInProduction,
	StatusQualityEntry,
	StatusControlStarted,
	StatusControlCompleted,
	StatusInRework,
	StatusReworkCompleted,
	StatusInArge,
	StatusArgeReturned,
	StatusWaitingForShippingInfo,
	StatusReadyToShip,
	StatusShipped,
}

var statusLabels = map[Status]string{
	StatusInProduction:           "Üretimde",
	StatusQualityEntry:           "Kaliteye Girdi",
	StatusControlStarted:         "Kontrol Başladı",
	StatusControlCompleted:       "Kontrol Tamamlandı",
	StatusInRework:               "Yeniden İşlemde",
	StatusReworkCompleted:        "Yeniden İşlem Tamamlandı",
	StatusInArge:                 "Ar-Ge'de",
	StatusArgeReturned:           "Ar-Ge'den Döndü",
	StatusWaitingForShippingInfo: "Sevk Bilgisi Bekleniyor",
	StatusReadyToShip:            "Sevke Hazır",
	StatusShipped:                "Sevk Edildi",
}

// event codes operators also use as raw status values
var statusAliases = map[string]Status{
	string(EventControlStart): StatusControlStarted,
	string(EventControlEnd):   StatusControlCompleted,
	string(EventReworkStart):  StatusInRework,
	string(EventReworkEnd):    StatusReworkCompleted,
	string(EventArgeSent):     StatusInArge,
}

var statusLookup = buildStatusLookup()

func buildStatusLookup() map[string]Status {
	lookup := make(map[string]Status, (len(statusLabels)*2+len(statusAliases))*3)
	add := func(key string, s Status) {
		for _, folded := range foldStatus(key) {
			lookup[folded] = s
		}
	}
	for _, s := range Statuses {
		add(string(s), s)
		add(statusLabels[s], s)
	}
	for alias, s := range statusAliases {
		add(alias, s)
	}
	return lookup
}

// foldStatus returns the lower-cased forms of raw under the plain, Unicode
// and Turkish case rules. Turkish maps I to ı, the others map it to i.
func foldStatus(raw string) []string {
	collapsed := strings.Join(strings.Fields(raw), " ")
	return []string{
		strings.ToLower(collapsed),
		cases.Lower(language.Und).String(collapsed),
		cases.Lower(language.Turkish).String(collapsed),
	}
}

// NormalizeStatus maps a raw status string (canonical code, Turkish label or
// event code alias) to its canonical Status. Unknown values map to StatusUnknown.
func NormalizeStatus(raw string) Status {
	for _, folded := range foldStatus(raw) {
		if s, ok := statusLookup[folded]; ok {
			return s
		}
	}
	return StatusUnknown
}

// Label returns the Turkish display label of the status.
func (s Status) Label() string {
	return statusLabels[s]
}

// StatusForEvent returns the status a vehicle enters when the event is recorded.
func StatusForEvent(t EventType) Status {
	switch t {
	case EventQualityEntry:
		return StatusQualityEntry
	case EventControlStart:
		return StatusControlStarted
	case EventControlEnd:
		return StatusControlCompleted
	case EventReworkStart:
		return StatusInRework
	case EventReworkEnd:
		return StatusReworkCompleted
	case EventArgeSent:
		return StatusInArge
	case EventArgeReturned:
		return StatusArgeReturned
	case EventWaitingForShippingInfo:
		return StatusWaitingForShippingInfo
	case EventReadyToShip:
		return StatusReadyToShip
	case EventShipped:
		return StatusShipped
	default:
		return StatusUnknown
	}
}
