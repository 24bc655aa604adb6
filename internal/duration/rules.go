package duration

import "github.com/ukydev/vehicle-quality/internal/models"

// rule describes how the start of the current state is looked up in the timeline.
type rule struct {
	start models.EventType
	end   models.EventType
	// closedInterval reports the start..end span when the latest start is already closed.
	// When false a closed interval means the rule does not apply.
	closedInterval bool
	// reworkCrossCheck falls back to the vehicle's open rework cycle.
	reworkCrossCheck bool
}

// Statuses absent from this table start at status_entered_at.
var rules = map[models.Status]rule{
	models.StatusInArge: {
		start: models.EventArgeSent,
		end:   models.EventArgeReturned,
	},
	models.StatusInRework: {
		start:            models.EventReworkStart,
		end:              models.EventReworkEnd,
		closedInterval:   true,
		reworkCrossCheck: true,
	},
	models.StatusControlStarted: {
		start:          models.EventControlStart,
		end:            models.EventControlEnd,
		closedInterval: true,
	},
}
