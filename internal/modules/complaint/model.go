// README: Complaint record and admin action definitions.
package complaint

import (
	"time"

	"ridepool/internal/types"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusResolved  Status = "RESOLVED"
	StatusRejected  Status = "REJECTED"
	StatusEscalated Status = "ESCALATED"
)

// Action is an admin verdict on a pending complaint.
type Action string

const (
	ActionResolve  Action = "RESOLVE"
	ActionReject   Action = "REJECT"
	ActionEscalate Action = "ESCALATE"
)

// actionStatus maps each admin action to the status it leaves behind.
var actionStatus = map[Action]Status{
	ActionResolve:  StatusResolved,
	ActionReject:   StatusRejected,
	ActionEscalate: StatusEscalated,
}

type Complaint struct {
	ID        types.ID
	UserID    types.ID
	DriverID  types.ID
	TripID    types.ID
	Message   string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stats is the admin dashboard tally over all complaints.
type Stats struct {
	Total     int
	Pending   int
	Resolved  int
	Rejected  int
	Escalated int
}
