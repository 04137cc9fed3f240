package training

import "time"

type Status string

const (
	StatusCompleted     Status = "Completed"
	StatusParticipation Status = "Participation"
)

// Training is a record owned by one employee. It is never updated in place.
type Training struct {
	ID            int64
	Name          string
	Description   Status
	TrainerName   string
	DateAttended  time.Time
	DateCompleted time.Time
	EmployeeID    int64
	ImgCert       *string
}

// TrainingWithEmployee is a training row with its owner's name fields.
type TrainingWithEmployee struct {
	Training
	FirstName  string
	LastName   string
	MiddleName string
}
