package entity

import "time"

// InstructorApplication is a pending request to become an instructor. It is
// consumed on approval or rejection.
type InstructorApplication struct {
	ID         string    `json:"_id" bson:"_id,omitempty"`
	Name       string    `json:"name" bson:"name"`
	Email      string    `json:"email" bson:"email"`
	PhotoURL   string    `json:"photoUrl,omitempty" bson:"photoUrl,omitempty"`
	Experience string    `json:"experience,omitempty" bson:"experience,omitempty"`
	Skills     string    `json:"skills,omitempty" bson:"skills,omitempty"`
	About      string    `json:"about,omitempty" bson:"about,omitempty"`
	DemoVideo  string    `json:"demoVideo,omitempty" bson:"demoVideo,omitempty"`
	Status     string    `json:"status" bson:"status"`
	AppliedAt  time.Time `json:"appliedAt" bson:"appliedAt"`
}

// AuditEntry records who performed a privileged action and when.
type AuditEntry struct {
	ID         string         `json:"id"`
	ActorEmail string         `json:"actor_email"`
	Action     string         `json:"action"`
	Subject    string         `json:"subject"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// InstructorRank is one row of the popular instructors aggregation.
type InstructorRank struct {
	Instructor    User `json:"instructor"`
	TotalEnrolled int  `json:"totalEnrolled"`
}
