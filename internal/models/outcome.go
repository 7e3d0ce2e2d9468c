// internal/models/outcome.go
package models

import "time"

// Terminal application statuses. Only terminal-labeled applications are usable
// as training samples.
const (
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ApplicationContext carries the submission metadata of one application:
// uploaded documents and where the submission fell inside the application
// window. At prediction time there is no submission yet and the context is nil.
type ApplicationContext struct {
	SubmittedDocuments []string  `json:"submittedDocuments,omitempty"`
	SubmittedAt        time.Time `json:"submittedAt"`
	WindowOpen         time.Time `json:"windowOpen"`
	WindowClose        time.Time `json:"windowClose"`
}

// ApplicationOutcome is one historical application with a terminal label and a
// frozen snapshot of the applicant and criteria as they were at application
// time. The repository joins the criteria snapshot in so a training run is
// self-contained.
type ApplicationOutcome struct {
	ID            string               `json:"id"`
	ApplicantID   string               `json:"applicantId"`
	ScholarshipID string               `json:"scholarshipId"`
	Status        string               `json:"status"`
	Profile       ApplicantProfile     `json:"profile"`
	Criteria      *ScholarshipCriteria `json:"criteria,omitempty"`
	Context       *ApplicationContext  `json:"context,omitempty"`
	DecidedAt     time.Time            `json:"decidedAt"`
}

// Approved reports whether the outcome is a positive training label.
func (o ApplicationOutcome) Approved() bool {
	return o.Status == StatusApproved
}

// Terminal reports whether the outcome carries a terminal label.
func (o ApplicationOutcome) Terminal() bool {
	return o.Status == StatusApproved || o.Status == StatusRejected
}

// ApplicantHistory summarizes an applicant's own prior terminal outcomes,
// used by the prediction service's history adjustment.
type ApplicantHistory struct {
	Approvals  int `json:"approvals"`
	Rejections int `json:"rejections"`
}
