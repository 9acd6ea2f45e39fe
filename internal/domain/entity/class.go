package entity

import (
	"errors"
	"math"
	"time"
)

type ClassStatus string

const (
	ClassPending  ClassStatus = "pending"
	ClassApproved ClassStatus = "approved"
	ClassDenied   ClassStatus = "denied"
)

var ErrInvalidTransition = errors.New("invalid class status transition")

// Chapter is a titled video segment of a class.
type Chapter struct {
	Title       string `json:"title" bson:"title"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Video       string `json:"video" bson:"video"`
	IsFree      bool   `json:"isFree" bson:"isFree"`
	Locked      bool   `json:"locked,omitempty" bson:"-"`
}

// Class is a purchasable course owned by one instructor.
type Class struct {
	ID              string      `json:"_id" bson:"_id,omitempty"`
	Name            string      `json:"name" bson:"name"`
	Description     string      `json:"description,omitempty" bson:"description,omitempty"`
	Image           string      `json:"image,omitempty" bson:"image,omitempty"`
	Price           float64     `json:"price" bson:"price"`
	AvailableSeats  int         `json:"availableSeats" bson:"availableSeats"`
	TotalEnrolled   int         `json:"totalEnrolled" bson:"totalEnrolled"`
	VideoLink       string      `json:"videoLink,omitempty" bson:"videoLink,omitempty"`
	InstructorName  string      `json:"instructorName" bson:"instructorName"`
	InstructorEmail string      `json:"instructorEmail" bson:"instructorEmail"`
	Status          ClassStatus `json:"status" bson:"status"`
	Reason          string      `json:"reason,omitempty" bson:"reason,omitempty"`
	Chapters        []Chapter   `json:"chapters" bson:"chapters"`
	CreatedAt       time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// Review moves a pending class to approved or denied. Nothing else is a
// legal review: approved and denied classes only return to pending through
// Resubmit.
func (c *Class) Review(to ClassStatus, reason string) error {
	if c.Status != ClassPending {
		return ErrInvalidTransition
	}
	if to != ClassApproved && to != ClassDenied {
		return ErrInvalidTransition
	}
	c.Status = to
	c.Reason = reason
	return nil
}

// Resubmit puts the class back into the review queue after an edit.
func (c *Class) Resubmit() {
	c.Status = ClassPending
	c.Reason = ""
}

// ClassPatch is the allow-list of fields an instructor may edit.
type ClassPatch struct {
	Name           *string
	Description    *string
	Image          *string
	Price          *float64
	AvailableSeats *int
	VideoLink      *string
	Chapters       *[]Chapter
}

// Apply copies the non-nil fields onto c and resubmits it for review.
func (p ClassPatch) Apply(c *Class) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Image != nil {
		c.Image = *p.Image
	}
	if p.Price != nil {
		c.Price = *p.Price
	}
	if p.AvailableSeats != nil {
		c.AvailableSeats = *p.AvailableSeats
	}
	if p.VideoLink != nil {
		c.VideoLink = *p.VideoLink
	}
	if p.Chapters != nil {
		c.Chapters = append([]Chapter(nil), (*p.Chapters)...)
	}
	c.Resubmit()
}

// Unrestricted reports whether the viewer sees every chapter regardless of
// enrollment: admins and the owning instructor.
func (c *Class) Unrestricted(v Viewer) bool {
	if v.Anonymous() {
		return false
	}
	return v.IsAdmin() || v.Email == c.InstructorEmail
}

// CanView decides chapter playback server-side. enrolled must come from the
// viewer's stored enrollments, never from the request.
func (c *Class) CanView(v Viewer, enrolled bool, idx int) bool {
	if idx < 0 || idx >= len(c.Chapters) {
		return false
	}
	return c.Chapters[idx].IsFree || enrolled || c.Unrestricted(v)
}

// RedactFor returns a copy with the video of every locked chapter removed.
func (c Class) RedactFor(v Viewer, enrolled bool) Class {
	out := c
	out.Chapters = make([]Chapter, len(c.Chapters))
	for i, ch := range c.Chapters {
		if !c.CanView(v, enrolled, i) {
			ch.Video = ""
			ch.Locked = true
		}
		out.Chapters[i] = ch
	}
	return out
}

// MinorUnits converts a price into the processor's smallest currency unit.
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
