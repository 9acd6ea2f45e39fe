package entity

import "time"

// CartItem links a user to a class pending purchase.
type CartItem struct {
	ID        string    `json:"_id" bson:"_id,omitempty"`
	ClassID   string    `json:"classId" bson:"classId"`
	UserEmail string    `json:"userMail" bson:"userMail"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Payment is the append-only log of a completed charge.
type Payment struct {
	ID            string    `json:"_id" bson:"_id,omitempty"`
	TransactionID string    `json:"transactionId" bson:"transactionId"`
	UserEmail     string    `json:"userEmail" bson:"userEmail"`
	Price         float64   `json:"price" bson:"price"`
	Quantity      int       `json:"quantity" bson:"quantity"`
	ClassIDs      []string  `json:"classesId" bson:"classesId"`
	ClassNames    []string  `json:"classNames" bson:"classNames"`
	Status        string    `json:"status" bson:"status"`
	Date          time.Time `json:"date" bson:"date"`
}

// Enrollment is the durable grant of access to purchased classes.
type Enrollment struct {
	ID            string    `json:"_id" bson:"_id,omitempty"`
	UserEmail     string    `json:"userEmail" bson:"userEmail"`
	ClassIDs      []string  `json:"classesId" bson:"classesId"`
	TransactionID string    `json:"transactionId" bson:"transactionId"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

// EnrolledClass pairs a purchased class with its instructor's profile.
type EnrolledClass struct {
	Class      Class `json:"classes"`
	Instructor *User `json:"instructor,omitempty"`
}

const PaymentStatusCompleted = "completed"

// PaymentIntent is the processor's view of a charge.
type PaymentIntent struct {
	ID           string            `json:"paymentIntentId"`
	ClientSecret string            `json:"clientSecret"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	Metadata     map[string]string `json:"-"`
}

const IntentSucceeded = "succeeded"
