package model

import (
	"time"

	"github.com/google/uuid"
)

// AppealStatus enumerates the dispute workflow states.
type AppealStatus string

const (
	AppealPending  AppealStatus = "pending"
	AppealApproved AppealStatus = "approved"
	AppealRejected AppealStatus = "rejected"
)

// AppealType enumerates the accepted dispute reasons.
type AppealType string

const (
	AppealPhoneDead     AppealType = "PHONE_DEAD"
	AppealQRCodeDamaged AppealType = "QR_CODE_DAMAGED"
	AppealGPSError      AppealType = "GPS_ERROR"
	AppealSystemError   AppealType = "SYSTEM_ERROR"
	AppealOther         AppealType = "OTHER"
)

// Appeal is a user-initiated dispute against a violation-state
// reservation.  At most one appeal may exist per reservation; it is
// resolved exactly once.  Approval returns the credit penalty and moves
// the reservation from violation to completed.
//
// Fields:
//  ID             – unique identifier.
//  ReservationID  – the violation reservation being disputed.
//  UserID         – appellant.
//  Type           – enumerated dispute reason.
//  Reason         – free-text explanation.
//  Evidence       – references to uploaded evidence (image URLs etc.).
//  Status         – pending, approved or rejected.
//  Reply          – reviewer's reply.
//  CreditAmount   – credit penalty originally applied.
//  CreditReturned – whether the penalty has been reversed.
type Appeal struct {
	ID             uuid.UUID    `json:"id"`
	ReservationID  uuid.UUID    `json:"reservation_id"`
	UserID         uint64       `json:"user_id"`
	Type           AppealType   `json:"appeal_type"`
	Reason         string       `json:"reason"`
	Evidence       []string     `json:"evidence,omitempty"`
	Status         AppealStatus `json:"status"`
	Reply          string       `json:"reply,omitempty"`
	CreditAmount   int          `json:"credit_amount"`
	CreditReturned bool         `json:"credit_returned"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
