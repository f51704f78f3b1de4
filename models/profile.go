package models

import "time"

type Profile struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	Email            string     `json:"email,omitempty"`
	Username         string     `json:"username,omitempty"`
	CoopMemberNumber string     `json:"coopMemberNumber,omitempty"`
	TermsAccepted    bool       `json:"termsAccepted"`
	TermsVersion     string     `json:"termsVersion,omitempty"`
	TermsAcceptedAt  *time.Time `json:"termsAcceptedDate,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}
