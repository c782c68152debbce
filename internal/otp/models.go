// Package otp issues and redeems the time-boxed single-use confirmation
// codes tied to an identity number.
package otp

import "time"

// Code is one issuance event. Codes are keyed by Aadhaar number, not by
// registration record: multiple outstanding codes may exist, and only the
// most recent unused, unexpired one is eligible for redemption.
type Code struct {
	ID            int64
	AadhaarNumber string
	Code          string
	Used          bool
	CreatedAt     time.Time
	ExpiresAt     time.Time
	UsedAt        *time.Time
}

// Expired reports whether the code is past its window. Expiry is a computed
// predicate; no sweep ever mutates or deletes rows.
func (c Code) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Redeemable reports whether the code can satisfy a redemption attempt.
func (c Code) Redeemable(submitted string, now time.Time) bool {
	return !c.Used && !c.Expired(now) && c.Code == submitted
}
