// Package session tracks per-sender conversation state: the NLU session
// token issued on first contact and short-lived pending transactions.
package session

import "time"

// Session correlates one sender with an NLU conversation.
// It lives for the lifetime of the process.
type Session struct {
	SenderID  string
	Token     string
	CreatedAt time.Time
}
