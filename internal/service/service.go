// Package service holds the business rules of the sleep tracker.
//
//	Handler (HTTP) → Service (rules) → Repository (SQL)
//
// Services accept plain values, never *http.Request, so the same code backs
// the HTTP API, the weekly job and the sleepctl CLI. They return apperror
// values for caller mistakes and wrap storage failures unchanged.
//
// Every service takes a clock (func() time.Time) so tests can pin "now".
package service

import "time"

// Clock returns the current time. time.Now in production.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return utcNow
	}
	return c
}
