// Package common contains shared constants and sentinel errors used across
// FlashRead components.
package common

// AuthorizationHeaderName is the HTTP header used to carry the bearer
// access token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// DateLayout is the calendar-day key format used by daily stats and streaks.
const DateLayout = "2006-01-02"
