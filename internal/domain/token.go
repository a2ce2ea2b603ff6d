package domain

import "time"

// TrackedToken is a row in the tracked-token registry: a token the service
// should subscribe to and aggregate statistics for.
type TrackedToken struct {
	Mint      string
	Name      string
	Symbol    string
	ImageURI  string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
