package countdown

import (
	"time"

	"github.com/fastygo/powertimer/domain"
)

// Source tells a view whether an update is a local guess or store truth.
type Source string

const (
	SourcePredicted     Source = "predicted"
	SourceAuthoritative Source = "authoritative"
)

// Update is delivered to subscribers of a timer id.
type Update struct {
	Timer  domain.Timer `json:"timer"`
	Source Source       `json:"source"`
	At     time.Time    `json:"at"`
}
