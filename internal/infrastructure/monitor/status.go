package monitor

import "time"

// Details carries optional probe-specific numbers, e.g. record counts.
type Details map[string]interface{}

type ServiceStatus struct {
	Online  bool    `json:"online"`
	Error   string  `json:"error,omitempty"`
	Details Details `json:"details,omitempty"`
}

type Status struct {
	Online    bool                     `json:"online"`
	Services  map[string]ServiceStatus `json:"services"`
	LastCheck time.Time                `json:"last_check"`
}

func (s Status) clone() Status {
	out := s
	out.Services = make(map[string]ServiceStatus, len(s.Services))
	for k, v := range s.Services {
		out.Services[k] = v
	}
	return out
}
