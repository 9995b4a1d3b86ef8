package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Probe checks one dependency. Required probes decide whether the service is online.
type Probe struct {
	Name     string
	Required bool
	Timeout  time.Duration
	Check    func(ctx context.Context) (Details, error)
}

type Monitor struct {
	probes []Probe

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger, probes ...Probe) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		probes:   probes,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	m.Refresh()
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether every required probe passed on the last check.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Online
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.clone()
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every probe once and stores the result.
func (m *Monitor) Refresh() {
	status := Status{
		Online:    true,
		Services:  make(map[string]ServiceStatus, len(m.probes)),
		LastCheck: time.Now(),
	}

	for _, probe := range m.probes {
		svc := m.run(probe)
		status.Services[probe.Name] = svc
		if probe.Required && !svc.Online {
			status.Online = false
		}
	}

	m.mu.Lock()
	wasOnline := m.status.Online || m.status.LastCheck.IsZero()
	m.status = status
	m.mu.Unlock()

	if wasOnline && !status.Online {
		m.logger.Warn("required dependency offline", zap.Any("services", status.Services))
	}
}

func (m *Monitor) run(probe Probe) ServiceStatus {
	timeout := probe.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	details, err := probe.Check(ctx)
	if err != nil {
		m.logger.Debug("probe failed", zap.String("probe", probe.Name), zap.Error(err))
		return ServiceStatus{Online: false, Error: err.Error(), Details: details}
	}
	return ServiceStatus{Online: true, Details: details}
}
