package metrics

import (
	"sort"
	"sync"
	"time"
)

type Metrics struct {
	mutex         sync.RWMutex
	attempts      int64
	successes     int64
	failures      int64
	errors        int64
	responseTimes []time.Duration
	statusCodes   map[int]int64
	lastError     string
	startTime     time.Time
}

type Snapshot struct {
	Attempts    int64
	Successes   int64
	Failures    int64
	Errors      int64
	LastError   string
	Elapsed     time.Duration
	AvgResponse time.Duration
	P50Response time.Duration
	P95Response time.Duration
	P99Response time.Duration
	StatusCodes map[int]int64
}

// RecordAttempt stores one attempt. A non-nil err marks a transport failure
// and statusCode is ignored; otherwise healthy is derived from statusCode.
func (m *Metrics) RecordAttempt(duration time.Duration, statusCode int, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.attempts++
	m.responseTimes = append(m.responseTimes, duration)

	if err != nil {
		m.errors++
		m.failures++
		m.lastError = err.Error()
		return
	}

	m.statusCodes[statusCode]++
	if statusCode >= 200 && statusCode < 400 {
		m.successes++
	} else {
		m.failures++
	}
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Attempts:    m.attempts,
		Successes:   m.successes,
		Failures:    m.failures,
		Errors:      m.errors,
		LastError:   m.lastError,
		Elapsed:     time.Since(m.startTime),
		StatusCodes: make(map[int]int64, len(m.statusCodes)),
	}

	for code, n := range m.statusCodes {
		snap.StatusCodes[code] = n
	}

	if len(m.responseTimes) > 0 {
		sorted := make([]time.Duration, len(m.responseTimes))
		copy(sorted, m.responseTimes)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i] < sorted[j]
		})

		snap.AvgResponse = average(sorted)
		snap.P50Response = percentile(sorted, 0.50)
		snap.P95Response = percentile(sorted, 0.95)
		snap.P99Response = percentile(sorted, 0.99)
	}

	return snap
}

func NewMetrics() *Metrics {
	return &Metrics{
		statusCodes: make(map[int]int64),
		startTime:   time.Now(),
	}
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
