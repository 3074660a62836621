package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu                 sync.RWMutex
	RecordsLoaded      int64
	ChatCalls          int64
	StructuredCalls    int64
	ValidationFailures int64
	APICallsTotal      int64
	APICallsSuccessful int64
	StartTime          time.Time
	LastUpdateTime     time.Time
}

func NewMetrics() *Metrics {
	now := time.Now()
	return &Metrics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

func (m *Metrics) AddRecordsLoaded(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordsLoaded += int64(n)
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementChatCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatCalls++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementStructuredCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StructuredCalls++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementValidationFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidationFailures++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementAPICall(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.APICallsTotal++
	if success {
		m.APICallsSuccessful++
	}
	m.LastUpdateTime = time.Now()
}

// Snapshot - копия счетчиков без мьютекса
type Snapshot struct {
	RecordsLoaded      int64         `json:"records_loaded"`
	ChatCalls          int64         `json:"chat_calls"`
	StructuredCalls    int64         `json:"structured_calls"`
	ValidationFailures int64         `json:"validation_failures"`
	APICallsTotal      int64         `json:"api_calls_total"`
	APICallsSuccessful int64         `json:"api_calls_successful"`
	Elapsed            time.Duration `json:"elapsed"`
}

func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		RecordsLoaded:      m.RecordsLoaded,
		ChatCalls:          m.ChatCalls,
		StructuredCalls:    m.StructuredCalls,
		ValidationFailures: m.ValidationFailures,
		APICallsTotal:      m.APICallsTotal,
		APICallsSuccessful: m.APICallsSuccessful,
		Elapsed:            m.LastUpdateTime.Sub(m.StartTime),
	}
}
