package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()

	m.AddRecordsLoaded(5)
	m.IncrementChatCalls()
	m.IncrementStructuredCalls()
	m.IncrementStructuredCalls()
	m.IncrementValidationFailures()
	m.IncrementAPICall(true)
	m.IncrementAPICall(true)
	m.IncrementAPICall(false)

	snap := m.GetSnapshot()
	assert.Equal(t, int64(5), snap.RecordsLoaded)
	assert.Equal(t, int64(1), snap.ChatCalls)
	assert.Equal(t, int64(2), snap.StructuredCalls)
	assert.Equal(t, int64(1), snap.ValidationFailures)
	assert.Equal(t, int64(3), snap.APICallsTotal)
	assert.Equal(t, int64(2), snap.APICallsSuccessful)
	assert.GreaterOrEqual(t, int64(snap.Elapsed), int64(0))
}
