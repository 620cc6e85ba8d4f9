package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitewatch/pkg/domain"
)

func TestNew_DerivedFlags(t *testing.T) {
	tests := []struct {
		severity   domain.Severity
		immediate  bool
		reportable bool
	}{
		{domain.SeverityLow, false, false},
		{domain.SeverityMedium, false, false},
		{domain.SeverityHigh, true, false},
		{domain.SeverityCritical, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			a, err := New("photo-1", TypeHazardDetected, tt.severity, "hazard")
			require.NoError(t, err)
			assert.Equal(t, tt.immediate, a.RequiresImmediateAction)
			assert.Equal(t, tt.reportable, a.RegulatoryReportable)
			assert.True(t, a.Active())
		})
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New("", TypeHazardDetected, domain.SeverityHigh, "hazard")
	assert.Error(t, err)

	_, err = New("photo-1", TypeHazardDetected, "SEVERE", "hazard")
	assert.Error(t, err)

	_, err = New("photo-1", TypeHazardDetected, domain.SeverityHigh, "")
	assert.Error(t, err)
}

func TestAcknowledge_SetsPairAtomically(t *testing.T) {
	a, err := New("photo-1", TypePPEViolation, domain.SeverityMedium, "no hard hat")
	require.NoError(t, err)

	at := time.Now().UTC()
	acked := a.Acknowledge("foreman-3", "spoke to crew", at)

	assert.True(t, a.Active(), "original value is unchanged")
	assert.False(t, acked.Active())
	assert.Equal(t, "foreman-3", acked.AcknowledgedBy)
	require.NotNil(t, acked.AcknowledgedAt)
	assert.Equal(t, at, *acked.AcknowledgedAt)
}

func TestSystemEvent_SeverityMapping(t *testing.T) {
	assert.Equal(t, domain.SeverityCritical, SystemEvent{Status: SystemFailed}.Severity())
	assert.Equal(t, domain.SeverityHigh, SystemEvent{Status: SystemDegraded}.Severity())
	assert.Equal(t, domain.SeverityLow, SystemEvent{Status: SystemOK}.Severity())
}
