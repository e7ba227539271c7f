package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusIsActive(t *testing.T) {
	active := map[Status]bool{
		StatusPending:   true,
		StatusAccepted:  true,
		StatusRejected:  false,
		StatusCanceled:  false,
		StatusCompleted: false,
	}
	for status, want := range active {
		assert.Equal(t, want, status.IsActive(), "status %s", status)
	}
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "En attente", StatusPending.Label())
	assert.Equal(t, "Accepté", StatusAccepted.Label())
	assert.Equal(t, "Rejeté", StatusRejected.Label())
	assert.Equal(t, "Annulé", StatusCanceled.Label())
	assert.Equal(t, "Terminé", StatusCompleted.Label())
	// Unknown values fall through verbatim rather than panicking.
	assert.Equal(t, "WEIRD", Status("WEIRD").Label())
}

func TestEnumValidation(t *testing.T) {
	for _, ct := range []CaseType{CaseUrgent, CaseControl, CaseNormal} {
		assert.True(t, ct.IsValid())
	}
	assert.False(t, CaseType("ROUTINE").IsValid())
	assert.False(t, CaseType("").IsValid())

	for _, p := range []ProcedureType{ProcedureDetartrage, ProcedureSoin, ProcedureExtraction, ProcedureBlanchiment, ProcedureOrthodontie} {
		assert.True(t, p.IsValid())
	}
	assert.False(t, ProcedureType("IMPLANT").IsValid())

	for _, s := range []Status{StatusPending, StatusAccepted, StatusRejected, StatusCanceled, StatusCompleted} {
		assert.True(t, s.IsValid())
	}
	assert.False(t, Status("pending").IsValid())
}

func TestDayNormalizesToUTC(t *testing.T) {
	tunis := time.FixedZone("CET", 1*60*60)

	// 00:30 local on the 15th is still the 14th in UTC; the conflict day is
	// keyed on the UTC date.
	a := &Appointment{ScheduledAt: time.Date(2026, time.March, 15, 0, 30, 0, 0, tunis)}
	assert.Equal(t, time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC), a.Day())

	b := &Appointment{ScheduledAt: time.Date(2026, time.March, 15, 9, 0, 0, 0, tunis)}
	c := &Appointment{ScheduledAt: time.Date(2026, time.March, 15, 16, 45, 0, 0, tunis)}
	assert.Equal(t, b.Day(), c.Day())
	assert.NotEqual(t, a.Day(), b.Day())
}
