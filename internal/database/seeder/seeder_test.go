package seeder

import (
	"context"
	"errors"
	"testing"

	"venue-staff/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_PassesOwnerPassword(t *testing.T) {
	seeders := Defaults("s3cret-pass")
	require.Len(t, seeders, 1)

	demo, ok := seeders[0].(DemoVenueSeeder)
	require.True(t, ok)
	assert.Equal(t, "s3cret-pass", demo.Password)
	assert.Equal(t, "demo_venue", demo.Name())
}

type recordingSeeder struct {
	name string
	err  error
	ran  *[]string
}

func (s recordingSeeder) Name() string { return s.name }

func (s recordingSeeder) Run(context.Context, database.DB) error {
	*s.ran = append(*s.ran, s.name)
	return s.err
}

func TestRunner_StopsAtFirstFailure(t *testing.T) {
	var ran []string
	boom := errors.New("boom")
	r := Runner{Seeders: []Seeder{
		recordingSeeder{name: "a", ran: &ran},
		nil,
		recordingSeeder{name: "b", err: boom, ran: &ran},
		recordingSeeder{name: "c", ran: &ran},
	}}

	// Seeders never touch the DB here, so any non-nil value will do.
	var db database.DB = struct{ database.DB }{}
	err := r.Run(context.Background(), db)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "seed b")
	assert.Equal(t, []string{"a", "b"}, ran)
}

func TestRunner_NilDB(t *testing.T) {
	assert.Error(t, Runner{Seeders: Defaults("")}.Run(context.Background(), nil))
}
