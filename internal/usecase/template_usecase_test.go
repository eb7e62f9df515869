package usecase

import (
	"context"
	"testing"

	"venue-staff/internal/domain/resume"
	"venue-staff/internal/domain/venue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFields() []resume.Field {
	return []resume.Field{
		{Key: "age", Label: "Age", Type: resume.FieldNumber, Required: true},
		{Key: "shift_pref", Label: "Preferred nights", Type: resume.FieldSelect, Options: []string{"weekday", "weekend"}},
	}
}

func TestTemplates_Lifecycle(t *testing.T) {
	s := newFakeStore()
	v := s.addVenue("Club Moonlight")
	manager, staff := s.addUser("Mana"), s.addUser("Ken")
	s.addMember(v, manager, venue.RoleManager)
	s.addMember(v, staff, venue.RoleStaff)
	uc := NewTemplateUsecase(fakeTemplates{s}, fakeVenues{s}, fakeMembers{s}, nil)
	ctx := context.Background()

	_, err := uc.Create(ctx, staff.ID, v.ID, TemplateInput{Name: "Floor staff", Fields: sampleFields()})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = uc.Create(ctx, manager.ID, v.ID, TemplateInput{Name: "Floor staff"})
	assert.ErrorIs(t, err, resume.ErrInvalidTemplate)

	first, err := uc.Create(ctx, manager.ID, v.ID, TemplateInput{Name: " Floor staff ", Fields: sampleFields()})
	require.NoError(t, err)
	assert.Equal(t, "Floor staff", first.Name)
	assert.False(t, first.IsActive)

	second, err := uc.Create(ctx, manager.ID, v.ID, TemplateInput{Name: "Bartender", Fields: sampleFields()})
	require.NoError(t, err)

	_, err = uc.Activate(ctx, manager.ID, v.ID, first.ID)
	require.NoError(t, err)
	active, err := uc.Activate(ctx, manager.ID, v.ID, second.ID)
	require.NoError(t, err)
	assert.True(t, active.IsActive)

	got, err := uc.Get(ctx, manager.ID, v.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// Reorder by sending the fields back in a new order.
	reordered := sampleFields()
	reordered[0], reordered[1] = reordered[1], reordered[0]
	updated, err := uc.Update(ctx, manager.ID, v.ID, first.ID, TemplateInput{Name: "Floor staff", Fields: reordered})
	require.NoError(t, err)
	assert.Equal(t, "shift_pref", updated.Fields[0].Key)

	assert.ErrorIs(t, uc.Delete(ctx, manager.ID, v.ID, second.ID), ErrTemplateActive)
	require.NoError(t, uc.Delete(ctx, manager.ID, v.ID, first.ID))
	_, err = uc.Get(ctx, manager.ID, v.ID, first.ID)
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	list, err := uc.List(ctx, manager.ID, v.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
