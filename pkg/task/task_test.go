package task

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusAssigned, StatusStarted, true},
		{StatusAssigned, StatusCancelled, true},
		{StatusStarted, StatusCompleted, true},
		{StatusStarted, StatusCancelled, true},
		{StatusAssigned, StatusAssigned, true},
		{StatusCompleted, StatusCompleted, true},
		{StatusAssigned, StatusCompleted, false},
		{StatusStarted, StatusAssigned, false},
		{StatusCompleted, StatusStarted, false},
		{StatusCancelled, StatusAssigned, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusAssigned, Status("DONE"), false},
	}
	for _, tt := range tests {
		got := CanTransition(tt.from, tt.to)
		if got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}

	err := CheckTransition(StatusCancelled, StatusStarted)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusAssigned.Live())
	assert.True(t, StatusStarted.Live())
	assert.False(t, StatusCompleted.Live())
	assert.False(t, StatusCancelled.Live())

	assert.True(t, StatusAssigned.Active())
	assert.True(t, StatusStarted.Active())
	assert.False(t, StatusCompleted.Active())
}

func TestParseEnums(t *testing.T) {
	s, err := ParseStatus(" started ")
	require.NoError(t, err)
	assert.Equal(t, StatusStarted, s)

	p, err := ParsePriority("high")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)
	assert.Greater(t, PriorityUrgent.Rank(), PriorityHigh.Rank())

	_, err = ParsePriority("whenever")
	assert.ErrorIs(t, err, ErrInvalid)

	r, err := ParseReferenceType("shipment")
	require.NoError(t, err)
	assert.Equal(t, ReferenceShipment, r)

	_, err = ParseTaskType("LAUNDRY")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestApplicableTaskTypes(t *testing.T) {
	assert.Equal(t, []TaskType{TypePickup, TypeDelivery}, ApplicableTaskTypes(ReferenceShipment))
	assert.Equal(t, []TaskType{TypeCreateInvoice, TypeCollectPayment}, ApplicableTaskTypes(ReferenceOrder))
	assert.Equal(t, []TaskType{TypeAssignCustomerToSales}, ApplicableTaskTypes(ReferenceEntity))
	assert.Empty(t, ApplicableTaskTypes(ReferenceType("WAREHOUSE")))
}

func TestTaskOverdue(t *testing.T) {
	past := int64(100)
	tk := Task{Status: StatusStarted, Deadline: &past}
	assert.True(t, tk.Overdue(200))
	assert.False(t, tk.Overdue(50))

	tk.Status = StatusCompleted
	assert.False(t, tk.Overdue(200))

	noDeadline := Task{Status: StatusAssigned}
	assert.True(t, noDeadline.Overdue(0))
}

func TestMemStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	deadline := int64(1000)
	a, err := s.Save(ctx, &Task{ReferenceID: 1, ReferenceType: ReferenceShipment, TaskType: TypePickup, AssigneeID: 7, Status: StatusAssigned, Deadline: &deadline})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	b, err := s.Save(ctx, &Task{ReferenceID: 1, ReferenceType: ReferenceShipment, TaskType: TypeDelivery, AssigneeID: 8, Status: StatusAssigned})
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.ID)

	_, err = s.Save(ctx, &Task{ReferenceID: 2, ReferenceType: ReferenceOrder, TaskType: TypeCreateInvoice, AssigneeID: 7, Status: StatusAssigned})
	require.NoError(t, err)

	// returned records are copies
	*a.Deadline = 5
	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), *got.Deadline)

	_, err = s.Get(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	byRef, err := s.FindByReference(ctx, 1, ReferenceShipment)
	require.NoError(t, err)
	assert.Len(t, byRef, 2)

	byAssignee, err := s.FindByAssignees(ctx, []int64{7})
	require.NoError(t, err)
	require.Len(t, byAssignee, 2)
	assert.Equal(t, int64(1), byAssignee[0].ID)
	assert.Equal(t, int64(3), byAssignee[1].ID)

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	got.Status = StatusStarted
	updated, err := s.Save(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, StatusStarted, updated.Status)
	assert.Equal(t, a.CreatedAt, updated.CreatedAt)

	_, err = s.Save(ctx, &Task{ID: 42})
	assert.ErrorIs(t, err, ErrNotFound)
}
