package sweep

import (
	"context"
	"testing"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce-mgmt/pkg/activity"
	"workforce-mgmt/pkg/comment"
	"workforce-mgmt/pkg/task"
	"workforce-mgmt/pkg/workforce"
)

func newService(t *testing.T, now time.Time) *workforce.Service {
	t.Helper()
	return workforce.New(task.NewMemStore(), comment.NewMemStore(),
		workforce.WithLogger(lgr.NoOp),
		workforce.WithClock(func() time.Time { return now }))
}

func TestRunOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newService(t, now)

	past := now.Add(-time.Hour).UnixMilli()
	future := now.Add(time.Hour).UnixMilli()
	created, err := svc.CreateTasks(ctx, []workforce.CreateItem{
		{ReferenceID: 1, ReferenceType: task.ReferenceOrder, TaskType: task.TypeCreateInvoice, AssigneeID: 1, TaskDeadlineTime: &past},
		{ReferenceID: 2, ReferenceType: task.ReferenceOrder, TaskType: task.TypeCreateInvoice, AssigneeID: 1, TaskDeadlineTime: &future},
		{ReferenceID: 3, ReferenceType: task.ReferenceOrder, TaskType: task.TypeCreateInvoice, AssigneeID: 1},
	})
	require.NoError(t, err)

	bus := activity.NewBus(activity.NewMemLog(10))
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	n, err := New(svc, bus, "@every 1h", lgr.NoOp).RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "past deadline and missing deadline are overdue")

	var ids []int64
	for range n {
		e := <-ch
		assert.Equal(t, activity.TaskOverdue, e.Type)
		assert.Equal(t, source, e.Source)
		ids = append(ids, e.TaskID)
	}
	assert.ElementsMatch(t, []int64{created[0].ID, created[2].ID}, ids)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := New(newService(t, time.Now()), activity.NewMemLog(10), "not a schedule", lgr.NoOp)
	assert.Error(t, s.Start(context.Background()))
}

func TestStartStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := newService(t, time.Now())
	_, err := svc.CreateTasks(ctx, []workforce.CreateItem{
		{ReferenceID: 1, ReferenceType: task.ReferenceEntity, TaskType: task.TypeAssignCustomerToSales, AssigneeID: 1},
	})
	require.NoError(t, err)

	log := activity.NewMemLog(10)
	s := New(svc, log, "* * * * * *", lgr.NoOp)
	require.NoError(t, s.Start(ctx))
	assert.Error(t, s.Start(ctx), "second start is rejected")

	assert.Eventually(t, func() bool {
		events, err := log.Recent(ctx, 10)
		return err == nil && len(events) > 0 && events[0].Type == activity.TaskOverdue
	}, 3*time.Second, 50*time.Millisecond)

	s.Stop()
	s.Stop()
}
