package holiday

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryHolidayRepo struct {
	byDate map[string]holiday.Holiday
	failOn string
}

func newMemoryHolidayRepo() *memoryHolidayRepo {
	return &memoryHolidayRepo{byDate: map[string]holiday.Holiday{}}
}

func (r *memoryHolidayRepo) ListByRange(ctx context.Context, from, to time.Time) ([]holiday.Holiday, error) {
	return nil, nil
}

func (r *memoryHolidayRepo) Upsert(ctx context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	key := h.Date.Format("2006-01-02")
	if key == r.failOn {
		return holiday.Holiday{}, errors.New("write failed")
	}
	h.ID = "h-" + key
	r.byDate[key] = h
	return h, nil
}

type recordingTx struct {
	calls int
}

func (t *recordingTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

func (t *recordingTx) WithinReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestImport(t *testing.T) {
	repo := newMemoryHolidayRepo()
	tx := &recordingTx{}
	svc := NewHolidayService(tx, repo)

	got, err := svc.Import(context.Background(), holiday.ImportFile{Holidays: []holiday.ImportEntry{
		{Date: "2025-01-26", Name: "Republic Day", Type: "Mandatory"},
		{Date: "2025-03-14", Name: "Holi"},
		{Date: "2025-10-20", Name: "Diwali", Type: "Optional"},
	}})
	require.NoError(t, err)

	assert.Equal(t, 1, tx.calls)
	require.Len(t, got, 3)
	assert.Equal(t, holiday.TypeMandatory, got[1].Type)
	assert.Equal(t, holiday.TypeOptional, got[2].Type)
	assert.Equal(t, time.Date(2025, time.January, 26, 0, 0, 0, 0, time.UTC), repo.byDate["2025-01-26"].Date)
}

func TestImport_Invalid(t *testing.T) {
	repo := newMemoryHolidayRepo()
	tx := &recordingTx{}
	svc := NewHolidayService(tx, repo)

	t.Run("empty file", func(t *testing.T) {
		_, err := svc.Import(context.Background(), holiday.ImportFile{})
		assert.ErrorIs(t, err, holiday.ErrEmptyImport)
	})

	t.Run("bad entries", func(t *testing.T) {
		_, err := svc.Import(context.Background(), holiday.ImportFile{Holidays: []holiday.ImportEntry{
			{Date: "26/01/2025", Name: "Republic Day"},
			{Date: "2025-08-15", Name: ""},
			{Date: "2025-08-15", Name: "Independence Day", Type: "Floating"},
		}})

		var errs validator.ValidationErrors
		require.True(t, errors.As(err, &errs))
		fields := errs.ToMap()
		assert.Contains(t, fields, "holidays[0].date")
		assert.Contains(t, fields, "holidays[1].name")
		assert.Contains(t, fields, "holidays[2].date")
		assert.Contains(t, fields, "holidays[2].type")
	})

	assert.Zero(t, tx.calls)
	assert.Empty(t, repo.byDate)
}

func TestImport_RepositoryFailure(t *testing.T) {
	repo := newMemoryHolidayRepo()
	repo.failOn = "2025-03-14"
	svc := NewHolidayService(&recordingTx{}, repo)

	_, err := svc.Import(context.Background(), holiday.ImportFile{Holidays: []holiday.ImportEntry{
		{Date: "2025-01-26", Name: "Republic Day"},
		{Date: "2025-03-14", Name: "Holi"},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2025-03-14")
}
