package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/site-engineer-app/events"
	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/repositories"
	"github.com/yeremiapane/site-engineer-app/utils"
)

func TestCheckInAndOutOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.checkIns()

	lat, lng := -6.2, 106.8
	in, err := svc.CheckIn(ctx, f.eng1, CheckInInput{Latitude: &lat, Longitude: &lng, LocationName: strPtr("North Wing gate")})
	require.NoError(t, err)
	assert.True(t, in.Open())
	assert.Equal(t, "Budi Santoso", in.EngineerName)

	_, err = svc.CheckIn(ctx, f.eng1, CheckInInput{})
	assert.True(t, utils.IsKind(err, utils.KindValidation), "second open check-in")

	out, err := svc.CheckOut(ctx, f.eng1, in.ID)
	require.NoError(t, err)
	require.NotNil(t, out.CheckOutTime)
	assert.False(t, out.CheckOutTime.Before(out.CheckInTime))

	_, err = svc.CheckOut(ctx, f.eng1, in.ID)
	assert.True(t, utils.IsKind(err, utils.KindAlreadyCheckedOut))

	_, err = svc.CheckIn(ctx, f.eng1, CheckInInput{})
	require.NoError(t, err, "a closed check-in frees the engineer")

	assert.Equal(t, []events.Type{events.CheckIn, events.CheckOut, events.CheckIn}, f.published.types())
}

func TestCheckOutAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.checkIns()

	in, err := svc.CheckIn(ctx, f.eng1, CheckInInput{})
	require.NoError(t, err)

	_, err = svc.CheckOut(ctx, f.eng2, in.ID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	_, err = svc.CheckOut(ctx, f.clientUser1, in.ID)
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	_, err = svc.CheckOut(ctx, f.admin, "missing")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	_, err = svc.CheckOut(ctx, f.admin, in.ID)
	assert.NoError(t, err, "staff may close any check-in")
}

func TestCheckInRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.checkIns()

	_, err := svc.CheckIn(ctx, f.hr, CheckInInput{})
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	lat := 10.0
	_, err = svc.CheckIn(ctx, f.eng1, CheckInInput{Latitude: &lat})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	bad := 200.0
	_, err = svc.CheckIn(ctx, f.eng1, CheckInInput{Latitude: &lat, Longitude: &bad})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestCheckOutNeverPrecedesCheckIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.checkIns()

	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }
	in, err := svc.CheckIn(ctx, f.eng1, CheckInInput{})
	require.NoError(t, err)

	svc.now = func() time.Time { return start.Add(-time.Hour) }
	out, err := svc.CheckOut(ctx, f.eng1, in.ID)
	require.NoError(t, err)
	assert.True(t, out.CheckOutTime.Equal(out.CheckInTime))
}

func TestPanickingSubscriberDoesNotAffectCheckIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCheckInService(f.store, f.scope, events.PublisherFunc(func(context.Context, events.Event) {
		panic("mail server exploded")
	}))

	var (
		view *models.CheckInView
		err  error
	)
	assert.NotPanics(t, func() {
		view, err = svc.CheckIn(ctx, f.eng1, CheckInInput{})
	})
	require.NoError(t, err)
	assert.True(t, view.Open())

	open, err := f.store.CountCheckIns(ctx, repositories.CheckInFilter{EngineerIDs: []string{f.eng1.ProfileID}, OpenOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, open)
}

// racingStore hides open check-ins from the in-transaction count, as a
// concurrent check-in that has not committed yet would.
type racingStore struct {
	repositories.Store
}

func (s racingStore) Transaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repositories.Store) error {
		return fn(racingStore{Store: tx})
	})
}

func (s racingStore) CountCheckIns(context.Context, repositories.CheckInFilter) (int64, error) {
	return 0, nil
}

func TestDatabaseRejectsSecondOpenCheckIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.checkIns().CheckIn(ctx, f.eng1, CheckInInput{})
	require.NoError(t, err)

	racing := NewCheckInService(racingStore{Store: f.store}, f.scope, f.published)
	_, err = racing.CheckIn(ctx, f.eng1, CheckInInput{})
	assert.True(t, utils.IsKind(err, utils.KindValidation), "got %v", err)

	_, err = racing.CheckIn(ctx, f.eng2, CheckInInput{})
	require.NoError(t, err, "other engineers are unaffected")

	open, err := f.store.CountCheckIns(ctx, repositories.CheckInFilter{EngineerIDs: []string{f.eng1.ProfileID}, OpenOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, open)
}
