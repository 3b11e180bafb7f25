package repository

import (
	"context"
	"database/sql"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybnb/internal/db"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, mock
}

func TestUserCreateMapsUniqueViolation(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewUserRepository(conn)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Ana", "ana@example.com", "", "", "hash").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &db.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateReturnsID(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewUserRepository(conn)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, now, now))

	u := &db.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, 7, u.ID)
}

func TestUserGetByEmailNotFound(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewUserRepository(conn)

	mock.ExpectQuery("FROM users WHERE LOWER\\(email\\)").
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserGetByIDScansArraysAndNullDate(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewUserRepository(conn)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "name", "email", "phone", "date_of_birth", "address", "is_host",
		"bio", "experience", "languages", "password_hash", "created_at", "updated_at"}).
		AddRow(3, "Ana", "ana@example.com", "", nil, "", true, "hi", "", "{en,es}", "hash", now, now)
	mock.ExpectQuery("FROM users WHERE id = \\$1").WithArgs(3).WillReturnRows(rows)

	u, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.True(t, u.IsHost)
	assert.Nil(t, u.DateOfBirth)
	assert.Equal(t, []string{"en", "es"}, u.Languages)
}

func TestBookingHasOverlap(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewBookingRepository(conn)
	in := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	out := in.AddDate(0, 0, 3)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(5, in, out).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	overlap, err := repo.HasOverlap(context.Background(), 5, in, out)
	require.NoError(t, err)
	assert.True(t, overlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingUpdateStatusMissingRow(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewBookingRepository(conn)

	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(99, db.BookingStatusConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 99, db.BookingStatusConfirmed)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestPropertySearchBuildsFilters(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewPropertyRepository(conn)
	in := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	out := in.AddDate(0, 0, 2)

	mock.ExpectQuery(`(?s)ILIKE \$2.*max_guests >= \$3.*check_in < \$5.*check_out > \$4.*LIMIT \$6`).
		WithArgs(1, "%lisbon%", 2, in, out, 200).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Search(context.Background(), PropertyQuery{
		Location: "lisbon", Guests: 2, CheckIn: in, CheckOut: out, ViewerID: 1,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobUpdatesSkipEmpty(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewJobRepository(conn)

	ids, err := repo.CompleteBookings(nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
	ids, err = repo.ExpireBookings(nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteBookingsOnlyTouchesConfirmed(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewJobRepository(conn)

	// booking 2 was cancelled after it was selected
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = ANY($2) AND status = $3")).
		WithArgs(db.BookingStatusCompleted, pq.Array([]int{1, 2}), db.BookingStatusConfirmed).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	ids, err := repo.CompleteBookings([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpireBookingsSkipsPaidHolds(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewJobRepository(conn)

	// booking 7 was paid between the select and the update
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = ANY($2) AND status = $3 AND payment_status = $4")).
		WithArgs(db.BookingStatusCancelled, pq.Array([]int{7}), db.BookingStatusPending, db.PaymentStatusUnpaid).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ids, err := repo.ExpireBookings([]int{7})
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchCacheLocalOnly(t *testing.T) {
	c := NewSearchCache("", time.Minute)

	_, ok := c.Get("location=lisbon", 0)
	assert.False(t, ok)

	c.Set("location=lisbon", 0, []db.Property{{ID: 1}})
	got, ok := c.Get("location=lisbon", 0)
	require.True(t, ok)
	assert.Equal(t, 1, got[0].ID)

	_, ok = c.Get("location=lisbon", 4)
	assert.False(t, ok, "results are per viewer")

	c.Invalidate()
	_, ok = c.Get("location=lisbon", 0)
	assert.False(t, ok)
}

type fakeMemcache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newFakeMemcache() *fakeMemcache {
	return &fakeMemcache{items: map[string][]byte{}}
}

func (f *fakeMemcache) Get(key string) (*memcache.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.items[key]
	if !ok {
		return nil, memcache.ErrCacheMiss
	}
	return &memcache.Item{Key: key, Value: append([]byte(nil), v...)}, nil
}

func (f *fakeMemcache) Set(item *memcache.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[item.Key] = append([]byte(nil), item.Value...)
	return nil
}

func (f *fakeMemcache) Add(item *memcache.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[item.Key]; ok {
		return memcache.ErrNotStored
	}
	f.items[item.Key] = append([]byte(nil), item.Value...)
	return nil
}

func (f *fakeMemcache) Increment(key string, delta uint64) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.items[key]
	if !ok {
		return 0, memcache.ErrCacheMiss
	}
	n, err := strconv.ParseUint(string(v), 10, 64)
	if err != nil {
		return 0, err
	}
	n += delta
	f.items[key] = []byte(strconv.FormatUint(n, 10))
	return n, nil
}

func TestSearchCacheGenerationIsShared(t *testing.T) {
	remote := newFakeMemcache()
	a := newSearchCache(remote, time.Minute)
	b := newSearchCache(remote, time.Minute)

	a.Set("location=lisbon", 0, []db.Property{{ID: 1}})
	got, ok := b.Get("location=lisbon", 0)
	require.True(t, ok, "instances share memcached entries")
	assert.Equal(t, 1, got[0].ID)

	b.Invalidate()
	_, ok = a.Get("location=lisbon", 0)
	assert.False(t, ok, "an invalidation on one instance reaches the others")

	restarted := newSearchCache(remote, time.Minute)
	_, ok = restarted.Get("location=lisbon", 0)
	assert.False(t, ok, "a fresh process does not see results from before the invalidation")
}

func TestSearchCacheReseedsLostGeneration(t *testing.T) {
	remote := newFakeMemcache()
	c := newSearchCache(remote, time.Minute)
	c.Set("location=lisbon", 0, []db.Property{{ID: 1}})

	delete(remote.items, generationKey)
	c.Invalidate()

	_, ok := newSearchCache(remote, time.Minute).Get("location=lisbon", 0)
	assert.False(t, ok)
}

func TestMemoryBlocklist(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	bl := &memoryBlocklist{entries: map[string]time.Time{}, now: func() time.Time { return now }}

	require.NoError(t, bl.Revoke(ctx, "abc", time.Hour))
	revoked, _ := bl.IsRevoked(ctx, "abc")
	assert.True(t, revoked)

	now = now.Add(2 * time.Hour)
	revoked, _ = bl.IsRevoked(ctx, "abc")
	assert.False(t, revoked)
}
