package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetqa/domain/answer"
	"sheetqa/domain/workbook"
	"sheetqa/internal/logging"
)

func newTestStore(t *testing.T, ttl time.Duration, max int) *Store {
	t.Helper()
	store, err := NewStore("test-secret-key-32-bytes-long!!", ttl, max, logging.Discard())
	require.NoError(t, err)
	return store
}

// roundTrip calls Get and returns the state plus any cookie that was set
func roundTrip(t *testing.T, store *Store, cookies ...*http.Cookie) (*State, []*http.Cookie) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	state, err := store.Get(rec, req)
	require.NoError(t, err)
	return state, rec.Result().Cookies()
}

func TestStore_SessionSurvivesRequests(t *testing.T) {
	store := newTestStore(t, time.Hour, 10)

	first, cookies := roundTrip(t, store)
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	first.SetWorkbook(&workbook.Workbook{FileName: "a.xlsx"})

	again, newCookies := roundTrip(t, store, cookies...)
	assert.Same(t, first, again)
	assert.Equal(t, "a.xlsx", again.Workbook.FileName)
	require.Len(t, newCookies, 1, "live session refreshes its cookie")
	assert.Equal(t, 3600, newCookies[0].MaxAge)
}

func TestStore_CookieLifetimeFollowsActivity(t *testing.T) {
	store := newTestStore(t, 2*time.Second, 10)

	first, cookies := roundTrip(t, store)
	require.Len(t, cookies, 1)
	assert.Equal(t, 2, cookies[0].MaxAge)

	for i := 0; i < 3; i++ {
		state, refreshed := roundTrip(t, store, cookies...)
		assert.Same(t, first, state)
		require.Len(t, refreshed, 1, "request %d", i)
		assert.Equal(t, 2, refreshed[0].MaxAge, "request %d", i)
		cookies = refreshed
	}
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	store := newTestStore(t, time.Hour, 10)

	a, _ := roundTrip(t, store)
	b, _ := roundTrip(t, store)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, store.Len())
}

func TestStore_EvictionStartsFreshSession(t *testing.T) {
	store := newTestStore(t, time.Hour, 1)

	first, cookies := roundTrip(t, store)
	roundTrip(t, store)

	again, newCookies := roundTrip(t, store, cookies...)
	assert.NotEqual(t, first.ID, again.ID)
	assert.Len(t, newCookies, 1)
}

func TestStore_ForgedCookie(t *testing.T) {
	store := newTestStore(t, time.Hour, 10)
	state, cookies := roundTrip(t, store, &http.Cookie{Name: cookieName, Value: "forged"})
	assert.NotEmpty(t, state.ID)
	assert.Len(t, cookies, 1)
}

func TestState_SetWorkbookClearsAnswer(t *testing.T) {
	state := &State{LastQuestion: "q", LastResult: answer.FromText("x")}
	state.SetWorkbook(&workbook.Workbook{})
	assert.Empty(t, state.LastQuestion)
	assert.Nil(t, state.LastResult)

	state.Reset()
	assert.Nil(t, state.Workbook)
}

func TestNewStore_RandomKey(t *testing.T) {
	store, err := NewStore("", time.Hour, 4, logging.Discard())
	require.NoError(t, err)
	state, cookies := roundTrip(t, store)
	assert.NotEmpty(t, state.ID)
	assert.Len(t, cookies, 1)
}
