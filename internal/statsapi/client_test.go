package statsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const leaguesBody = `{
	"results": 1,
	"response": [{
		"league": {"id": 235, "name": "Premier League", "logo": "https://media.example/leagues/235.png"},
		"country": {"name": "Russia"},
		"seasons": [{"year": 2026, "start": "2026-07-19", "end": "2027-05-22", "current": true}]
	}]
}`

func TestFetchCurrentSeason(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"name":    r.URL.Query().Get("name"),
			"country": r.URL.Query().Get("country"),
		}
		assert.Equal(t, "test-host", r.Header.Get("X-RapidAPI-Host"))
		assert.Equal(t, "test-key", r.Header.Get("X-RapidAPI-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(leaguesBody))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Host: "test-host", Key: "test-key"})
	snap, err := c.FetchCurrentSeason(context.Background(), "Russia", "Premier League")
	require.NoError(t, err)

	assert.Equal(t, "Premier League", gotQuery["name"])
	assert.Equal(t, "Russia", gotQuery["country"])

	assert.Equal(t, int64(235), snap.LeagueAPIID)
	assert.Equal(t, "Premier League", snap.LeagueName)
	assert.Equal(t, "Russia", snap.Country)
	assert.Equal(t, 2026, snap.Year)
	assert.True(t, snap.Current)
	assert.Equal(t, time.Date(2026, 7, 19, 0, 0, 0, 0, time.UTC), snap.StartDate)
	assert.Equal(t, time.Date(2027, 5, 22, 0, 0, 0, 0, time.UTC), snap.EndDate)
}

func TestFetchCurrentSeasonNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": 0, "response": []}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Host: "h", Key: "k"})
	_, err := c.FetchCurrentSeason(context.Background(), "Atlantis", "Sunken League")
	assert.ErrorIs(t, err, ErrSeasonNotFound)
}

func TestFetchCurrentSeasonRetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(leaguesBody))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Host: "h", Key: "k", MaxRetries: 2})
	snap, err := c.FetchCurrentSeason(context.Background(), "Russia", "Premier League")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2026, snap.Year)
}
