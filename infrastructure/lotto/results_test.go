package lotto

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rich-automation/lotto-action/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const round1083 = `{"totSellamnt":111612677000,"returnValue":"success","drwNoDate":"2023-09-02","firstWinamnt":2271656325,"drwtNo6":41,"drwtNo4":26,"firstPrzwnerCo":12,"drwtNo5":31,"bnusNo":7,"firstAccumamnt":27259875900,"drwNo":1083,"drwtNo2":10,"drwtNo3":14,"drwtNo1":3}`

func newResultsServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		switch r.URL.Query().Get("drwNo") {
		case "1083":
			fmt.Fprint(w, round1083)
		case "500":
			w.WriteHeader(http.StatusBadGateway)
		case "7":
			fmt.Fprint(w, "<html>maintenance</html>")
		default:
			fmt.Fprint(w, `{"returnValue":"fail"}`)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestResultsClient_Fetch(t *testing.T) {
	t.Parallel()

	var hits int32
	server := newResultsServer(t, &hits)
	client := NewResultsClient(server.URL+"/common.do?method=getLottoNumber", server.Client())

	result, err := client.Fetch(context.Background(), 1083)

	require.NoError(t, err)
	assert.Equal(t, 1083, result.Round)
	assert.Equal(t, "2023-09-02", result.Date)
	assert.Equal(t, entities.Combination{3, 10, 14, 26, 31, 41}, result.Numbers)
	assert.Equal(t, 7, result.Bonus)
}

func TestResultsClient_SharesOneRequestPerRound(t *testing.T) {
	t.Parallel()

	var hits int32
	server := newResultsServer(t, &hits)
	client := NewResultsClient(server.URL+"/common.do?method=getLottoNumber", server.Client())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Fetch(context.Background(), 1083)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestResultsClient_Errors(t *testing.T) {
	t.Parallel()

	var hits int32
	server := newResultsServer(t, &hits)
	client := NewResultsClient(server.URL+"/common.do?method=getLottoNumber", server.Client())
	// Announcement lags the draw; the API still reports fail for a round past its draw time
	client.clock = func() time.Time { return DrawTime(1200).Add(time.Hour) }

	_, err := client.Fetch(context.Background(), 1200)
	assert.ErrorIs(t, err, entities.ErrRoundNotDrawn)

	_, err = client.Fetch(context.Background(), 500)
	assert.ErrorContains(t, err, "HTTP 502")

	_, err = client.Fetch(context.Background(), 7)
	assert.ErrorContains(t, err, "not JSON")

	// Failures are not cached
	before := atomic.LoadInt32(&hits)
	_, _ = client.Fetch(context.Background(), 1200)
	assert.Equal(t, before+1, atomic.LoadInt32(&hits))
}

func TestResultsClient_BuildsQueryForAnyBaseURL(t *testing.T) {
	t.Parallel()

	var hits int32
	server := newResultsServer(t, &hits)

	for _, base := range []string{
		server.URL + "/common.do",
		server.URL + "/common.do?method=getLottoNumber",
		server.URL + "/common.do?method=getLottoNumber&drwNo=1",
	} {
		client := NewResultsClient(base, server.Client())
		result, err := client.Fetch(context.Background(), 1083)
		require.NoError(t, err, base)
		assert.Equal(t, 1083, result.Round)
	}
}

func TestResultsClient_FutureRoundSkipsRequest(t *testing.T) {
	t.Parallel()

	var hits int32
	server := newResultsServer(t, &hits)
	client := NewResultsClient(server.URL+"/common.do?method=getLottoNumber", server.Client())
	client.clock = func() time.Time { return DrawTime(1083).Add(-time.Minute) }

	_, err := client.Fetch(context.Background(), 1083)

	assert.ErrorIs(t, err, entities.ErrRoundNotDrawn)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestDrawResult_RankOf(t *testing.T) {
	t.Parallel()

	draw := &DrawResult{Round: 1083, Numbers: entities.Combination{3, 10, 14, 26, 31, 41}, Bonus: 7}

	tests := []struct {
		name        string
		combination entities.Combination
		want        entities.Rank
	}{
		{name: "jackpot", combination: entities.Combination{3, 10, 14, 26, 31, 41}, want: entities.RankFirst},
		{name: "five and bonus", combination: entities.Combination{3, 7, 10, 14, 26, 31}, want: entities.RankSecond},
		{name: "five", combination: entities.Combination{3, 10, 14, 26, 31, 45}, want: entities.RankThird},
		{name: "four", combination: entities.Combination{3, 10, 14, 26, 44, 45}, want: entities.RankFourth},
		{name: "three", combination: entities.Combination{3, 10, 14, 43, 44, 45}, want: entities.RankFifth},
		{name: "two and bonus", combination: entities.Combination{3, 7, 10, 43, 44, 45}, want: entities.RankNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, draw.RankOf(tt.combination))
		})
	}
}
