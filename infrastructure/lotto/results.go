package lotto

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rich-automation/lotto-action/domain/entities"

	"github.com/puzpuzpuz/xsync"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// DefaultResultsURL is the winning number endpoint; the round is set as the drwNo query parameter
const DefaultResultsURL = "https://www.dhlottery.co.kr/common.do?method=getLottoNumber"

// DrawResult holds the winning numbers of one round
type DrawResult struct {
	Round   int
	Date    string
	Numbers entities.Combination
	Bonus   int
}

// RankOf computes the rank a combination achieved in this draw
func (d *DrawResult) RankOf(combination entities.Combination) entities.Rank {
	winning := make(map[int]bool, len(d.Numbers))
	for _, n := range d.Numbers {
		winning[n] = true
	}

	matches := 0
	bonus := false
	for _, n := range combination {
		if winning[n] {
			matches++
		}
		if n == d.Bonus {
			bonus = true
		}
	}
	return entities.RankFromMatches(matches, bonus)
}

// fetchResult is shared by every caller asking for the same round
type fetchResult struct {
	once   sync.Once
	result *DrawResult
	err    error
}

// ResultsClient fetches winning numbers and caches them per round for the life of the client
type ResultsClient struct {
	baseURL    string
	httpClient *http.Client
	cache      *xsync.MapOf[string, *fetchResult]
	clock      func() time.Time
}

// NewResultsClient creates a results client. Empty baseURL uses DefaultResultsURL.
func NewResultsClient(baseURL string, httpClient *http.Client) *ResultsClient {
	if baseURL == "" {
		baseURL = DefaultResultsURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ResultsClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		cache:      xsync.NewMapOf[*fetchResult](),
		clock:      time.Now,
	}
}

// Fetch returns the draw result for round. Concurrent callers for the same
// round share one request. Failed lookups are not cached. Rounds whose draw
// time has not come yet fail with ErrRoundNotDrawn without a request.
func (c *ResultsClient) Fetch(ctx context.Context, round int) (*DrawResult, error) {
	if c.clock().Before(DrawTime(round)) {
		return nil, fmt.Errorf("round %d is drawn at %s: %w", round, DrawTime(round).Format(time.RFC3339), entities.ErrRoundNotDrawn)
	}

	key := strconv.Itoa(round)
	entry, _ := c.cache.LoadOrStore(key, &fetchResult{})
	entry.once.Do(func() {
		entry.result, entry.err = c.fetch(ctx, round)
	})
	if entry.err != nil {
		c.cache.Delete(key)
	}
	return entry.result, entry.err
}

func (c *ResultsClient) fetch(ctx context.Context, round int) (*DrawResult, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results url: %w", err)
	}
	query := endpoint.Query()
	query.Set("drwNo", strconv.Itoa(round))
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build results request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch results for round %d: %w", round, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read results for round %d: %w", round, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("results for round %d returned HTTP %d", round, resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("results for round %d are not JSON", round)
	}

	if gjson.GetBytes(body, "returnValue").String() != "success" {
		return nil, fmt.Errorf("round %d: %w", round, entities.ErrRoundNotDrawn)
	}

	fields := gjson.GetManyBytes(body, "drwNo", "drwNoDate", "drwtNo1", "drwtNo2", "drwtNo3", "drwtNo4", "drwtNo5", "drwtNo6", "bnusNo")
	result := &DrawResult{
		Round: int(fields[0].Int()),
		Date:  fields[1].String(),
		Bonus: int(fields[8].Int()),
	}
	for _, field := range fields[2:8] {
		result.Numbers = append(result.Numbers, int(field.Int()))
	}

	if result.Round != round {
		return nil, fmt.Errorf("asked for round %d but got round %d", round, result.Round)
	}
	if err := result.Numbers.Validate(); err != nil {
		return nil, fmt.Errorf("round %d has invalid winning numbers: %w", round, err)
	}

	log.WithFields(log.Fields{
		"round":   result.Round,
		"date":    result.Date,
		"numbers": result.Numbers.String(),
		"bonus":   result.Bonus,
	}).Debug("Fetched draw result")

	return result, nil
}
