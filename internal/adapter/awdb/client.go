// Package awdb is a client for the NRCS AWDB REST service.
package awdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/snotel-shef-etl/internal/domain"
	"github.com/couchcryptid/snotel-shef-etl/internal/observability"
	"github.com/sony/gobreaker"
)

const (
	endpointData     = "data"
	endpointStations = "stations"
)

// AWDB reports hourly readings with minutes and daily readings as bare dates.
var dateLayouts = []string{"2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02"}

// Client fetches observations and station metadata from AWDB. Calls are not
// retried; a circuit breaker makes repeated failures fail fast.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an AWDB client rooted at baseURL, e.g.
// https://wcc.sc.egov.usda.gov/awdbRestApi/services/v1.
func NewClient(baseURL, userAgent string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: newBreaker(logger),
		metrics: metrics,
		logger:  logger,
	}
}

func newBreaker(logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "awdb",
		MaxRequests: 1,
		Interval:    10 * time.Minute,
		Timeout:     5 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// FetchObservations requests readings for one batch of stations.
// Observations are returned in response order.
func (c *Client) FetchObservations(ctx context.Context, triplets []domain.StationTriplet, q domain.ObservationQuery) ([]domain.RawObservation, error) {
	if len(triplets) == 0 {
		return nil, nil
	}

	params := url.Values{
		"stationTriplets": {domain.JoinTriplets(triplets)},
		"elements":        {strings.Join(q.Elements, ",")},
		"duration":        {string(q.Duration)},
		"beginDate":       {"-" + strconv.Itoa(q.Back)},
	}

	var resp []stationData
	if err := c.get(ctx, endpointData, params, &resp); err != nil {
		return nil, err
	}
	return mapObservations(resp)
}

// FetchMetadata requests the time zone and SHEF id for one batch of stations.
func (c *Client) FetchMetadata(ctx context.Context, triplets []domain.StationTriplet) ([]domain.StationMeta, error) {
	if len(triplets) == 0 {
		return nil, nil
	}

	params := url.Values{
		"stationTriplets": {domain.JoinTriplets(triplets)},
	}

	var resp []stationInfo
	if err := c.get(ctx, endpointStations, params, &resp); err != nil {
		return nil, err
	}
	return c.mapMetadata(resp)
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	start := time.Now()
	err := c.doGet(ctx, endpoint, params, out)
	c.metrics.AWDBDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.metrics.AWDBRequests.WithLabelValues(endpoint, outcome).Inc()
	return err
}

func (c *Client) doGet(ctx context.Context, endpoint string, params url.Values, out any) error {
	fullURL := c.baseURL + "/" + endpoint + "?" + params.Encode()
	c.logger.Debug("awdb request", "endpoint", endpoint, "url_length", len(fullURL))

	body, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s request: %w", endpoint, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%s read body: %w", endpoint, err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("awdb API error: status %d: %s", resp.StatusCode, truncate(data, 256))
		}
		return data, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %s: circuit open: %w", domain.ErrTransport, endpoint, err)
		}
		return fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}

	if err := json.Unmarshal(body.([]byte), out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", domain.ErrTransport, endpoint, err)
	}
	return nil
}

func mapObservations(resp []stationData) ([]domain.RawObservation, error) {
	var out []domain.RawObservation
	for _, st := range resp {
		triplet, err := domain.ParseTriplet(st.StationTriplet)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
		}
		for _, el := range st.Data {
			for _, v := range el.Values {
				t, err := parseDate(v.Date)
				if err != nil {
					return nil, fmt.Errorf("%w: station %s: %w", domain.ErrTransport, st.StationTriplet, err)
				}
				out = append(out, domain.RawObservation{
					Triplet:     triplet,
					LocalTime:   t,
					ElementCode: el.StationElement.ElementCode,
					Value:       v.Value,
				})
			}
		}
	}
	return out, nil
}

// mapMetadata converts station records. Stations without a time zone are
// skipped with a warning; their observations then fail to join.
func (c *Client) mapMetadata(resp []stationInfo) ([]domain.StationMeta, error) {
	out := make([]domain.StationMeta, 0, len(resp))
	for _, st := range resp {
		triplet, err := domain.ParseTriplet(st.StationTriplet)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
		}
		if st.DataTimeZone == nil {
			c.logger.Warn("station has no data time zone, skipping", "triplet", st.StationTriplet)
			continue
		}
		out = append(out, domain.StationMeta{
			Triplet:        triplet,
			UTCOffsetHours: int(math.Round(*st.DataTimeZone)),
			PublishID:      strings.TrimSpace(st.ShefID),
		})
	}
	return out, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q", s)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// AWDB API response types.

type stationData struct {
	StationTriplet string        `json:"stationTriplet"`
	Data           []elementData `json:"data"`
}

type elementData struct {
	StationElement struct {
		ElementCode string `json:"elementCode"`
	} `json:"stationElement"`
	Values []value `json:"values"`
}

type value struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

type stationInfo struct {
	StationTriplet string   `json:"stationTriplet"`
	DataTimeZone   *float64 `json:"dataTimeZone"`
	ShefID         string   `json:"shefId"`
}
