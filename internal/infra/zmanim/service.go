package zmanim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"tefillin-reminder-bot/internal/config"
	"tefillin-reminder-bot/internal/domain/model"
)

// Holiday categories on which reminders are suppressed (no tefillin is laid).
var skipCategories = map[string]struct{}{
	"major":       {},
	"modern":      {},
	"roshchodesh": {},
}

// Approximate sunset wall-clock times for Israel, one per month. Used when
// the external zmanim service is unavailable so SunsetTime stays total.
var approxSunsets = [13]struct{ hour, min int }{
	1:  {17, 0},
	2:  {17, 30},
	3:  {18, 0},
	4:  {18, 30},
	5:  {19, 0},
	6:  {19, 30},
	7:  {19, 30},
	8:  {19, 0},
	9:  {18, 30},
	10: {18, 0},
	11: {17, 30},
	12: {17, 0},
}

type sunsetEntry struct {
	sunset      time.Time // full local instant on the keyed date
	retrievedAt time.Time
}

// Service resolves sunset times and Sabbath/holiday status for calendar
// dates at a fixed deployment geolocation. Successful external lookups are
// cached per date; failures degrade to local approximations and are never
// propagated to callers.
type Service struct {
	cfg  config.ZmanimConfig
	loc  *time.Location
	http *http.Client
	log  *zerolog.Logger

	sunsets  *dateCache[sunsetEntry]
	holidays *dateCache[bool]
}

func NewService(cfg config.ZmanimConfig, logger *zerolog.Logger) (*Service, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	compLog := logger.With().Str("component", "zmanim").Logger()
	return &Service{
		cfg:      cfg,
		loc:      loc,
		http:     &http.Client{Timeout: cfg.Timeout},
		log:      &compLog,
		sunsets:  newDateCache[sunsetEntry](),
		holidays: newDateCache[bool](),
	}, nil
}

// Location returns the single configured deployment zone.
func (s *Service) Location() *time.Location { return s.loc }

// SunsetTime returns the local sunset instant for date's calendar day.
// It is total: on any external failure it falls back to the month table.
// Approximated values are not cached so the next call retries the service.
func (s *Service) SunsetTime(ctx context.Context, date time.Time) time.Time {
	day := model.DateKey(date.In(s.loc))
	if e, ok := s.sunsets.get(day); ok {
		return e.sunset
	}

	sunset, err := s.querySunset(ctx, day)
	if err != nil {
		s.log.Error().Err(err).Str("date", day).Msg("sunset lookup failed, using approximation")
		return s.approximateSunset(date)
	}
	s.sunsets.put(day, sunsetEntry{sunset: sunset, retrievedAt: time.Now()})
	return sunset
}

func (s *Service) querySunset(ctx context.Context, day string) (time.Time, error) {
	q := url.Values{}
	q.Set("cfg", "json")
	q.Set("geonameid", s.cfg.GeonameID)
	q.Set("date", day)

	var payload struct {
		Times struct {
			Sunset string `json:"sunset"`
		} `json:"times"`
	}
	if err := s.getJSON(ctx, "/zmanim", q, &payload); err != nil {
		return time.Time{}, err
	}
	if payload.Times.Sunset == "" {
		return time.Time{}, fmt.Errorf("zmanim response for %s has no sunset", day)
	}
	t, err := time.Parse(time.RFC3339, payload.Times.Sunset)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse sunset %q: %w", payload.Times.Sunset, err)
	}
	return t.In(s.loc), nil
}

func (s *Service) approximateSunset(date time.Time) time.Time {
	d := date.In(s.loc)
	approx := approxSunsets[int(d.Month())]
	return time.Date(d.Year(), d.Month(), d.Day(), approx.hour, approx.min, 0, 0, s.loc)
}

// IsHolidayOrShabbat reports whether reminders are suppressed on date's day.
// Saturday is always true regardless of external availability. Holiday
// lookups that fail are treated as not-a-holiday (fail open toward sending)
// and are not cached.
func (s *Service) IsHolidayOrShabbat(ctx context.Context, date time.Time) bool {
	d := date.In(s.loc)
	if d.Weekday() == time.Saturday {
		return true
	}

	day := model.DateKey(d)
	if v, ok := s.holidays.get(day); ok {
		return v
	}

	isHoliday, err := s.queryHoliday(ctx, d.Year(), day)
	if err != nil {
		s.log.Error().Err(err).Str("date", day).Msg("holiday lookup failed, assuming regular day")
		return false
	}
	s.holidays.put(day, isHoliday)
	return isHoliday
}

func (s *Service) queryHoliday(ctx context.Context, year int, day string) (bool, error) {
	q := url.Values{}
	q.Set("v", "1")
	q.Set("cfg", "json")
	q.Set("maj", "on")
	q.Set("min", "on")
	q.Set("mod", "on")
	q.Set("nx", "on")
	q.Set("year", strconv.Itoa(year))
	q.Set("month", "x")

	var payload struct {
		Items []struct {
			Date     string `json:"date"`
			Category string `json:"category"`
		} `json:"items"`
	}
	if err := s.getJSON(ctx, "/hebcal", q, &payload); err != nil {
		return false, err
	}
	for _, it := range payload.Items {
		if it.Date != day {
			continue
		}
		if _, skip := skipCategories[it.Category]; skip {
			return true, nil
		}
	}
	return false, nil
}

// NextRegularWeekday scans forward from date for the first day that is
// neither Shabbat nor a holiday, bounded at 10 days. Past the bound it
// returns the 10th day as a degenerate fallback.
func (s *Service) NextRegularWeekday(ctx context.Context, date time.Time) time.Time {
	next := date.AddDate(0, 0, 1)
	for i := 0; i < 10; i++ {
		if !s.IsHolidayOrShabbat(ctx, next) {
			return next
		}
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Refresh eagerly populates the sunset cache for the next 7 days and evicts
// entries (sunset and holiday) older than 7 days before date. Idempotent;
// meant to run once a day.
func (s *Service) Refresh(ctx context.Context, date time.Time) {
	for i := 0; i < 7; i++ {
		s.SunsetTime(ctx, date.AddDate(0, 0, i))
	}

	cutoff := model.DateKey(date.In(s.loc).AddDate(0, 0, -7))
	evicted := s.sunsets.evictBefore(cutoff) + s.holidays.evictBefore(cutoff)
	s.log.Info().
		Str("date", model.DateKey(date)).
		Int("evicted", evicted).
		Int("cached_sunsets", s.sunsets.len()).
		Msg("zmanim cache refreshed")
}

func (s *Service) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	u := s.cfg.BaseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
