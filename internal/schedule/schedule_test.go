package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 7 января 2024 - воскресенье
var sunday = time.Date(2024, time.January, 7, 0, 0, 0, 0, time.UTC)

func at(minuteOfWeek int) time.Time {
	return sunday.Add(time.Duration(minuteOfWeek) * time.Minute)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{value: "00:00", want: 0},
		{value: "09:05", want: 545},
		{value: "23:59", want: 1439},
		{value: "24:00", wantErr: true},
		{value: "12:60", wantErr: true},
		{value: "9:05", wantErr: true},
		{value: "09-05", wantErr: true},
		{value: "ab:cd", wantErr: true},
		{value: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParseClock(tt.value)
			if tt.wantErr {
				var vErr *ValidationError
				assert.True(t, errors.As(err, &vErr), "expected ValidationError, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name    string
		days    []int
		start   string
		end     string
		offset  int
		want    Schedule
		wantErr bool
	}{
		{
			name:  "utc sunday morning",
			days:  []int{0},
			start: "00:00", end: "02:00",
			want: Schedule{{Start: 0, Duration: 120}},
		},
		{
			name:  "local ahead of utc keeps monday",
			days:  []int{1},
			start: "22:00", end: "23:30", offset: -180,
			want: Schedule{{Start: 2580, Duration: 90}},
		},
		{
			name:  "local behind utc shifts to tuesday",
			days:  []int{1},
			start: "22:00", end: "23:30", offset: 180,
			want: Schedule{{Start: 2*MinutesPerDay + 60, Duration: 90}},
		},
		{
			name:  "sunday early morning ahead of utc wraps to saturday",
			days:  []int{0},
			start: "01:00", end: "03:00", offset: -180,
			want: Schedule{{Start: MinutesPerWeek - 120, Duration: 120}},
		},
		{
			name:  "crosses local midnight",
			days:  []int{6},
			start: "23:00", end: "01:00",
			want: Schedule{{Start: 6*MinutesPerDay + 23*60, Duration: 120}},
		},
		{
			name:  "keeps selection order",
			days:  []int{3, 1},
			start: "10:00", end: "11:00",
			want: Schedule{{Start: 3*MinutesPerDay + 600, Duration: 60}, {Start: MinutesPerDay + 600, Duration: 60}},
		},
		{name: "zero length", days: []int{2}, start: "10:00", end: "10:00", wantErr: true},
		{name: "bad start", days: []int{2}, start: "1000", end: "11:00", wantErr: true},
		{name: "bad end", days: []int{2}, start: "10:00", end: "25:00", wantErr: true},
		{name: "no days", days: nil, start: "10:00", end: "11:00", wantErr: true},
		{name: "weekday out of range", days: []int{7}, start: "10:00", end: "11:00", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.days, tt.start, tt.end, tt.offset)
			if tt.wantErr {
				var vErr *ValidationError
				require.Error(t, err)
				assert.True(t, errors.As(err, &vErr))
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeBounds(t *testing.T) {
	var clocks []string
	for h := 0; h < 24; h++ {
		clocks = append(clocks, fmt.Sprintf("%02d:00", h), fmt.Sprintf("%02d:30", h))
	}
	days := []int{0, 1, 2, 3, 4, 5, 6}

	for offset := -840; offset <= 840; offset += 60 {
		for _, start := range clocks {
			for _, end := range clocks {
				s, err := Encode(days, start, end, offset)
				if start == end {
					require.Error(t, err)
					continue
				}
				require.NoError(t, err)
				require.Len(t, s, len(days))
				for _, tuple := range s {
					if tuple.Start < 0 || tuple.Start >= MinutesPerWeek || tuple.Duration <= 0 || tuple.Duration > MinutesPerWeek {
						t.Fatalf("out of bounds tuple %+v for %s-%s offset %d", tuple, start, end, offset)
					}
				}
				require.NoError(t, s.Validate())
			}
		}
	}
}

func TestEvaluate(t *testing.T) {
	courseStart := sunday.AddDate(0, 0, -7)
	courseEnd := sunday.AddDate(0, 1, 0)

	tests := []struct {
		name      string
		schedule  Schedule
		now       time.Time
		wantMatch bool
		want      Tuple
	}{
		{
			name:      "inside sunday meeting",
			schedule:  Schedule{{Start: 0, Duration: 120}},
			now:       at(60),
			wantMatch: true,
			want:      Tuple{Start: 0, Duration: 120},
		},
		{
			name:     "after sunday meeting",
			schedule: Schedule{{Start: 0, Duration: 120}},
			now:      at(180),
		},
		{
			name:      "end minute is inclusive",
			schedule:  Schedule{{Start: 0, Duration: 120}},
			now:       at(120),
			wantMatch: true,
			want:      Tuple{Start: 0, Duration: 120},
		},
		{
			name:      "wrap branch after week boundary",
			schedule:  Schedule{{Start: 10000, Duration: 200}},
			now:       at(50),
			wantMatch: true,
			want:      Tuple{Start: 10000, Duration: 200},
		},
		{
			name:      "wrap branch before week boundary",
			schedule:  Schedule{{Start: 10000, Duration: 200}},
			now:       at(10050),
			wantMatch: true,
			want:      Tuple{Start: 10000, Duration: 200},
		},
		{
			name:     "wrapping tuple outside",
			schedule: Schedule{{Start: 10000, Duration: 200}},
			now:      at(9000),
		},
		{
			name:      "first match wins",
			schedule:  Schedule{{Start: 600, Duration: 60}, {Start: 620, Duration: 120}},
			now:       at(630),
			wantMatch: true,
			want:      Tuple{Start: 600, Duration: 60},
		},
		{
			name:      "malformed tuples are skipped",
			schedule:  Schedule{{Start: 600, Duration: 0}, {Start: 600, Duration: -5}, {Start: 590, Duration: 30}},
			now:       at(600),
			wantMatch: true,
			want:      Tuple{Start: 590, Duration: 30},
		},
		{
			name:     "only malformed tuples",
			schedule: Schedule{{Start: 600, Duration: 0}},
			now:      at(600),
		},
		{
			name:     "empty schedule",
			schedule: nil,
			now:      at(600),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Evaluate(tt.schedule, courseStart, courseEnd, tt.now)
			assert.Equal(t, tt.wantMatch, ok)
			if tt.wantMatch {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestEvaluateCourseRange(t *testing.T) {
	s := Schedule{{Start: 0, Duration: MinutesPerWeek}}
	start := at(60)
	end := at(MinutesPerDay)

	_, ok := Evaluate(s, start, end, start.Add(-time.Minute))
	assert.False(t, ok, "before course start")

	_, ok = Evaluate(s, start, end, start)
	assert.True(t, ok, "start is inclusive")

	_, ok = Evaluate(s, start, end, end.Add(-time.Second))
	assert.True(t, ok, "just before end")

	_, ok = Evaluate(s, start, end, end)
	assert.False(t, ok, "end is exclusive")

	_, ok = Evaluate(s, end, start, start)
	assert.False(t, ok, "inverted range never matches")
}

func TestEvaluateIsDeterministic(t *testing.T) {
	s := Schedule{{Start: 10000, Duration: 200}, {Start: 0, Duration: 120}}
	start := sunday.AddDate(0, 0, -14)
	end := sunday.AddDate(0, 0, 14)

	for minute := 0; minute < MinutesPerWeek; minute += 7 {
		now := at(minute)
		first, firstOK := Evaluate(s, start, end, now)
		second, secondOK := Evaluate(s, start, end, now)
		require.Equal(t, firstOK, secondOK)
		require.Equal(t, first, second)
	}
}

func TestEvaluateNonUTCInstant(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	s := Schedule{{Start: 0, Duration: 120}}

	// 03:30 по Москве в воскресенье = 00:30 UTC
	now := time.Date(2024, time.January, 7, 3, 30, 0, 0, moscow)
	_, ok := Evaluate(s, sunday.AddDate(0, 0, -1), sunday.AddDate(0, 0, 1), now)
	assert.True(t, ok)
}

func TestSlotStart(t *testing.T) {
	tuple := Tuple{Start: 2580, Duration: 90}
	want := at(2580)

	for _, now := range []time.Time{
		sunday,
		at(1),
		at(2600),
		at(MinutesPerWeek - 1),
		sunday.Add(7*24*time.Hour - time.Nanosecond),
	} {
		assert.True(t, want.Equal(SlotStart(tuple, now)), "now=%s", now)
	}

	next := SlotStart(tuple, sunday.AddDate(0, 0, 7))
	assert.Equal(t, 7*24*time.Hour, next.Sub(want))

	prev := SlotStart(tuple, sunday.Add(-time.Second))
	assert.Equal(t, 7*24*time.Hour, want.Sub(prev))
}

func TestWeekStart(t *testing.T) {
	wednesday := time.Date(2024, time.January, 10, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, sunday, WeekStart(wednesday))

	// воскресенье в UTC+3, но ещё суббота в UTC
	local := time.Date(2024, time.January, 7, 1, 0, 0, 0, time.FixedZone("MSK", 3*60*60))
	assert.Equal(t, sunday.AddDate(0, 0, -7), WeekStart(local))
}

func TestScheduleJSON(t *testing.T) {
	s := Schedule{{Start: 2580, Duration: 90}, {Start: 10000, Duration: 200}}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `[[2580,90],[10000,200]]`, string(data))

	var decoded Schedule
	require.NoError(t, json.Unmarshal([]byte(`[[0,120]]`), &decoded))
	assert.Equal(t, Schedule{{Start: 0, Duration: 120}}, decoded)

	assert.Error(t, json.Unmarshal([]byte(`[{"start":1}]`), &decoded))
}

func TestScheduleValidate(t *testing.T) {
	assert.NoError(t, Schedule{{Start: 0, Duration: 1}}.Validate())
	assert.Error(t, Schedule{}.Validate())
	assert.Error(t, Schedule{{Start: MinutesPerWeek, Duration: 10}}.Validate())
	assert.Error(t, Schedule{{Start: 10, Duration: 0}}.Validate())
}
