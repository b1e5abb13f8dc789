package usecase

import (
	"testing"
	"time"

	"github.com/riskibarqy/matchcentre/internal/domain/match"
)

func TestComputeNextDelay(t *testing.T) {
	t.Parallel()

	cfg := DefaultRefreshPolicyConfig()
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	present := func(records ...match.Record) match.Snapshot {
		if records == nil {
			records = []match.Record{}
		}
		return match.Snapshot{Records: records, Present: true}
	}

	tests := []struct {
		name string
		in   RefreshInput
		want time.Duration
	}{
		{
			name: "absent data before first fetch",
			in:   RefreshInput{View: match.ViewFixtures, Now: now},
			want: 0,
		},
		{
			name: "error flag returns current backoff",
			in: RefreshInput{
				View:     match.ViewFixtures,
				Snapshot: match.Snapshot{Present: true, HasError: true, Records: []match.Record{{ID: "m1", TimeLabel: "10'"}}},
				Backoff:  15 * time.Second,
				Now:      now,
			},
			want: 15 * time.Second,
		},
		{
			name: "backoff is capped",
			in:   RefreshInput{View: match.ViewOnTV, Snapshot: match.Snapshot{HasError: true}, Backoff: time.Hour, Now: now},
			want: 5 * time.Minute,
		},
		{
			name: "results with match in progress",
			in: RefreshInput{
				View:     match.ViewResults,
				Snapshot: present(match.Record{ID: "r1", Date: "2026-10-17", Started: true, Finished: false}),
				Now:      now,
			},
			want: 5 * time.Second,
		},
		{
			name: "results all finished",
			in: RefreshInput{
				View:     match.ViewResults,
				Snapshot: present(match.Record{ID: "r1", Date: "2026-10-17", Started: true, Finished: true}),
				Now:      now,
			},
			want: time.Hour,
		},
		{
			name: "results watches fixtures in progress",
			in: RefreshInput{
				View:     match.ViewResults,
				Snapshot: present(match.Record{ID: "r1", Started: true, Finished: true}),
				Fixtures: []match.Record{{ID: "f1", Started: true}},
				Now:      now,
			},
			want: 5 * time.Second,
		},
		{
			name: "live fixture",
			in:   RefreshInput{View: match.ViewFixtures, Snapshot: present(match.Record{ID: "m1", TimeLabel: "HT"}), Now: now},
			want: 5 * time.Second,
		},
		{
			name: "live predictor candidate",
			in:   RefreshInput{View: match.ViewPredictor, Snapshot: present(match.Record{ID: "m1", TimeLabel: "12'"}), Now: now},
			want: time.Second,
		},
		{
			name: "idle predictor",
			in:   RefreshInput{View: match.ViewPredictor, Snapshot: present(match.Record{ID: "m1", TimeLabel: "FT"}), Now: now},
			want: 5 * time.Second,
		},
		{
			name: "kickoff far away arrives a minute early",
			in: RefreshInput{
				View: match.ViewFixtures,
				Snapshot: present(
					match.Record{ID: "late", DateTimeUTC: now.Add(3 * time.Hour)},
					match.Record{ID: "next", DateTimeUTC: now.Add(10 * time.Minute)},
				),
				Now: now,
			},
			want: 9 * time.Minute,
		},
		{
			name: "kickoff within lead is due",
			in:   RefreshInput{View: match.ViewOnTV, Snapshot: present(match.Record{ID: "m1", DateTimeUTC: now.Add(30 * time.Second)}), Now: now},
			want: 5 * time.Second,
		},
		{
			name: "kickoff passed but not finished",
			in:   RefreshInput{View: match.ViewFixtures, Snapshot: present(match.Record{ID: "m1", DateTimeUTC: now.Add(-time.Minute)}), Now: now},
			want: 5 * time.Second,
		},
		{
			name: "finished records ignored for kickoff",
			in: RefreshInput{
				View: match.ViewFixtures,
				Snapshot: present(
					match.Record{ID: "m1", DateTimeUTC: now.Add(-2 * time.Hour), TimeLabel: "FT"},
					match.Record{ID: "m2", DateTimeUTC: now.Add(-3 * time.Hour), Finished: true},
				),
				Now: now,
			},
			want: time.Minute,
		},
		{
			name: "empty successful result",
			in:   RefreshInput{View: match.ViewFixtures, Snapshot: present(), Now: now},
			want: time.Minute,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeNextDelay(cfg, tc.in)
			if got != tc.want {
				t.Fatalf("unexpected delay: got=%s want=%s", got, tc.want)
			}
			if again := ComputeNextDelay(cfg, tc.in); again != got {
				t.Fatalf("policy must be deterministic: first=%s second=%s", got, again)
			}
		})
	}
}
