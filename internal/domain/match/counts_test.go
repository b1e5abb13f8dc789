package match

import "testing"

func tvInfo(shortName string) *TVInfo {
	return &TVInfo{ChannelInfo: &ChannelInfo{Name: shortName + " HD", ShortName: shortName}}
}

func TestComputeCounts(t *testing.T) {
	const today = "2026-10-17"

	tests := []struct {
		name     string
		fixtures []Record
		want     Counts
	}{
		{
			name: "one live match today on tv",
			fixtures: []Record{
				{ID: "m1", Date: today, TimeLabel: "45'", TVInfo: tvInfo("SKY")},
			},
			want: Counts{Now: 1, Today: 1, NowOnTV: 1, TodayOnTV: 1},
		},
		{
			name: "finished matches are not live",
			fixtures: []Record{
				{ID: "m1", Date: today, TimeLabel: "FT", TVInfo: tvInfo("SKY")},
				{ID: "m2", Date: today, TimeLabel: "AET"},
			},
			want: Counts{},
		},
		{
			name: "upcoming today with kickoff time",
			fixtures: []Record{
				{ID: "m1", Date: today, KickOffTime: "20:00", TVInfo: tvInfo("BBC")},
				{ID: "m2", Date: today, KickOffTime: "17:30"},
				{ID: "m3", Date: "2026-10-18", KickOffTime: "15:00", TVInfo: tvInfo("BBC")},
			},
			want: Counts{Today: 2, TodayOnTV: 1},
		},
		{
			name: "live yesterday counts as now only",
			fixtures: []Record{
				{ID: "m1", Date: "2026-10-16", TimeLabel: "HT", TVInfo: tvInfo("TNT")},
			},
			want: Counts{Now: 1, NowOnTV: 1},
		},
		{
			name: "tv info without short name is ignored",
			fixtures: []Record{
				{ID: "m1", Date: today, TimeLabel: "12'", TVInfo: &TVInfo{ChannelInfo: &ChannelInfo{Name: "Local"}}},
			},
			want: Counts{Now: 1, Today: 1},
		},
		{
			name: "empty fixtures",
			want: Counts{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeCounts(tc.fixtures, today)
			if got != tc.want {
				t.Fatalf("unexpected counts: got=%+v want=%+v", got, tc.want)
			}
		})
	}
}
