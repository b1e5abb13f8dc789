package match

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
)

func TestIsLiveLabel(t *testing.T) {
	cases := map[string]bool{
		"":     false,
		"FT":   false,
		"AET":  false,
		"HT":   true,
		"1'":   true,
		"90+3": true,
		" FT ": false,
	}
	for label, want := range cases {
		if got := IsLiveLabel(label); got != want {
			t.Fatalf("IsLiveLabel(%q) got=%v want=%v", label, got, want)
		}
	}
}

func TestRecord_CloneSharesNothing(t *testing.T) {
	original := Record{
		ID:             "m1",
		StatusMessages: []string{"Sky Sports"},
		TVInfo:         &TVInfo{ChannelInfo: &ChannelInfo{ShortName: "SKY"}},
	}

	clone := original.Clone()
	clone.StatusMessages[0] = "changed"
	clone.TVInfo.ChannelInfo.ShortName = "BBC"
	clone.HomeTeam.Score = 3

	if original.StatusMessages[0] != "Sky Sports" {
		t.Fatalf("status messages shared with clone")
	}
	if original.TVInfo.ChannelInfo.ShortName != "SKY" {
		t.Fatalf("channel info shared with clone")
	}
	if original.HomeTeam.Score != 0 {
		t.Fatalf("team shared with clone")
	}
}

func TestParseView(t *testing.T) {
	if view, ok := ParseView(" onTv "); !ok || view != ViewOnTV {
		t.Fatalf("expected onTv, got=%q ok=%v", view, ok)
	}
	if _, ok := ParseView("live"); ok {
		t.Fatalf("expected unknown view to be rejected")
	}
}

func TestRecord_UnmarshalToleratesBadKickoffTimes(t *testing.T) {
	payload := `[
		{"id":"ok","dateTimeUtc":"2026-10-17T19:00:00+02:00","homeTeam":{"names":{"displayName":"Home"},"score":2}},
		{"id":"empty","dateTimeUtc":""},
		{"id":"null","dateTimeUtc":null},
		{"id":"garbage","dateTimeUtc":"tomorrow"},
		{"id":"number","dateTimeUtc":1760727600},
		{"id":"missing","timeLabel":"HT"}
	]`

	var records []Record
	if err := sonic.UnmarshalString(payload, &records); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("expected 6 records, got %d", len(records))
	}

	want := time.Date(2026, 10, 17, 17, 0, 0, 0, time.UTC)
	if !records[0].DateTimeUTC.Equal(want) || records[0].DateTimeUTC.Location() != time.UTC {
		t.Fatalf("unexpected kickoff %v", records[0].DateTimeUTC)
	}
	if records[0].HomeTeam.Names.DisplayName != "Home" || records[0].HomeTeam.Score != 2 {
		t.Fatalf("other fields not decoded: %+v", records[0].HomeTeam)
	}
	for _, item := range records[1:] {
		if !item.DateTimeUTC.IsZero() {
			t.Fatalf("record %s: expected zero kickoff, got %v", item.ID, item.DateTimeUTC)
		}
	}
	if records[5].TimeLabel != "HT" {
		t.Fatalf("expected timeLabel decoded, got %q", records[5].TimeLabel)
	}
}

func TestRecord_MarshalRoundTripKeepsKickoff(t *testing.T) {
	in := Record{ID: "m1", DateTimeUTC: time.Date(2026, 10, 17, 19, 0, 0, 0, time.UTC)}
	raw, err := sonic.Marshal(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var out Record
	if err := sonic.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ID != "m1" || !out.DateTimeUTC.Equal(in.DateTimeUTC) {
		t.Fatalf("unexpected record %+v", out)
	}
}

func TestRecord_PenaltyTieBreakApplies(t *testing.T) {
	final := Record{Competition: Competition{SubHeading: CompetitionFinal}}
	if !final.PenaltyTieBreakApplies() {
		t.Fatalf("level final must go to penalties")
	}
	final.HomeTeam.Score = 1
	if final.PenaltyTieBreakApplies() {
		t.Fatalf("decided final must not go to penalties")
	}
	if (Record{Competition: Competition{SubHeading: "Semi-final"}}).PenaltyTieBreakApplies() {
		t.Fatalf("only finals go to penalties")
	}
}
