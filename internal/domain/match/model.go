package match

import (
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// View is one logical slice of match data served by the remote API.
type View string

const (
	ViewFixtures  View = "fixtures"
	ViewResults   View = "results"
	ViewOnTV      View = "onTv"
	ViewPredictor View = "predictor"
)

// AllViews lists every view in fetch order.
var AllViews = []View{ViewFixtures, ViewResults, ViewOnTV, ViewPredictor}

func ParseView(value string) (View, bool) {
	candidate := View(strings.TrimSpace(value))
	for _, view := range AllViews {
		if view == candidate {
			return view, true
		}
	}
	return "", false
}

func (v View) String() string {
	return string(v)
}

const (
	LabelFullTime       = "FT"
	LabelAfterExtraTime = "AET"
	LabelHalfTime       = "HT"

	CompetitionFinal = "Final"
)

type PredictorStatus string

const (
	PredictorNotStarted PredictorStatus = ""
	PredictorInPlay     PredictorStatus = "inPlay"
	PredictorFinished   PredictorStatus = "finished"
)

type TeamNames struct {
	DisplayName string `json:"displayName"`
	ShortName   string `json:"shortName,omitempty"`
}

type Team struct {
	Names  TeamNames `json:"names"`
	Rating float64   `json:"rating"`
	Score  int       `json:"score"`
}

type ChannelInfo struct {
	Name      string `json:"name,omitempty"`
	ShortName string `json:"shortName,omitempty"`
	Logo      string `json:"logo,omitempty"`
}

type TVInfo struct {
	ChannelInfo *ChannelInfo `json:"channelInfo,omitempty"`
}

type Competition struct {
	Name       string `json:"name"`
	SubHeading string `json:"subHeading,omitempty"`
	Weight     int    `json:"weight,omitempty"`
}

// Record is one fixture or result as returned by the remote API. Predictor
// simulations reuse the same shape with PredictorMatchStatus and Time set.
type Record struct {
	ID                   string          `json:"id"`
	Date                 string          `json:"date"`
	KickOffTime          string          `json:"kickOffTime,omitempty"`
	DateTimeUTC          time.Time       `json:"dateTimeUtc"`
	HomeTeam             Team            `json:"homeTeam"`
	AwayTeam             Team            `json:"awayTeam"`
	TimeLabel            string          `json:"timeLabel,omitempty"`
	Started              bool            `json:"started"`
	Finished             bool            `json:"finished"`
	TVInfo               *TVInfo         `json:"tvInfo,omitempty"`
	Competition          Competition     `json:"competition"`
	StatusMessages       []string        `json:"statusMessages,omitempty"`
	PredictorMatchStatus PredictorStatus `json:"predictorMatchStatus,omitempty"`
	Time                 int             `json:"time,omitempty"`
}

// UnmarshalJSON accepts a missing, null, empty or malformed dateTimeUtc. Such
// a record decodes with a zero DateTimeUTC so one bad row cannot fail a view.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	aux := struct {
		*plain
		DateTimeUTC any `json:"dateTimeUtc"`
	}{plain: (*plain)(r)}
	if err := sonic.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.DateTimeUTC = parseTimestamp(aux.DateTimeUTC)
	return nil
}

func parseTimestamp(value any) time.Time {
	raw, ok := value.(string)
	if !ok {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}

// Clone returns a deep copy sharing no slices or pointers with r.
func (r Record) Clone() Record {
	out := r
	if r.StatusMessages != nil {
		out.StatusMessages = append([]string(nil), r.StatusMessages...)
	}
	if r.TVInfo != nil {
		tv := *r.TVInfo
		if tv.ChannelInfo != nil {
			channel := *tv.ChannelInfo
			tv.ChannelInfo = &channel
		}
		out.TVInfo = &tv
	}
	return out
}

func CloneAll(items []Record) []Record {
	if items == nil {
		return nil
	}
	out := make([]Record, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

func (r Record) IsLive() bool {
	return IsLiveLabel(r.TimeLabel)
}

// InProgress reports a match the server marks as started but not yet finished.
func (r Record) InProgress() bool {
	return r.Started && !r.Finished
}

func (r Record) HasTVChannel() bool {
	return r.TVInfo != nil && r.TVInfo.ChannelInfo != nil && strings.TrimSpace(r.TVInfo.ChannelInfo.ShortName) != ""
}

// PenaltyTieBreakApplies reports a level score in a final, the only case a
// shoot-out decides.
func (r Record) PenaltyTieBreakApplies() bool {
	return r.HomeTeam.Score == r.AwayTeam.Score && r.Competition.SubHeading == CompetitionFinal
}

// IsLiveLabel is the live discriminator: any label other than full time.
func IsLiveLabel(label string) bool {
	label = strings.TrimSpace(label)
	return label != "" && !IsTerminalLabel(label)
}

func IsTerminalLabel(label string) bool {
	switch strings.TrimSpace(label) {
	case LabelFullTime, LabelAfterExtraTime:
		return true
	default:
		return false
	}
}

// Find returns the record with id, if present.
func Find(items []Record, id string) (Record, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return Record{}, false
}
