package preference

import "strings"

// Preferences are the user's followed competitions/teams plus notification and
// predictor settings.
type Preferences struct {
	Notifications      Notifications `json:"notifications"`
	Predictor          Predictor     `json:"predictor"`
	Competitions       []string      `json:"competitions,omitempty" validate:"omitempty,dive,required,max=128"`
	ClubTeams          []string      `json:"clubTeams,omitempty" validate:"omitempty,dive,required,max=128"`
	InternationalTeams []string      `json:"internationalTeams,omitempty" validate:"omitempty,dive,required,max=128"`
	LastUpdated        string        `json:"lastUpdated,omitempty"`
}

type NotificationOptions struct {
	ScoreUpdates bool `json:"score_updates"`
	FullTime     bool `json:"full_time"`
	HalfTime     bool `json:"half_time"`
	KickOff      bool `json:"kick_off"`
}

type Notifications struct {
	Options NotificationOptions `json:"options"`
	Speed   string              `json:"speed,omitempty" validate:"omitempty,oneof=slow medium fast"`
}

type Predictor struct {
	Notifications Notifications `json:"notifications"`
	Speed         string        `json:"speed,omitempty" validate:"omitempty,oneof=slow medium fast"`
}

// Device identifies this installation towards the remote API.
type Device struct {
	ID          string `json:"id"`
	Platform    string `json:"platform,omitempty"`
	LastUpdated string `json:"lastUpdated,omitempty"`
}

// Default returns preferences used when nothing has been saved yet. The
// predictor speed is left empty so the engine default applies.
func Default() Preferences {
	return Preferences{
		Notifications: Notifications{
			Options: NotificationOptions{
				ScoreUpdates: true,
				FullTime:     true,
				HalfTime:     true,
				KickOff:      true,
			},
			Speed: "medium",
		},
	}
}

// HasInterests reports whether anything is followed at all.
func (p Preferences) HasInterests() bool {
	return countNonBlank(p.Competitions)+countNonBlank(p.ClubTeams)+countNonBlank(p.InternationalTeams) > 0
}

func countNonBlank(items []string) int {
	count := 0
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			count++
		}
	}
	return count
}
