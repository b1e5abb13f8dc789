package match

// Counts feeds the badge numbers shown on the tabs.
type Counts struct {
	Now       int `json:"now"`
	Today     int `json:"today"`
	NowOnTV   int `json:"nowOnTv"`
	TodayOnTV int `json:"todayOnTv"`
}

// ComputeCounts derives badge counts from the fixtures view. today is a
// calendar date in the same "2006-01-02" layout as Record.Date.
func ComputeCounts(fixtures []Record, today string) Counts {
	var out Counts
	for _, item := range fixtures {
		live := item.IsLive()
		onTV := item.HasTVChannel()
		if live {
			out.Now++
			if onTV {
				out.NowOnTV++
			}
		}
		if item.Date == today && (live || item.KickOffTime != "") {
			out.Today++
			if onTV {
				out.TodayOnTV++
			}
		}
	}
	return out
}
