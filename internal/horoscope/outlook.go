package horoscope

// Outlook is the aggregate tone of a forecast.
type Outlook string

const (
	OutlookNeutral     Outlook = "neutral"
	OutlookFavorable   Outlook = "favorable"
	OutlookChallenging Outlook = "challenging"
	OutlookMixed       Outlook = "mixed"
)

// OutlookTracker accumulates influence tones with monotonic transitions:
// neutral moves to favorable or challenging on the first influence of that
// tone, and to mixed once both tones have fired. It never moves back.
type OutlookTracker struct {
	favorable   bool
	challenging bool
}

// NoteFavorable records a favorable influence.
func (t *OutlookTracker) NoteFavorable() {
	t.favorable = true
}

// NoteChallenging records a challenging influence.
func (t *OutlookTracker) NoteChallenging() {
	t.challenging = true
}

// Current resolves the accumulated tones into an outlook.
func (t *OutlookTracker) Current() Outlook {
	switch {
	case t.favorable && t.challenging:
		return OutlookMixed
	case t.favorable:
		return OutlookFavorable
	case t.challenging:
		return OutlookChallenging
	default:
		return OutlookNeutral
	}
}
