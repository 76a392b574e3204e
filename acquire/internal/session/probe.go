package session

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hazyhaar/docfetch/acquire/internal/portal"
)

// State is the outcome of an authentication probe.
type State int

const (
	Indeterminate State = iota
	Authenticated
	NotAuthenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case NotAuthenticated:
		return "not_authenticated"
	default:
		return "indeterminate"
	}
}

// Signals are the independent observations a probe is built from.
type Signals struct {
	Greeting      bool // personalised marker present
	LoginSurface  bool // login surface marker present
	PasswordInput bool // a password field is rendered
	FailureMarker bool // explicit login failure message
}

// Observe extracts Signals from rendered markup.
func Observe(html string, m *portal.Markup) Signals {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Signals{}
	}
	text := doc.Find("body").Text()
	return Signals{
		Greeting:      containsAny(text, m.GreetingMarkers),
		LoginSurface:  containsAny(text, m.LoginMarkers),
		PasswordInput: doc.Find(m.SecretInput).Length() > 0,
		FailureMarker: containsAny(text, m.FailureMarkers),
	}
}

// State combines the signals. Authenticated needs two positive signals
// and no negative one; NotAuthenticated needs a negative signal and no
// greeting. Anything else is Indeterminate.
func (s Signals) State() State {
	positive := 0
	if s.Greeting {
		positive++
	}
	if !s.LoginSurface {
		positive++
	}
	negative := s.PasswordInput || s.FailureMarker || s.LoginSurface

	switch {
	case positive >= 2 && !negative:
		return Authenticated
	case negative && !s.Greeting:
		return NotAuthenticated
	default:
		return Indeterminate
	}
}

// Probe classifies rendered markup.
func Probe(html string, m *portal.Markup) State {
	return Observe(html, m).State()
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(text, m) {
			return true
		}
	}
	return false
}
