package view

import "strings"

// ===============================
// Views
// ===============================

type View string

const (
	Today    View = "today"
	Clients  View = "clients"
	Settings View = "settings"
)

// Default is used for empty or unknown fragments.
const Default = Today

type Config struct {
	View     View
	Label    string
	Title    string
	Subtitle string
}

// Fragment is the URL fragment (without "#") that selects the view.
func (c Config) Fragment() string {
	return string(c.View)
}

// All lists the views in navigation order.
var All = []Config{
	{
		View:     Today,
		Label:    "Today",
		Title:    "Today at a glance",
		Subtitle: "Here's your schedule for today.",
	},
	{
		View:     Clients,
		Label:    "Clients",
		Title:    "Clients",
		Subtitle: "All your customers in one place.",
	},
	{
		View:     Settings,
		Label:    "Settings",
		Title:    "Workspace settings",
		Subtitle: "Update your business details so invoices look professional.",
	},
}

func Lookup(v View) (Config, bool) {
	for _, cfg := range All {
		if cfg.View == v {
			return cfg, true
		}
	}
	return Config{}, false
}

// FromFragment accepts "clients" or "#clients".
func FromFragment(fragment string) View {
	fragment = strings.TrimPrefix(strings.TrimSpace(fragment), "#")
	if cfg, ok := Lookup(View(fragment)); ok {
		return cfg.View
	}
	return Default
}

// ===============================
// Transitions
// ===============================

type EventKind string

const (
	// NavClick comes from a navigation control.
	NavClick EventKind = "nav"
	// FragmentChange comes from the browser (hashchange, back/forward).
	FragmentChange EventKind = "fragment"
)

type Event struct {
	Kind     EventKind
	View     View
	Fragment string
}

// Result is the new state plus the fragment the browser must write, if any.
type Result struct {
	View          View
	WriteFragment string
}

// Transition computes the next view. Fragment changes never ask for a
// rewrite, which keeps hashchange handling from looping.
func Transition(current View, currentFragment string, ev Event) Result {
	switch ev.Kind {
	case NavClick:
		cfg, ok := Lookup(ev.View)
		if !ok {
			return Result{View: current}
		}
		res := Result{View: cfg.View}
		if strings.TrimPrefix(currentFragment, "#") != cfg.Fragment() {
			res.WriteFragment = cfg.Fragment()
		}
		return res

	case FragmentChange:
		return Result{View: FromFragment(ev.Fragment)}
	}

	return Result{View: current}
}
