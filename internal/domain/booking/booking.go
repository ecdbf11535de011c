package booking

import "strings"

const (
	// DefaultClientName is stored when neither a picked nor a typed name is given.
	DefaultClientName = "Client"
	// DefaultServiceLabel is shown for bookings saved without a service.
	DefaultServiceLabel = "Job"
	// PickerPlaceholder is the first, empty option of the client picker.
	PickerPlaceholder = "Select client from list"
	// UnnamedClientLabel labels picker options for clients without a name.
	UnnamedClientLabel = "(No name)"
	// UnsetTimeLabel is shown for bookings without a time.
	UnsetTimeLabel = "--:--"
)

// ResolveClientName applies the picker rules: the typed name wins, then
// the picked client, then DefaultClientName.
func ResolveClientName(typed, picked string) string {
	if name := strings.TrimSpace(typed); name != "" {
		return name
	}
	if picked != "" {
		return picked
	}
	return DefaultClientName
}

// DisplayClient, DisplayService and DisplayTime fill blanks when rendering a booking.
func DisplayClient(name string) string {
	if name == "" {
		return DefaultClientName
	}
	return name
}

func DisplayService(service string) string {
	if service == "" {
		return DefaultServiceLabel
	}
	return service
}

func DisplayTime(clock string) string {
	if clock == "" {
		return UnsetTimeLabel
	}
	return clock
}
