package dashboard

import (
	"time"

	"github.com/rileyhilliard/kpiwatch/internal/kpi"
)

// chartMsg replaces the chart for one category.
type chartMsg struct {
	spec kpi.ChartSpec
}

// tableMsg replaces the table rows.
type tableMsg struct {
	rows []kpi.MetricRow
}

// notifyMsg adds a toast.
type notifyMsg struct {
	n kpi.Notification
}

// busyMsg toggles the refresh indicator.
type busyMsg struct {
	busy bool
}

// overlayMsg shows or hides the login overlay.
type overlayMsg struct {
	show     bool
	loginURL string
}

// updatedMsg records where the data on screen came from.
type updatedMsg struct {
	source kpi.Source
	at     time.Time
}

// resetMsg clears everything except toasts.
type resetMsg struct{}

// toastExpiredMsg removes the toast with the given id.
type toastExpiredMsg struct {
	id int
}

// clockTickMsg refreshes relative timestamps in the header.
type clockTickMsg time.Time

// actionDoneMsg reports the result of a key-triggered session action.
type actionDoneMsg struct {
	action string
	ran    bool
	err    error
}
