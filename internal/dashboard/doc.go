// Package dashboard is the Bubble Tea front end for a KPI session.
//
// A Bridge implements kpi.View by forwarding every call to the running
// program as a message, so the session's goroutines never touch model
// state directly. The Model keeps the latest chart per category, the
// metrics table (with sort, search and pagination), transient toasts, and
// the login overlay.
//
// When stdout is not a terminal, Run falls back to a PlainView that writes
// one line per update.
package dashboard
