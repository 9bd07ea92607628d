// Package cli implements the kpi command-line interface.
//
// Commands are cobra.Command values registered on rootCmd from init
// functions. Each RunE is a thin shell that parses flags, loads config and
// hands off to a function taking an io.Writer, so the behavior can be
// tested without a terminal.
//
//	kpi [dashboard]        Live terminal dashboard (default)
//	kpi fetch              One-shot fetch of /api/kpi-data
//	kpi check-login        Print login status
//	kpi login / logout     Browser login handshake, server-side logout
//	kpi init               Create .kpi.yaml
//	kpi config set         Edit one key of .kpi.yaml in place
//	kpi demo-server        Local fixture server for both endpoints
//
// Global flags (--config, --verbose, --no-color) live on the root command.
// Commands that support --json wrap their output in JSONEnvelope.
package cli
