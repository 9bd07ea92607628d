package cli

import (
	"os"
	"testing"

	"github.com/rileyhilliard/kpiwatch/internal/ui"
)

func TestMain(m *testing.M) {
	ui.DisableColors()
	os.Exit(m.Run())
}
