package version

import (
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestDefaultVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestColored(t *testing.T) {
	saved := color.NoColor
	t.Cleanup(func() { color.NoColor = saved })

	color.NoColor = true
	for _, v := range []string{"0.1.0-dev", "1.2.3", "1.2.3-rc.1+build.123", "dev", "1.2"} {
		if got := Colored(v); got != v {
			t.Errorf("Colored(%q) without color = %q", v, got)
		}
	}

	if os.Getenv("NO_COLOR") != "" {
		t.Skip("NO_COLOR is set")
	}
	color.NoColor = false
	got := Colored("1.2.3-dev")
	for _, part := range []string{"\x1b[33;1m1", "\x1b[32;1m2", "\x1b[34;1m3"} {
		if !strings.Contains(got, part) {
			t.Errorf("Colored = %q, missing %q", got, part)
		}
	}
	if !strings.HasSuffix(got, "m-dev") {
		t.Errorf("Colored = %q, suffix not plain", got)
	}
}
