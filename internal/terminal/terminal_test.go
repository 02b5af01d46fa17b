package terminal

import "testing"

func TestInfo_Capabilities(t *testing.T) {
	tests := []struct {
		name       string
		info       Info
		color      bool
		fullscreen bool
	}{
		{"interactive", Info{IsTTY: true, StdinTTY: true}, true, true},
		{"piped stdout", Info{StdinTTY: true}, false, false},
		{"no stdin", Info{IsTTY: true}, true, false},
		{"no color", Info{IsTTY: true, StdinTTY: true, NoColor: true}, false, true},
		{"dumb", Info{IsTTY: true, StdinTTY: true, NoColor: true, Dumb: true}, false, false},
		{"flag", Info{IsTTY: true, StdinTTY: true, ForceFlag: true}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.ColorEnabled(); got != tt.color {
				t.Errorf("ColorEnabled() = %v, want %v", got, tt.color)
			}

			if got := tt.info.FullscreenEnabled(); got != tt.fullscreen {
				t.Errorf("FullscreenEnabled() = %v, want %v", got, tt.fullscreen)
			}
		})
	}
}
