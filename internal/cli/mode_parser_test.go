package cli

import "testing"

func TestParseMode(t *testing.T) {
	cases := []struct {
		name     string
		args     []string
		wantMode string
		wantRest int
		wantErr  bool
	}{
		{"mode flag", []string{"--mode=api-server", "--port=8080"}, ModeAPI, 1, false},
		{"mode alias", []string{"--mode=api"}, ModeAPI, 0, false},
		{"subcommand", []string{"kitchen-worker"}, ModeWorker, 0, false},
		{"subcommand alias", []string{"worker", "--config=x.yaml"}, ModeWorker, 1, false},
		{"no mode", []string{"--port=8080"}, "", 1, false},
		{"unknown mode", []string{"--mode=bartender"}, "", 0, true},
	}
	for _, tc := range cases {
		mode, rest, err := ParseMode(tc.args)
		if tc.wantErr != (err != nil) {
			t.Errorf("%s: err = %v", tc.name, err)
			continue
		}
		if mode != tc.wantMode {
			t.Errorf("%s: mode = %q, want %q", tc.name, mode, tc.wantMode)
		}
		if len(rest) != tc.wantRest {
			t.Errorf("%s: rest = %v, want %d args", tc.name, rest, tc.wantRest)
		}
	}
}
