package cli

import (
	"io"
	"strings"
	"testing"
)

func TestUnknownFlag_ShowsHelpAndUsageError(t *testing.T) {
	t.Parallel()
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"generate", "--unknown-flag"})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected error for unknown flag")
	}
	if _, ok := err.(usageError); !ok {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "unknown flag") || !strings.Contains(err.Error(), "Usage:") {
		t.Fatalf("unexpected error text: %v", err)
	}
}

func TestFlagErrors_AreUsageErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		args     []string
		want     string
		wantHelp bool
	}{
		{name: "non-boolean split", args: []string{"generate", "spec.yaml", "--split=maybe"}, want: `invalid argument "maybe"`, wantHelp: true},
		{name: "unknown init flag", args: []string{"init", "--lang", "go"}, want: "unknown flag: --lang", wantHelp: true},
		{name: "unsupported section", args: []string{"generate", "spec.yaml", "--sections", "summary,appendix"}, want: `unsupported section "appendix"`},
		{name: "unsupported locale", args: []string{"generate", "spec.yaml", "--locale", "!!"}, want: "invalid locale"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := NewRootCmd()
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)
			root.SetArgs(tt.args)

			err := root.Execute()
			if ExitCode(err) != 2 {
				t.Fatalf("expected usage error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %v", tt.want, err)
			}
			if tt.wantHelp && !strings.Contains(err.Error(), "Usage:") {
				t.Fatalf("expected help text in %v", err)
			}
		})
	}
}
