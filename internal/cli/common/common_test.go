package common

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gcstr/cardtrack/internal/apperr"
	"github.com/gcstr/cardtrack/internal/ui"
	"github.com/spf13/cobra"
)

// newTestCmd returns a command carrying the global flags, parsed from args.
func newTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "status"}
	RegisterGlobalFlags(cmd)
	cmd.SetContext(context.Background())
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cardtrack.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_FlagsOnlyWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())
	cmd := newTestCmd(t, "--server", "https://cards.example.edu/", "--register", " S123 ")
	cfg, err := LoadConfig(cmd, ui.NoopPrinter{})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.BaseURL != "https://cards.example.edu" || cfg.Student.RegisterNumber != "S123" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadConfig_MissingServerIsInvalid(t *testing.T) {
	chdir(t, t.TempDir())
	cmd := newTestCmd(t)
	_, err := LoadConfig(cmd, ui.NoopPrinter{})
	if !apperr.IsKind(err, apperr.InvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestLoadConfig_ExplicitMissingPathFails(t *testing.T) {
	cmd := newTestCmd(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "--server", "https://x.example")
	if _, err := LoadConfig(cmd, ui.NoopPrinter{}); !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("expected not found for explicit path, got %v", err)
	}
}

func TestLoadConfig_FlagsOverrideFileAndWarnMissingEnv(t *testing.T) {
	path := writeConfig(t, "server:\n  base_url: https://file.example.edu\nstudent:\n  register_number: ${CARDTRACK_TEST_UNSET_REG}\n")
	cmd := newTestCmd(t, "--config", path, "--register", "S777")
	var errOut bytes.Buffer
	pr := ui.StdPrinter{Out: &bytes.Buffer{}, Err: &errOut}
	cfg, err := LoadConfig(cmd, pr)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.BaseURL != "https://file.example.edu" || cfg.Student.RegisterNumber != "S777" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !strings.Contains(ui.StripANSI(errOut.String()), "CARDTRACK_TEST_UNSET_REG is not set") {
		t.Fatalf("expected missing env warning, got %q", errOut.String())
	}
}

func TestSetupCLIContext_RequiresIdentity(t *testing.T) {
	chdir(t, t.TempDir())
	cmd := newTestCmd(t, "--server", "https://cards.example.edu")
	_, err := SetupCLIContext(cmd, SetupOptions{RequireIdentity: true})
	if !apperr.IsKind(err, apperr.InvalidInput) || !strings.Contains(err.Error(), "--register") {
		t.Fatalf("expected identity error, got %v", err)
	}
}

func TestSetupCLIContext_BuildsClientAndLogFile(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CARDTRACK_TOKEN", "secret-token")
	logFile := filepath.Join(t.TempDir(), "cardtrack.log")
	cmd := newTestCmd(t, "--server", "https://cards.example.edu", "--register", "S123", "--log-file", logFile, "--log-level", "debug")
	cc, err := SetupCLIContext(cmd, SetupOptions{RequireIdentity: true, QuietLogs: true})
	if err != nil {
		t.Fatalf("SetupCLIContext: %v", err)
	}
	cc.Logger.Info("probe", "authorization", "Bearer secret-token")
	if err := cc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if cc.Client == nil || cc.RegisterNumber() != "S123" {
		t.Fatalf("unexpected context: %+v", cc)
	}
	b, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(b), "session_id") || strings.Contains(string(b), "secret-token") {
		t.Fatalf("expected session id and redacted token in log file, got %q", string(b))
	}
	if out := cmd.ErrOrStderr().(*bytes.Buffer).String(); strings.Contains(out, "probe") {
		t.Fatalf("quiet logs must not reach stderr, got %q", out)
	}
}

func TestGetConfirmation_NonInteractive(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"no\n", false},
		{"", false},
	}
	for _, tc := range cases {
		cmd := newTestCmd(t)
		cmd.SetIn(strings.NewReader(tc.input))
		var out bytes.Buffer
		pr := ui.StdPrinter{Out: &out}
		ok, err := GetConfirmation(cmd, pr, ConfirmationOptions{Message: "Confirm pickup for S123."})
		if err != nil {
			t.Fatalf("GetConfirmation: %v", err)
		}
		if ok != tc.want {
			t.Fatalf("input %q: got %v, want %v", tc.input, ok, tc.want)
		}
		if !strings.Contains(out.String(), "Confirm pickup for S123.") {
			t.Fatalf("expected prompt message, got %q", out.String())
		}
	}
}

func TestGetConfirmation_Skip(t *testing.T) {
	ok, err := GetConfirmation(newTestCmd(t), ui.NoopPrinter{}, ConfirmationOptions{SkipConfirmation: true})
	if err != nil || !ok {
		t.Fatalf("expected skip to confirm, got %v, %v", ok, err)
	}
}

func TestTerminalWidth_NonTTY(t *testing.T) {
	if w := TerminalWidth(newTestCmd(t)); w != 0 {
		t.Fatalf("expected 0 width for buffer output, got %d", w)
	}
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
