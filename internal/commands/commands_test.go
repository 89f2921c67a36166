package commands

import (
	"bytes"
	"context"
	"flag"
	"io"
	"net/http"
	"strings"
	"testing"

	"taskview/internal/config"
	"taskview/internal/exitcode"
	"taskview/internal/task"
	"taskview/internal/testutil"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

// runCommand registers flags on a fresh FlagSet, parses args and runs cmd.
func runCommand(t *testing.T, cmd Command, cfg *config.Config, svc *testutil.FakeService, args ...string) (int, string, string) {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	var stdout, stderr bytes.Buffer
	code := cmd.Run(context.Background(), cfg, svc, fs.Args(), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func seed(t *testing.T, svc *testutil.FakeService) {
	t.Helper()
	due, _ := task.ParseDate("2024-05-01")
	if _, err := svc.Create(context.Background(), task.Draft{Title: "Buy milk", Description: "2 litres", DueDate: &due}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(context.Background(), task.Draft{Title: "Call mom"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Toggle(context.Background(), 2); err != nil {
		t.Fatal(err)
	}
	svc.AddTask("Write report", false)
	svc.Calls = map[string]int{}
}

func TestList(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(t, svc)

	code, stdout, stderr := runCommand(t, &ListCmd{}, newTestConfig(t), svc)
	if code != exitcode.Success {
		t.Fatalf("exit %d, stderr %q", code, stderr)
	}
	testutil.GoldenString(t, "list_all", stdout)
}

func TestListActive(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(t, svc)

	code, stdout, _ := runCommand(t, &ListCmd{}, newTestConfig(t), svc, "--filter", "active")
	if code != exitcode.Success {
		t.Fatalf("exit %d", code)
	}
	testutil.GoldenString(t, "list_active", stdout)
	if svc.Calls["list"] != 1 {
		t.Errorf("list calls = %d, want 1", svc.Calls["list"])
	}
}

func TestListDefaultFilterFromConfig(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(t, svc)
	cfg := newTestConfig(t)
	cfg.Filter = "completed"
	cfg.Quiet = true

	_, stdout, _ := runCommand(t, &ListCmd{}, cfg, svc)
	if stdout != "   2  [x] Call mom\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestListEmpty(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Quiet = true
	_, stdout, _ := runCommand(t, &ListCmd{}, cfg, testutil.NewFakeService())
	if stdout != "no tasks found\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestListBadFilter(t *testing.T) {
	code, _, stderr := runCommand(t, &ListCmd{}, newTestConfig(t), testutil.NewFakeService(), "--filter", "soon")
	if code != exitcode.UserError {
		t.Errorf("exit %d, want %d", code, exitcode.UserError)
	}
	if !strings.HasPrefix(stderr, "error: ") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestListBackendErrors(t *testing.T) {
	tests := []struct {
		status int
		want   int
	}{
		{http.StatusInternalServerError, exitcode.BackendError},
		{http.StatusUnauthorized, exitcode.AuthError},
		{http.StatusForbidden, exitcode.AuthError},
	}
	for _, tt := range tests {
		svc := testutil.NewFakeService()
		svc.ListErr = testutil.ServerError("list", tt.status)
		code, stdout, stderr := runCommand(t, &ListCmd{}, newTestConfig(t), svc)
		if code != tt.want {
			t.Errorf("status %d: exit %d, want %d", tt.status, code, tt.want)
		}
		if stdout != "" || !strings.HasPrefix(stderr, "error: ") {
			t.Errorf("status %d: stdout %q stderr %q", tt.status, stdout, stderr)
		}
	}
}

func TestAdd(t *testing.T) {
	svc := testutil.NewFakeService()
	code, stdout, stderr := runCommand(t, &AddCmd{}, newTestConfig(t), svc,
		"--desc", "2 litres", "--due", "2024-05-01", "Buy", "milk")
	if code != exitcode.Success {
		t.Fatalf("exit %d, stderr %q", code, stderr)
	}
	want := "   1  [ ] Buy milk  (due 2024-05-01)\n            2 litres\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
	if svc.Calls["list"] != 0 {
		t.Error("add should not load")
	}
}

func TestAddValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no title", nil, "error: title required\n"},
		{"blank title", []string{"  "}, "error: title required\n"},
		{"bad due", []string{"--due", "soon", "x"}, "error: invalid due date (want YYYY-MM-DD)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := testutil.NewFakeService()
			code, _, stderr := runCommand(t, &AddCmd{}, newTestConfig(t), svc, tt.args...)
			if code != exitcode.UserError {
				t.Errorf("exit %d, want %d", code, exitcode.UserError)
			}
			if stderr != tt.want {
				t.Errorf("stderr = %q, want %q", stderr, tt.want)
			}
			if svc.TotalCalls() != 0 {
				t.Error("service was called")
			}
		})
	}
}

func TestToggle(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(t, svc)

	code, stdout, _ := runCommand(t, &ToggleCmd{}, newTestConfig(t), svc, "3")
	if code != exitcode.Success {
		t.Fatalf("exit %d", code)
	}
	if stdout != "   3  [x] Write report\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestToggleUnknownID(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(t, svc)

	code, _, stderr := runCommand(t, &ToggleCmd{}, newTestConfig(t), svc, "42")
	if code != exitcode.UserError {
		t.Errorf("exit %d", code)
	}
	if stderr != "error: task not found: 42\n" {
		t.Errorf("stderr = %q", stderr)
	}
	if svc.Calls["toggle"] != 0 {
		t.Error("toggle was called")
	}
}

func TestToggleBadID(t *testing.T) {
	for _, args := range [][]string{nil, {"abc"}, {"0"}} {
		code, _, _ := runCommand(t, &ToggleCmd{}, newTestConfig(t), testutil.NewFakeService(), args...)
		if code != exitcode.UserError {
			t.Errorf("%v: exit %d", args, code)
		}
	}
}

func TestToggleServerFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(t, svc)
	svc.ToggleErr = testutil.ServerError("toggle", http.StatusInternalServerError)

	code, stdout, stderr := runCommand(t, &ToggleCmd{}, newTestConfig(t), svc, "1")
	if code != exitcode.BackendError {
		t.Errorf("exit %d", code)
	}
	if stdout != "" || !strings.HasPrefix(stderr, "error: ") {
		t.Errorf("stdout %q stderr %q", stdout, stderr)
	}
}

func TestEditKeepsUnspecifiedFields(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(t, svc)

	code, stdout, stderr := runCommand(t, &EditCmd{}, newTestConfig(t), svc, "--title", "Buy oat milk", "1")
	if code != exitcode.Success {
		t.Fatalf("exit %d, stderr %q", code, stderr)
	}
	want := "   1  [ ] Buy oat milk  (due 2024-05-01)\n            2 litres\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestEditClearsDueDate(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(t, svc)

	code, _, _ := runCommand(t, &EditCmd{}, newTestConfig(t), svc, "--due", "", "1")
	if code != exitcode.Success {
		t.Fatalf("exit %d", code)
	}
	if got := svc.Tasks()[0]; got.DueDate != nil || got.Title != "Buy milk" {
		t.Errorf("task = %+v", got)
	}
}

func TestEditNothingToChange(t *testing.T) {
	svc := testutil.NewFakeService()
	code, _, _ := runCommand(t, &EditCmd{}, newTestConfig(t), svc, "1")
	if code != exitcode.UserError {
		t.Errorf("exit %d", code)
	}
	if svc.TotalCalls() != 0 {
		t.Error("service was called")
	}
}

func TestEditBlankTitle(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(t, svc)

	code, _, stderr := runCommand(t, &EditCmd{}, newTestConfig(t), svc, "--title", " ", "1")
	if code != exitcode.UserError {
		t.Errorf("exit %d", code)
	}
	if stderr != "error: title required\n" {
		t.Errorf("stderr = %q", stderr)
	}
	if svc.Calls["update"] != 0 {
		t.Error("update was called")
	}
}

func TestRmWithYes(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(t, svc)

	code, stdout, _ := runCommand(t, &RmCmd{}, newTestConfig(t), svc, "--yes", "2")
	if code != exitcode.Success {
		t.Fatalf("exit %d", code)
	}
	if stdout != "ok\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if len(svc.Tasks()) != 2 {
		t.Errorf("tasks left = %d", len(svc.Tasks()))
	}
}

func TestRmConfirmation(t *testing.T) {
	tests := []struct {
		answer  string
		deleted bool
		stdout  string
	}{
		{"y\n", true, "ok\n"},
		{"yes\n", true, "ok\n"},
		{"n\n", false, "cancelled\n"},
		{"\n", false, "cancelled\n"},
		{"", false, "cancelled\n"},
	}
	for _, tt := range tests {
		svc := testutil.NewFakeService()
		seed(t, svc)
		cmd := &RmCmd{}
		cmd.SetInput(strings.NewReader(tt.answer))

		code, stdout, stderr := runCommand(t, cmd, newTestConfig(t), svc, "1")
		if code != exitcode.Success {
			t.Errorf("%q: exit %d", tt.answer, code)
		}
		if stdout != tt.stdout {
			t.Errorf("%q: stdout = %q", tt.answer, stdout)
		}
		if !strings.Contains(stderr, `Delete task 1 "Buy milk"? [y/N]`) {
			t.Errorf("%q: prompt missing from %q", tt.answer, stderr)
		}
		if got := svc.Calls["delete"] == 1; got != tt.deleted {
			t.Errorf("%q: deleted = %v, want %v", tt.answer, got, tt.deleted)
		}
	}
}

func TestRmNotFoundOnServer(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(t, svc)
	svc.DeleteErr = testutil.ErrNotFound

	code, _, _ := runCommand(t, &RmCmd{}, newTestConfig(t), svc, "-y", "1")
	if code != exitcode.UserError {
		t.Errorf("exit %d, want %d", code, exitcode.UserError)
	}
}

func TestLoginLogout(t *testing.T) {
	cfg := newTestConfig(t)

	code, stdout, _ := runCommand(t, &LoginCmd{}, cfg, nil, "--token", "abc")
	if code != exitcode.Success || stdout != "ok\n" {
		t.Fatalf("login: exit %d stdout %q", code, stdout)
	}
	tok, err := cfg.LoadToken()
	if err != nil || tok.AccessToken != "abc" {
		t.Fatalf("stored token = %v, %v", tok, err)
	}

	_, stdout, _ = runCommand(t, &LoginCmd{}, cfg, nil, "--token", "abc")
	if stdout != "already logged in\n" {
		t.Errorf("second login: %q", stdout)
	}

	code, stdout, _ = runCommand(t, &LogoutCmd{}, cfg, nil)
	if code != exitcode.Success || stdout != "ok\n" {
		t.Errorf("logout: exit %d stdout %q", code, stdout)
	}
	if cfg.HasToken() {
		t.Error("token still present")
	}

	_, stdout, _ = runCommand(t, &LogoutCmd{}, cfg, nil)
	if stdout != "not logged in\n" {
		t.Errorf("second logout: %q", stdout)
	}
}

func TestLoginFromInput(t *testing.T) {
	cfg := newTestConfig(t)
	cmd := &LoginCmd{}
	cmd.SetInput(strings.NewReader("  pasted-token \n"))

	code, _, stderr := runCommand(t, cmd, cfg, nil)
	if code != exitcode.Success {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(stderr, "API token: ") {
		t.Errorf("prompt missing: %q", stderr)
	}
	tok, err := cfg.LoadToken()
	if err != nil || tok.AccessToken != "pasted-token" {
		t.Errorf("stored token = %v, %v", tok, err)
	}
}

func TestLoginEmptyToken(t *testing.T) {
	cmd := &LoginCmd{}
	cmd.SetInput(strings.NewReader(""))
	code, _, _ := runCommand(t, cmd, newTestConfig(t), nil)
	if code != exitcode.AuthError {
		t.Errorf("exit %d, want %d", code, exitcode.AuthError)
	}
}

func TestHelpForCommand(t *testing.T) {
	code, stdout, _ := runCommand(t, &HelpCmd{}, newTestConfig(t), nil, "done")
	if code != exitcode.Success {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(stdout, "taskview toggle <id>") || !strings.Contains(stdout, "Aliases: done") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&ToggleCmd{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&ToggleCmd{}); err == nil {
		t.Error("duplicate registration accepted")
	}
	if cmd, ok := r.Find("done"); !ok || cmd.Name() != "toggle" {
		t.Error("alias lookup failed")
	}
	if got := len(r.All()); got != 1 {
		t.Errorf("All() = %d commands, want 1", got)
	}
}

func TestParseTaskID(t *testing.T) {
	if _, err := ParseTaskID(nil); err != ErrTaskIDRequired {
		t.Errorf("empty: %v", err)
	}
	if id, err := ParseTaskID([]string{"17"}); err != nil || id != 17 {
		t.Errorf("17: %d, %v", id, err)
	}
	for _, s := range []string{"-1", "0", "x1"} {
		if _, err := ParseTaskID([]string{s}); err == nil {
			t.Errorf("%q accepted", s)
		}
	}
}
