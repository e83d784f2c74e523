package cli_test

import (
	"strings"
	"testing"

	"todo/internal/cli"
	"todo/internal/commands"
	"todo/internal/exitcode"
	"todo/internal/testutil"
)

func TestShell_Session(t *testing.T) {
	fb := testutil.NewFakeBackend()
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(fb))

	input := strings.Join([]string{
		"add buy milk",
		"",
		"add walk dog",
		"done 1",
		"rm 2",
		"quit",
		"add never reached",
	}, "\n")
	stdout, stderr, code := run(t, d, input, "shell")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	want := "Task added: buy milk (ID: 1)\n" +
		"Task added: walk dog (ID: 2)\n" +
		"Task completed: buy milk\n" +
		"Task deleted: walk dog\n"
	if stdout != want {
		t.Errorf("expected %q, got %q", want, stdout)
	}
	if fb.Closes != 1 {
		t.Errorf("expected store to be closed once, got %d", fb.Closes)
	}
}

func TestShell_ErrorsDoNotEndSession(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.SeedDescriptions("buy milk")
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(fb))

	input := strings.Join([]string{
		"add",
		"done abc",
		"done",
		"rm 7",
		"frobnicate",
		"shell",
		"list --bogus",
		"list --pending",
	}, "\n")
	stdout, stderr, code := run(t, d, input, "shell")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	wantErr := "error: task description required\n" +
		"error: invalid task ID: abc\n" +
		"error: task ID required\n" +
		"error: task with ID 7 not found\n" +
		"error: unknown command: frobnicate\n" +
		"error: already in shell\n" +
		"error: unknown flag: -bogus\n"
	if stderr != wantErr {
		t.Errorf("expected stderr %q, got %q", wantErr, stderr)
	}
	if !strings.Contains(stdout, "1. [ ] buy milk") {
		t.Errorf("expected final list output, got %q", stdout)
	}
}

func TestShell_ListFlagResetsPerLine(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.SeedDescriptions("buy milk", "walk dog")
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(fb))

	input := "done 1\nlist --pending\nlist\nexit\n"
	stdout, _, code := run(t, d, input, "shell", "--quiet")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if n := strings.Count(stdout, "buy milk"); n != 1 {
		t.Errorf("expected completed task in the second listing only, seen %d times:\n%s", n, stdout)
	}
	if n := strings.Count(stdout, "walk dog"); n != 2 {
		t.Errorf("expected pending task in both listings, seen %d times:\n%s", n, stdout)
	}
}

func TestShell_EndOfInput(t *testing.T) {
	fb := testutil.NewFakeBackend()
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(fb))

	stdout, _, code := run(t, d, "list", "shell")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "No tasks in the list.\n" {
		t.Errorf("unexpected stdout: %q", stdout)
	}
	if fb.Closes != 1 {
		t.Errorf("expected store to be closed once, got %d", fb.Closes)
	}
}

func TestShell_UnexpectedArgument(t *testing.T) {
	fb := testutil.NewFakeBackend()
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(fb))

	_, stderr, code := run(t, d, "", "shell", "now")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unexpected argument: now\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}
