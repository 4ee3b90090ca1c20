package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunFormulas(t *testing.T) {
	out, errOut, code := runCLI([]string{"-c", "A1=galactic", "MID(A1,3,4)", "=1/0", "=LEN(A1)"}, "")
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	if want := "lact\n#DIV/0!\n8\n"; out != want {
		t.Fatalf("output=%q, want %q", out, want)
	}
}

func TestRunStdin(t *testing.T) {
	out, errOut, code := runCLI(nil, "MID(\"galactic\",3,4)\n\n  LEN(\"abc\")  \n")
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	if want := "lact\n3\n"; out != want {
		t.Fatalf("output=%q, want %q", out, want)
	}
}

func TestRunLocale(t *testing.T) {
	out, errOut, code := runCLI([]string{"--locale", "de-DE", "-c", "A1=3,5", "=A1*2", `=MID("galactic","3,1",2)`}, "")
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	if want := "7\nla\n"; out != want {
		t.Fatalf("output=%q, want %q", out, want)
	}
}

func TestRunQualifiedCell(t *testing.T) {
	out, errOut, code := runCLI([]string{"--cell", "Data!B2=hello", "MID(Data!B2,2,3)"}, "")
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	if out != "ell\n" {
		t.Fatalf("output=%q, want %q", out, "ell\n")
	}
}

func TestRunFormulaCell(t *testing.T) {
	out, errOut, code := runCLI([]string{"-c", "A1=galactic", "-c", "B1==UPPER(A1)", "B1"}, "")
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	if out != "GALACTIC\n" {
		t.Fatalf("output=%q, want %q", out, "GALACTIC\n")
	}
}

func TestRunSyntaxError(t *testing.T) {
	out, errOut, code := runCLI([]string{"=MID(", "=1+1"}, "")
	if code != 2 {
		t.Fatalf("exit code %d, want 2", code)
	}
	if out != "2\n" {
		t.Fatalf("output=%q, want %q", out, "2\n")
	}
	if !strings.Contains(errOut, "=MID(") {
		t.Fatalf("stderr=%q, want the failing formula", errOut)
	}
}

func TestRunCircularReferenceTrace(t *testing.T) {
	out, errOut, code := runCLI([]string{"--verbosity", "1", "-c", "A1==A1", "A1"}, "")
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	if out != "#REF!\n" {
		t.Fatalf("output=%q, want %q", out, "#REF!\n")
	}
	if !strings.Contains(errOut, "circular reference") {
		t.Fatalf("stderr=%q, want a circular reference trace", errOut)
	}
}

func TestRunFunctions(t *testing.T) {
	out, errOut, code := runCLI([]string{"-f"}, "")
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	found := false
	for _, line := range lines {
		if line == "MID" {
			found = true
		}
	}
	if !found {
		t.Fatalf("function list %v does not include MID", lines)
	}
}

func TestRunVersion(t *testing.T) {
	out, _, code := runCLI([]string{"--version"}, "")
	if code != 0 || out != version+"\n" {
		t.Fatalf("--version = %q, %d", out, code)
	}
}

func TestRunBadArguments(t *testing.T) {
	tests := [][]string{
		{"--no-such-flag"},
		{"--locale", "!!", "1"},
		{"-c", "A1", "1"},
		{"-c", "A1:B2=3", "1"},
		{"-c", "nothing=3", "1"},
		{"-s", "", "1"},
	}
	for _, args := range tests {
		if _, _, code := runCLI(args, ""); code != 2 {
			t.Errorf("run(%q) exit code %d, want 2", args, code)
		}
	}
}

func runCLI(args []string, stdin string) (string, string, int) {
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}
