package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/argscan/domain"
	"github.com/ludo-technologies/argscan/internal/testutil"
)

// isolateConfig keeps user-level config files out of the test
func isolateConfig(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("ARGSCAN_CONFIG", "")
}

// execute runs the command line and returns the exit code and both streams
func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_UsageError(t *testing.T) {
	isolateConfig(t)

	for _, args := range [][]string{{}, {"src"}} {
		code, stdout, stderr := execute(t, args...)
		if code == 0 {
			t.Errorf("args %v: expected non-zero exit code", args)
		}
		if stderr != usageLine+"\n" {
			t.Errorf("args %v: expected usage on stderr, got %q", args, stderr)
		}
		if stdout != "" {
			t.Errorf("args %v: expected empty stdout, got %q", args, stdout)
		}
	}
}

func TestRun_BadThreshold(t *testing.T) {
	isolateConfig(t)
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{"a.rs": "fn a(x: i32, y: i32) {}\n"})

	for _, threshold := range []string{"abc", "1.5", ""} {
		code, stdout, stderr := execute(t, root, threshold)
		if code == 0 {
			t.Errorf("threshold %q: expected non-zero exit code", threshold)
		}
		if !strings.Contains(stderr, "invalid min_args") {
			t.Errorf("threshold %q: expected diagnostic, got %q", threshold, stderr)
		}
		if stdout != "" {
			t.Errorf("threshold %q: scanning must not start, got %q", threshold, stdout)
		}
	}
}

func TestRun_ReportsFunctions(t *testing.T) {
	isolateConfig(t)
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{"a.rs": "fn a(x: i32, y: i32) {}\n"})

	code, stdout, _ := execute(t, root, "1")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}

	expected := "a.rs:1: fn a/2\n\nFound 1 functions with more than 1 arguments\n"
	if stdout != expected {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", stdout, expected)
	}
}

func TestRun_ParseFailure(t *testing.T) {
	isolateConfig(t)
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		"bad.rs":  "fn bad(a: u8,, {\n",
		"good.rs": "fn good(a: u8, b: u8) {}\n",
	})

	code, stdout, stderr := execute(t, root, "0", "--strict")
	if code == 0 {
		t.Fatal("expected non-zero exit code")
	}
	if strings.Contains(stdout, "Found") {
		t.Errorf("summary line must not be printed, got %q", stdout)
	}
	if !strings.Contains(stderr, "bad.rs") {
		t.Errorf("diagnostic should name the file, got %q", stderr)
	}
}

func TestRun_UnrecognizedSyntaxIsNotFatal(t *testing.T) {
	isolateConfig(t)
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		"raw_ref.rs": "fn o(a: i32, b: i32) { let p = &raw const a; }\n",
	})

	code, stdout, stderr := execute(t, root, "1")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr %q)", code, stderr)
	}

	expected := "raw_ref.rs:1: fn o/2\n\nFound 1 functions with more than 1 arguments\n"
	if stdout != expected {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", stdout, expected)
	}
	if !strings.Contains(stderr, "raw_ref.rs") {
		t.Errorf("expected a warning naming the file, got %q", stderr)
	}
}

func TestRun_DirectoryNamedLikeSubcommand(t *testing.T) {
	isolateConfig(t)
	t.Chdir(t.TempDir())
	testutil.WriteFiles(t, ".", map[string]string{"init/a.rs": "fn a(x: i32, y: i32) {}\n"})

	code, stdout, stderr := execute(t, "init", "1")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr %q)", code, stderr)
	}
	expected := "a.rs:1: fn a/2\n\nFound 1 functions with more than 1 arguments\n"
	if stdout != expected {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", stdout, expected)
	}
	if _, err := os.Stat(".argscan.yaml"); err == nil {
		t.Error("init subcommand should not have run")
	}
}

func TestScanTarget(t *testing.T) {
	t.Chdir(t.TempDir())
	testutil.WriteFiles(t, ".", map[string]string{"check/a.rs": "fn a() {}\n"})
	root := newRootCmd()

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"check", "3"}, "./check"},
		{[]string{"check", "src"}, "check"},
		{[]string{"init", "3"}, "init"},
		{[]string{"check"}, "check"},
		{[]string{"src", "3"}, "src"},
	}
	for _, tt := range tests {
		got := scanTarget(root, tt.args)
		if filepath.ToSlash(got[0]) != tt.want {
			t.Errorf("scanTarget(%v) = %v, want first arg %s", tt.args, got, tt.want)
		}
		if len(got) != len(tt.args) {
			t.Errorf("scanTarget(%v) changed the argument count: %v", tt.args, got)
		}
	}
}

func TestRun_KeepGoing(t *testing.T) {
	isolateConfig(t)
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		"bad.rs":  "fn bad(a: u8,, {\n",
		"good.rs": "fn good(a: u8, b: u8) {}\n",
	})

	code, stdout, _ := execute(t, root, "0", "--keep-going", "--strict")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}

	expected := "good.rs:1: fn good/2\n\nFound 1 functions with more than 0 arguments (partial: 1 files failed to parse)\n"
	if stdout != expected {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", stdout, expected)
	}
}

func TestRun_MissingDirectory(t *testing.T) {
	isolateConfig(t)

	code, stdout, stderr := execute(t, filepath.Join(t.TempDir(), "missing"), "3")
	if code == 0 {
		t.Fatal("expected non-zero exit code")
	}
	if stdout != "" {
		t.Errorf("expected empty stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, "FILE_NOT_FOUND") {
		t.Errorf("expected FILE_NOT_FOUND, got %q", stderr)
	}
}

func TestRun_FlagsOverrideConfigOnlyWhenSet(t *testing.T) {
	isolateConfig(t)
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		".argscan.yaml": "output:\n  format: json\n",
		"a.rs":          "fn a(x: i32, y: i32) {}\n",
	})

	// Config selects JSON
	code, stdout, _ := execute(t, root, "1")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	var resp domain.ArityResponse
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("expected JSON output from config: %v\n%s", err, stdout)
	}
	if len(resp.Functions) != 1 || resp.Functions[0].Column != 5 {
		t.Errorf("unexpected functions: %+v", resp.Functions)
	}

	// Explicit flag wins
	_, stdout, _ = execute(t, root, "1", "--format", "text")
	if !strings.HasPrefix(stdout, "a.rs:1: fn a/2\n") {
		t.Errorf("expected text output, got %q", stdout)
	}
}

func TestRun_OutputFile(t *testing.T) {
	isolateConfig(t)
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{"a.rs": "fn a(x: i32, y: i32) {}\n"})
	outPath := filepath.Join(t.TempDir(), "report.csv")

	code, stdout, _ := execute(t, root, "1", "-f", "csv", "-o", outPath)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if stdout != "" {
		t.Errorf("report should go to the file, got %q on stdout", stdout)
	}

	content, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if !strings.Contains(string(content), "a.rs,1,5,a,2,function") {
		t.Errorf("unexpected CSV report:\n%s", content)
	}
}

func TestRun_ExcludeFlag(t *testing.T) {
	isolateConfig(t)
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		"a.rs":         "fn a(x: i32, y: i32) {}\n",
		"gen/bind.rs":  "fn b(x: i32, y: i32) {}\n",
		"target/x.rs":  "fn t(x: i32, y: i32) {}\n",
		"src/main.rs":  "fn main() {}\n",
		"src/extra.rs": "fn e(x: i32, y: i32, z: i32) {}\n",
	})

	_, stdout, _ := execute(t, root, "1", "-e", "gen/")
	expected := "a.rs:1: fn a/2\nsrc/extra.rs:1: fn e/3\n\nFound 2 functions with more than 1 arguments\n"
	if stdout != expected {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", stdout, expected)
	}
}

func TestRun_InvalidFormat(t *testing.T) {
	isolateConfig(t)
	root := t.TempDir()

	code, _, stderr := execute(t, root, "1", "--format", "xml")
	if code == 0 {
		t.Fatal("expected non-zero exit code")
	}
	if stderr == "" {
		t.Error("expected a diagnostic on stderr")
	}
}

func TestScanCmd_FlagsExist(t *testing.T) {
	cmd := scanCmd()

	expectedFlags := []string{"format", "output", "config", "exclude", "gitignore", "no-follow",
		"keep-going", "strict", "sort", "workers", "progress", "verbose"}
	for _, flagName := range expectedFlags {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("Missing expected flag: --%s", flagName)
		}
	}
}

func TestScanCmd_ShortFlags(t *testing.T) {
	cmd := scanCmd()

	shortFlags := map[string]string{
		"f": "format",
		"o": "output",
		"c": "config",
		"e": "exclude",
		"w": "workers",
		"v": "verbose",
	}

	for short, long := range shortFlags {
		flag := cmd.Flags().ShorthandLookup(short)
		if flag == nil || flag.Name != long {
			t.Errorf("Missing short flag -%s for --%s", short, long)
		}
	}
}

func TestParseThreshold(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"5", 5, false},
		{"-1", 0, true},
		{"five", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parseThreshold(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseThreshold(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseThreshold(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestCheck_Passes(t *testing.T) {
	isolateConfig(t)
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{"a.rs": "fn a(x: i32, y: i32) {}\n"})

	code, stdout, _ := execute(t, "check", "--max-args", "2", root)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.HasPrefix(stdout, "PASS") {
		t.Errorf("expected PASS, got %q", stdout)
	}
}

func TestCheck_Fails(t *testing.T) {
	isolateConfig(t)
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{"a.rs": "fn a(x: i32, y: i32) {}\n"})

	code, stdout, _ := execute(t, "check", "--max-args", "1", root)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stdout, "[ERROR] a.rs:1: fn a has 2 parameters (max: 1)") {
		t.Errorf("expected violation, got %q", stdout)
	}
}

func TestCheck_ThresholdFromConfig(t *testing.T) {
	isolateConfig(t)
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		".argscan.yaml": "arity:\n  max_args: 1\n",
		"a.rs":          "fn a(x: i32, y: i32) {}\n",
	})

	code, _, _ := execute(t, "check", root)
	if code != 1 {
		t.Errorf("expected config max_args to fail the check, got exit code %d", code)
	}

	code, _, _ = execute(t, "check", "--max-args", "3", root)
	if code != 0 {
		t.Errorf("expected --max-args to override config, got exit code %d", code)
	}
}

func TestCheck_JSON(t *testing.T) {
	isolateConfig(t)
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		"a.rs": "fn a(x: i32, y: i32) {}\nfn b(x: i32) {}\n",
	})

	code, stdout, _ := execute(t, "check", "--json", "--max-args", "1", root)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}

	var result domain.CheckResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if result.Passed || result.ExitCode != 1 {
		t.Errorf("expected failed result, got %+v", result)
	}
	if len(result.Violations) != 1 || result.Violations[0].Rule != "too-many-arguments" {
		t.Errorf("unexpected violations: %+v", result.Violations)
	}
	if result.Summary.FunctionsAnalyzed != 2 || result.Summary.MaxArity != 2 {
		t.Errorf("unexpected summary: %+v", result.Summary)
	}
}

func TestCheck_AnalysisError(t *testing.T) {
	isolateConfig(t)

	code, _, stderr := execute(t, "check", filepath.Join(t.TempDir(), "missing"))
	if code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if stderr == "" {
		t.Error("expected a diagnostic on stderr")
	}
}

func TestCheckCmd_FlagsExist(t *testing.T) {
	cmd := checkCmd()

	for _, flagName := range []string{"max-args", "json", "verbose", "config"} {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("Missing expected flag: --%s", flagName)
		}
	}
}

func TestExitError_Error(t *testing.T) {
	err := &ExitError{Code: 1, Message: "test error"}
	if err.Error() != "test error" {
		t.Errorf("Error() should return message, got '%s'", err.Error())
	}
}

func TestVersionCmd(t *testing.T) {
	code, stdout, _ := execute(t, "version")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.HasPrefix(stdout, "argscan version ") {
		t.Errorf("unexpected version output %q", stdout)
	}

	cmd := versionCmd()
	if cmd.Flags().ShorthandLookup("v") == nil {
		t.Error("Missing short flag -v for --verbose")
	}
}
