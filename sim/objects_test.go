package sim

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/result"
)

func TestConfiguration(t *testing.T) {
	c := New()
	cfg, code := c.ConfigurationCreate(core.ConfigNone)
	must(t, code)

	must(t, c.ConfigurationUpdateFromJSON(cfg, `{"a": 1, "b": {"c": "x"}}`))
	must(t, c.ConfigurationUpdateFromJSON(cfg, `{"b": {"d": true}}`))

	s, code := c.ConfigurationDump(cfg, -1)
	must(t, code)
	if s != `{"a":1,"b":{"c":"x","d":true}}` {
		t.Errorf("dump = %s", s)
	}

	s, _ = c.ConfigurationDump(cfg, 2)
	if !strings.Contains(s, "\n  \"a\": 1") {
		t.Errorf("indented dump = %s", s)
	}

	expect(t, c.ConfigurationUpdateFromJSON(cfg, `{"a": `), result.ErrParsingJSONFailed)
	if c.LastErrorDetails() == "" {
		t.Error("expected parser details")
	}
	_, code = c.ConfigurationDump(cfg, -2)
	expect(t, code, result.ErrInvalidParam)

	_, code = c.ConfigurationCreate(1 << 4)
	expect(t, code, result.ErrInvalidParam)
}

func TestConfiguration_Files(t *testing.T) {
	c := New()
	cfg, _ := c.ConfigurationCreate(core.ConfigNone)
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "branch.toml")
	if err := os.WriteFile(tomlPath, []byte("[branch]\nname = \"toml-branch\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	must(t, c.ConfigurationUpdateFromFile(cfg, tomlPath))

	jsonPath := filepath.Join(dir, "extra.json")
	if err := os.WriteFile(jsonPath, []byte(`{"branch": {"description": "from json"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	must(t, c.ConfigurationUpdateFromFile(cfg, jsonPath))

	out := filepath.Join(dir, "out.json")
	must(t, c.ConfigurationWriteToFile(cfg, out, -1))
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"branch":{"description":"from json","name":"toml-branch"}}` {
		t.Errorf("written = %s", data)
	}

	expect(t, c.ConfigurationUpdateFromFile(cfg, filepath.Join(dir, "missing.json")), result.ErrReadFileFailed)

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("not json"), 0o644)
	expect(t, c.ConfigurationUpdateFromFile(cfg, bad), result.ErrParsingFileFailed)

	expect(t, c.ConfigurationWriteToFile(cfg, filepath.Join(dir, "no", "such", "dir.json"), 0), result.ErrWriteFileFailed)
}

func TestLogging_Hook(t *testing.T) {
	c := New()
	lg, code := c.LoggerCreate("Radio")
	must(t, code)

	var entries []core.LogEntry
	must(t, c.ConfigureHookLogging(core.VerbosityDebug, func(e core.LogEntry, ud uintptr) {
		if ud != 9 {
			t.Errorf("userdata = %d", ud)
		}
		entries = append(entries, e)
	}, 9))

	v, code := c.LoggerGetVerbosity(lg)
	must(t, code)
	if v != core.VerbosityInfo {
		t.Fatalf("default verbosity = %v", v)
	}

	must(t, c.LoggerLog(lg, core.VerbosityWarning, "radio.go", 12, "signal lost"))
	must(t, c.LoggerLog(lg, core.VerbosityDebug, "", 0, "filtered by logger"))
	must(t, c.LoggerSetVerbosity(lg, core.VerbosityTrace))
	must(t, c.LoggerLog(lg, core.VerbosityTrace, "", 0, "filtered by sink"))
	must(t, c.LoggerLog(core.Invalid, core.VerbosityError, "", 0, "app message"))

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	e := entries[0]
	if e.Component != "Radio" || e.Severity != core.VerbosityWarning || e.File != "radio.go" || e.Line != 12 || e.Message != "signal lost" {
		t.Errorf("entry = %+v", e)
	}
	if entries[1].Component != "App" {
		t.Errorf("app entry = %+v", entries[1])
	}

	must(t, c.ConfigureHookLogging(core.VerbosityTrace, nil, 0))
	must(t, c.LoggerLog(lg, core.VerbosityError, "", 0, "dropped"))
	if len(entries) != 2 {
		t.Fatal("hook still active after removal")
	}

	expect(t, c.LoggerLog(lg, core.VerbosityInfo, "", 0, ""), result.ErrInvalidParam)
	expect(t, c.LoggerLog(lg, core.VerbosityInfo, "", -1, "x"), result.ErrInvalidParam)
	expect(t, c.LoggerSetVerbosity(lg, 9), result.ErrInvalidParam)
	_, code = c.LoggerCreate("")
	expect(t, code, result.ErrInvalidParam)
}

func TestLogging_Console(t *testing.T) {
	var stdout, stderr bytes.Buffer
	c := New(WithStdout(&stdout), WithStderr(&stderr))

	must(t, c.ConfigureConsoleLogging(core.VerbosityInfo, core.StreamStderr, false, "%H:%M", ""))
	must(t, c.LoggerLog(core.Invalid, core.VerbosityWarning, "main.go", 3, "to stderr"))
	must(t, c.LoggerLog(core.Invalid, core.VerbosityDebug, "", 0, "too verbose"))

	if stdout.Len() != 0 {
		t.Errorf("unexpected stdout: %q", stdout.String())
	}
	out := stderr.String()
	if !strings.Contains(out, "to stderr") || !strings.Contains(out, "WARN") || !strings.Contains(out, "App") {
		t.Errorf("stderr = %q", out)
	}
	if strings.Contains(out, "too verbose") {
		t.Error("debug entry written above sink verbosity")
	}

	expect(t, c.ConfigureConsoleLogging(core.VerbosityInfo, 7, false, "", ""), result.ErrInvalidParam)
	expect(t, c.ConfigureConsoleLogging(core.VerbosityInfo, core.StreamStdout, false, "%Q", ""), result.ErrInvalidParam)
	expect(t, c.ConfigureConsoleLogging(core.VerbosityInfo, core.StreamStdout, false, "", "$z"), result.ErrInvalidParam)
	must(t, c.ConfigureConsoleLogging(core.VerbosityInfo, core.StreamStdout, false, "", "$$ $m"))
}

func TestLogging_File(t *testing.T) {
	c := New()
	dir := t.TempDir()

	name, code := c.ConfigureFileLogging(core.VerbosityInfo, filepath.Join(dir, "log_%Y.txt"), "", "")
	must(t, code)
	want := filepath.Join(dir, "log_"+time.Now().UTC().Format("2006")+".txt")
	if name != want {
		t.Fatalf("generated name = %q, want %q", name, want)
	}

	must(t, c.LoggerLog(core.Invalid, core.VerbosityInfo, "", 0, "into the file"))
	_, code = c.ConfigureFileLogging(core.VerbosityNone, "", "", "")
	must(t, code)

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "into the file") {
		t.Errorf("file contents = %q", data)
	}

	_, code = c.ConfigureFileLogging(core.VerbosityInfo, "", "", "")
	expect(t, code, result.ErrInvalidParam)
	_, code = c.ConfigureFileLogging(core.VerbosityInfo, filepath.Join(dir, "missing", "x.log"), "", "")
	expect(t, code, result.ErrOpenFileFailed)
}

func TestBranch(t *testing.T) {
	c := New()
	ctx := newContext(t, c)
	cfg, _ := c.ConfigurationCreate(core.ConfigNone)
	must(t, c.ConfigurationUpdateFromJSON(cfg, `{"branch": {"name": "relay", "timeout": 5.5}}`))

	_, code := c.BranchCreate(ctx, cfg, "missing")
	expect(t, code, result.ErrConfigurationSectionNotFound)

	br, code := c.BranchCreate(ctx, cfg, "branch")
	must(t, code)

	idBuf := make([]byte, core.UUIDSize)
	jsonBuf := make([]byte, 1024)
	must(t, c.BranchGetInfo(br, idBuf, jsonBuf))

	var info map[string]any
	if err := json.Unmarshal(jsonBuf[:bytes.IndexByte(jsonBuf, 0)], &info); err != nil {
		t.Fatalf("info is not JSON: %v", err)
	}
	id, _ := uuid.FromBytes(idBuf)
	if info["name"] != "relay" || info["path"] != "/relay" || info["timeout"] != 5.5 || info["uuid"] != id.String() {
		t.Errorf("info = %v", info)
	}

	small := make([]byte, 8)
	expect(t, c.BranchGetInfo(br, nil, small), result.ErrBufferTooSmall)
	if small[7] != 0 {
		t.Error("truncated buffer not NUL-terminated")
	}

	def, code := c.BranchCreate(ctx, core.Invalid, "")
	must(t, code)
	must(t, c.Destroy(def))
}

func TestBranch_AwaitEvent(t *testing.T) {
	c := New()
	ctx := newContext(t, c)
	br, _ := c.BranchCreate(ctx, core.Invalid, "")

	type event struct {
		res, evres int32
		ev         core.BranchEvents
	}
	var got []event
	fn := func(res int32, ev core.BranchEvents, evres int32, _ uintptr) {
		got = append(got, event{res, evres, ev})
	}

	idBuf := make([]byte, core.UUIDSize)
	jsonBuf := make([]byte, 16)
	remote := uuid.New()

	must(t, c.BranchAwaitEventAsync(br, core.BranchEventDiscovered, idBuf, jsonBuf, fn, 0))
	if c.EmitBranchEvent(br, core.BranchEventConnectionLost, result.OK, remote, "{}") {
		t.Fatal("unobserved event consumed")
	}
	if !c.EmitBranchEvent(br, core.BranchEventDiscovered, result.OK, remote, `{"name":"remote-branch"}`) {
		t.Fatal("observed event not consumed")
	}
	c.ContextPoll(ctx)
	if len(got) != 1 || got[0] != (event{0, int32(result.ErrBufferTooSmall), core.BranchEventDiscovered}) {
		t.Fatalf("got = %v", got)
	}
	if !bytes.Equal(idBuf, remote[:]) {
		t.Error("remote uuid not written")
	}

	expect(t, c.BranchCancelAwaitEvent(br), result.ErrOperationNotRunning)
	must(t, c.BranchAwaitEventAsync(br, core.BranchEventAll, nil, nil, fn, 0))
	must(t, c.Destroy(br))
	c.ContextPoll(ctx)
	if len(got) != 2 || got[1].res != int32(result.ErrCanceled) || got[1].ev != core.BranchEventNone {
		t.Fatalf("got = %v", got)
	}
}
