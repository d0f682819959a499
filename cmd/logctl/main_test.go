package main

import (
	"bytes"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"logbridge/internal/bridge"
	"logbridge/internal/errdesc"
	"logbridge/internal/level"
	"logbridge/internal/logger"
	"logbridge/internal/rpc"
)

const testAddr = "local"

func localCLI(t *testing.T) (*logger.MemoryTransport, *logger.BaseLogger, func(args ...string) (string, error)) {
	t.Helper()
	mem := logger.NewMemory()
	lg := logger.New(logger.Config{Level: level.Trace, Context: "cli", Transports: []logger.Transport{mem}})
	reg := rpc.NewRegistry()
	bridge.New(bridge.NewHandle(lg)).Register(reg)
	connect := func(addr string) (rpc.Caller, func(), error) {
		if addr != testAddr {
			t.Fatalf("unexpected addr %q", addr)
		}
		return reg, func() {}, nil
	}
	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := newRootCmd(&out, connect)
		cmd.SetErr(&out)
		cmd.SetArgs(append([]string{"--" + flagGRPC, testAddr}, args...))
		err := cmd.Execute()
		return out.String(), err
	}
	return mem, lg, run
}

func TestSeverityCommand(t *testing.T) {
	mem, _, run := localCLI(t)
	if _, err := run("warn", "disk low", "--context", "ops", "--data", `{"pct":91}`); err != nil {
		t.Fatalf("warn: %v", err)
	}
	e := mem.Entries()
	if len(e) != 1 || e[0].Level != level.Warn || e[0].Message != "disk low" || e[0].Context != "ops" || e[0].Data["pct"] != json.Number("91") {
		t.Fatalf("unexpected entries: %+v", e)
	}
}

func TestSeverityCommandDefaultsStayAbsent(t *testing.T) {
	mem, _, run := localCLI(t)
	if _, err := run("info", "hi"); err != nil {
		t.Fatalf("info: %v", err)
	}
	e := mem.Entries()[0]
	if e.Context != "cli" || e.Data != nil || e.Err != nil {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestSeverityCommandError(t *testing.T) {
	mem, _, run := localCLI(t)
	if _, err := run("error", "failed", "--error-name", "IOError", "--error-message", "eof", "--error-stack", "trace"); err != nil {
		t.Fatalf("error: %v", err)
	}
	re, ok := mem.Entries()[0].Err.(*errdesc.Error)
	if !ok || re.Name != "IOError" || re.Message != "eof" || re.Stack != "trace" {
		t.Fatalf("unexpected error: %#v", mem.Entries()[0].Err)
	}
}

func TestSeverityCommandBadData(t *testing.T) {
	_, _, run := localCLI(t)
	if _, err := run("info", "x", "--data", "[1]"); err == nil {
		t.Fatalf("expected error for non-object data")
	}
}

func TestLevelCommands(t *testing.T) {
	_, lg, run := localCLI(t)
	if _, err := run("set-level", "error"); err != nil {
		t.Fatalf("set-level: %v", err)
	}
	if lg.GetLevel() != level.Error {
		t.Fatalf("level not applied: %v", lg.GetLevel())
	}
	out, err := run("get-level")
	if err != nil || strings.TrimSpace(out) != "ERROR (4)" {
		t.Fatalf("get-level: %q %v", out, err)
	}
	if _, err := run("set-level", "loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestProceduresCommand(t *testing.T) {
	_, _, run := localCLI(t)
	out, err := run("procedures")
	if err != nil {
		t.Fatalf("procedures: %v", err)
	}
	var docs []procedureDoc
	if err := yaml.Unmarshal([]byte(out), &docs); err != nil {
		t.Fatalf("yaml: %v\n%s", err, out)
	}
	if len(docs) != 7 || docs[0].Path != "log.debug" || docs[6].Path != "log.getLevel" {
		t.Fatalf("unexpected procedures: %+v", docs)
	}
}
