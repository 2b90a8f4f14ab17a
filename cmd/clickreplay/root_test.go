package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"graphclick/internal/replay"
)

const script = `
layout:
  - {id: n1, x: 10, y: 10, width: 10, height: 10}
events:
  - {at: 0s, type: click, nodes: [n1], clientX: 1, clientY: 2}
  - {at: 1s, type: doubleClick, nodes: [n1]}
`

func writeScript(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "s.yaml")
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReplayText(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{writeScript(t)})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	got := out.String()
	for _, want := range []string{"nodeSingleClick", "nodeDoubleClick", "2 notifications"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}

func TestReplayJSONWithOverrides(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"--json", "--window", "2s", "--destination", "https://tree.example", writeScript(t)})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	var res replay.Result
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	// The 2s window lets the double click cancel the first click.
	if len(res.Outputs) != 1 || res.Outputs[0].TargetOrigin != "https://tree.example" {
		t.Fatalf("outputs = %+v", res.Outputs)
	}
}

func TestReplayMissingFile(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "nope.yaml")})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("Execute() succeeded on a missing script")
	}
}
