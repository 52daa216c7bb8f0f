package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/dto"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPermissionsCommand(t *testing.T) {
	out, err := run(t, "permissions")
	if err != nil {
		t.Fatalf("permissions: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("want one line per user type, got %q", out)
	}
	if !strings.HasPrefix(lines[0], "Company") || !strings.Contains(lines[0], "delete_company") {
		t.Errorf("company line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[3], "Employee") || strings.Contains(lines[3], "add_team") {
		t.Errorf("employee line = %q", lines[3])
	}
}

func writeSQLiteConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "auth:\n  jwt_secret: ctl-test-secret-0123456789\n" +
		"log:\n  level: error\n" +
		"db:\n  driver: sqlite\n  path: " + filepath.Join(dir, "leaveops.db") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestMigrateAndGenerate(t *testing.T) {
	path := writeSQLiteConfig(t)

	out, err := run(t, "migrate", "--config", path)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "schema up to date") {
		t.Errorf("migrate output = %q", out)
	}

	out, err = run(t, "generate-shifts", "--config", path)
	if err != nil {
		t.Fatalf("generate-shifts: %v", err)
	}
	if !strings.Contains(out, "0 pattern(s), 0 new assignment(s)") {
		t.Errorf("generate output = %q", out)
	}
}

func TestGenerateShifts_UnknownPattern(t *testing.T) {
	path := writeSQLiteConfig(t)
	if _, err := run(t, "migrate", "-c", path); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := run(t, "generate-shifts", "-c", path, "--pattern", "missing"); err == nil {
		t.Error("expected an error for an unknown pattern")
	}
}

func TestPrintGenerated(t *testing.T) {
	out := &bytes.Buffer{}
	printGenerated(out, []dto.GenerateResponse{
		{PatternID: "p1", From: "2025-01-06", To: "2026-12-31", Expanded: 363, Inserted: 363},
		{PatternID: "p2", From: "2025-02-03", To: "2026-12-31", Expanded: 10, Inserted: 0},
	})
	if !strings.Contains(out.String(), "2 pattern(s), 363 new assignment(s)") {
		t.Errorf("output = %q", out.String())
	}
}
