package main

import (
	"testing"

	"github.com/alecthomas/kong"
)

func TestFoldCmd_Defaults(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.Parse([]string{"fold"}); err != nil {
		t.Fatal(err)
	}
	if cli.Fold.Root != "." {
		t.Errorf("expected default root '.', got %q", cli.Fold.Root)
	}
	if cli.Fold.Watch {
		t.Errorf("expected watch to default to false")
	}
	if cli.Fold.Interval != 0.75 {
		t.Errorf("expected default interval 0.75, got %v", cli.Fold.Interval)
	}
}

func TestServeCmd_Flags(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatal(err)
	}
	_, err = parser.Parse([]string{"serve", "--port", "9090", "--no-open"})
	if err != nil {
		t.Fatal(err)
	}
	if cli.Serve.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cli.Serve.Port)
	}
	if !cli.Serve.NoOpen {
		t.Errorf("expected no-open to be true")
	}
	// Host carries no kong default: an unset --host resolves to "" here and
	// is merged against .isnad/config.toml (falling back to 127.0.0.1) at
	// Run() time, not at parse time.
	if cli.Serve.Host != "" {
		t.Errorf("expected unset host to parse as empty, got %q", cli.Serve.Host)
	}
	if mergeStr(cli.Serve.Host, "127.0.0.1") != "127.0.0.1" {
		t.Errorf("expected mergeStr to fall back to the config/default host")
	}
}

func TestAppendDirectiveCmd_RequiresType(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.Parse([]string{"append-directive"}); err == nil {
		t.Error("expected an error when --type is missing")
	}
}

func TestAckDirectivesCmd_DryRunFlag(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.Parse([]string{"ack-directives", "--dry-run", "--limit", "3"}); err != nil {
		t.Fatal(err)
	}
	if !cli.AckDirectives.DryRun {
		t.Errorf("expected dry-run to be true")
	}
	if cli.AckDirectives.Limit != 3 {
		t.Errorf("expected limit 3, got %d", cli.AckDirectives.Limit)
	}
}

func TestInitCmd_Run_ScaffoldsWorkspace(t *testing.T) {
	dir := t.TempDir()
	cmd := InitCmd{Root: dir}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}
}
