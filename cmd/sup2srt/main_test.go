package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sup2srt/internal/testsupport"
)

// runCommand executes the CLI with the given stdin and arguments, returning
// captured stdout.
func runCommand(t *testing.T, stdin []byte, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetIn(bytes.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func writeStream(t *testing.T, dir string, subtitles []testsupport.Subtitle) string {
	t.Helper()
	path := filepath.Join(dir, "input.sup")
	if err := os.WriteFile(path, testsupport.Stream(subtitles), 0o644); err != nil {
		t.Fatalf("write stream: %v", err)
	}
	return path
}

func TestConvertEmptyStreamFromStdin(t *testing.T) {
	isolateHome(t)
	out, err := runCommand(t, testsupport.EmptyStream(), "convert")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if out != "" {
		t.Errorf("expected empty document on stdout, got %q", out)
	}
}

func TestRootCommandConvertsWithoutSubcommand(t *testing.T) {
	isolateHome(t)
	out, err := runCommand(t, testsupport.EmptyStream())
	if err != nil {
		t.Fatalf("root convert: %v", err)
	}
	if out != "" {
		t.Errorf("expected empty document on stdout, got %q", out)
	}
}

func TestConvertRefusesExistingOutputFile(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	input := writeStream(t, dir, nil)
	output := filepath.Join(dir, "output.srt")
	if err := os.WriteFile(output, []byte("existing"), 0o644); err != nil {
		t.Fatalf("seed output: %v", err)
	}

	_, err := runCommand(t, nil, "convert", input, output)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected existing-output error, got %v", err)
	}
	data, readErr := os.ReadFile(output)
	if readErr != nil || string(data) != "existing" {
		t.Errorf("output file was modified: %q, %v", data, readErr)
	}
}

func TestConvertRemovesOutputOnFailure(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	stream := testsupport.Stream([]testsupport.Subtitle{{Begin: time.Second, End: 2 * time.Second}})
	input := filepath.Join(dir, "truncated.sup")
	if err := os.WriteFile(input, stream[:len(stream)-5], 0o644); err != nil {
		t.Fatalf("write stream: %v", err)
	}
	output := filepath.Join(dir, "output.srt")

	if _, err := runCommand(t, nil, "convert", input, output); err == nil {
		t.Fatal("expected error for truncated stream")
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Errorf("output file left behind after failure: %v", err)
	}
}

func TestConvertRejectsUnknownLanguage(t *testing.T) {
	isolateHome(t)
	_, err := runCommand(t, testsupport.EmptyStream(), "convert", "--lang", "!!")
	if err == nil {
		t.Fatal("expected error for unresolvable language")
	}
}

func TestInspectRendersDisplaySetTable(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	input := writeStream(t, dir, []testsupport.Subtitle{{Begin: time.Second, End: 3 * time.Second}})

	out, err := runCommand(t, nil, "inspect", input)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(out, "epoch-start") {
		t.Errorf("missing composition state in output:\n%s", out)
	}
	if !strings.Contains(out, "2 display sets") {
		t.Errorf("missing summary line:\n%s", out)
	}
	if !strings.Contains(out, "00:00:03,000") {
		t.Errorf("missing last PTS:\n%s", out)
	}
}

func TestInspectEmptyStream(t *testing.T) {
	isolateHome(t)
	out, err := runCommand(t, nil, "inspect", "-")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(out, "no display sets") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestImagesWritesBitmapsAndManifest(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	input := writeStream(t, dir, []testsupport.Subtitle{{Begin: time.Second, End: 3 * time.Second}})
	outDir := filepath.Join(dir, "frames")

	out, err := runCommand(t, nil, "images", input, "--out", outDir)
	if err != nil {
		t.Fatalf("images: %v", err)
	}
	if !strings.Contains(out, "Wrote 1 images") {
		t.Errorf("unexpected output: %q", out)
	}
	if _, err := os.Stat(filepath.Join(outDir, "0001.png")); err != nil {
		t.Errorf("missing bitmap: %v", err)
	}
	manifest, err := os.ReadFile(filepath.Join(outDir, "manifest.tsv"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if !strings.Contains(string(manifest), "0001.png\t00:00:01,000\t00:00:03,000") {
		t.Errorf("unexpected manifest:\n%s", manifest)
	}
}

func TestImagesRequiresOutDirectory(t *testing.T) {
	isolateHome(t)
	if _, err := runCommand(t, nil, "images", "-"); err == nil {
		t.Fatal("expected error without --out")
	}
}

func TestConfigInit(t *testing.T) {
	isolateHome(t)
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, nil, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Errorf("output does not mention target: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}

	if _, err := runCommand(t, nil, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when target exists")
	}
	if _, err := runCommand(t, nil, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowPrintsResolvedConfig(t *testing.T) {
	isolateHome(t)
	out, err := runCommand(t, nil, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"[ocr]", "languages", "[cache]", "[logging]"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show output missing %q:\n%s", want, out)
		}
	}
}
