package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/phonetics"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation/handler"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation/service"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation/validator"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/proto"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/rpc"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := CreateRootCommand(NewFlags())
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCreateRootCommand(t *testing.T) {
	cmd := CreateRootCommand(NewFlags())
	if !strings.HasPrefix(cmd.Use, "ipalize") {
		t.Errorf("Use = %q", cmd.Use)
	}
	for _, name := range []string{"batch", "remote", "tokens", "quiet-warnings", "strict", "concurrency", "timeout"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("missing flag %s", name)
		}
	}
	if cmd.PersistentFlags().Lookup("log-level") == nil {
		t.Error("missing persistent flag log-level")
	}
}

func TestTranslateArgs(t *testing.T) {
	stdout, stderr, err := execute(t, "", "kat")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if stdout != "kæt\n" {
		t.Errorf("stdout = %q, want %q", stdout, "kæt\n")
	}
	if stderr != "" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestArgsJoined(t *testing.T) {
	stdout, _, err := execute(t, "", "kat", "sh")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if stdout != "kæt ʃ\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestWarningsOnStderr(t *testing.T) {
	stdout, stderr, err := execute(t, "", "k@t")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if stdout != "k@t\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stderr, phonetics.WarningMessage) {
		t.Errorf("stderr = %q, want the warning message", stderr)
	}

	_, stderr, err = execute(t, "", "--quiet-warnings", "k@t")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if stderr != "" {
		t.Errorf("quiet stderr = %q", stderr)
	}
}

func TestStrict(t *testing.T) {
	_, _, err := execute(t, "", "--strict", "k@t")
	if !errors.Is(err, ErrNonConforming) {
		t.Errorf("err = %v, want ErrNonConforming", err)
	}
	if _, _, err := execute(t, "", "--strict", "kat"); err != nil {
		t.Errorf("clean input under --strict: %v", err)
	}
}

func TestStdin(t *testing.T) {
	stdout, _, err := execute(t, "kat\n\n  sh  \nth\n")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []string{"kæt", "ʃ", "[θ|ð]"}
	if diff := cmp.Diff(want, strings.Split(strings.TrimSpace(stdout), "\n")); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}
}

func TestTokens(t *testing.T) {
	stdout, _, err := execute(t, "", "--tokens", "kat")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := "kæt\n  k→k a→æ t→t\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.txt")
	if err := os.WriteFile(path, []byte("kat\nk@t\nsh\n"), 0644); err != nil {
		t.Fatalf("writing batch file: %v", err)
	}

	stdout, stderr, err := execute(t, "", "--batch", path, "--concurrency", "2")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := "kat ==> kæt\n" +
		"k@t ==> k@t  (WARNING: " + phonetics.WarningMessage + ")\n" +
		"sh ==> ʃ\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
	if !strings.Contains(stderr, "3 lines, 1 with warnings") {
		t.Errorf("stderr = %q", stderr)
	}

	if _, _, err := execute(t, "", "--batch", path, "extra"); err == nil {
		t.Error("expected an error when combining --batch with arguments")
	}
	if _, _, err := execute(t, "", "--batch", filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected an error for a missing batch file")
	}
}

func TestRemote(t *testing.T) {
	srv := rpc.NewServer()
	handler.RegisterRPC(srv, service.New(phonetics.Default(), validator.New(64), service.Options{}))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go srv.Serve(ln)
	t.Cleanup(srv.Stop)

	stdout, stderr, err := execute(t, "", "--remote", ln.Addr().String(), "--tokens", "k@t")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if stdout != "k@t\n  k→k @→@ t→t\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stderr, phonetics.WarningMessage) {
		t.Errorf("stderr = %q", stderr)
	}

	_, _, err = execute(t, "", "--remote", ln.Addr().String(), strings.Repeat("a", 65))
	if err == nil {
		t.Error("expected the server's validation error")
	}
}

func TestRemoteTimeout(t *testing.T) {
	srv := rpc.NewServer()
	srv.Register(proto.MethodTranslate, func(ctx context.Context, _ json.RawMessage) (any, error) {
		select {
		case <-time.After(2 * time.Second):
		case <-ctx.Done():
		}
		return proto.TranslateResponse{}, nil
	})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go srv.Serve(ln)
	t.Cleanup(srv.Stop)

	start := time.Now()
	_, _, err = execute(t, "", "--remote", ln.Addr().String(), "--timeout", "100ms", "kat")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("remote call took %v, want it cut at the timeout", elapsed)
	}
}

func TestRemoteUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	if _, _, err := execute(t, "", "--remote", addr, "kat"); err == nil {
		t.Error("expected a dial error")
	}
}
