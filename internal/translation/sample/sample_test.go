package sample

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/phonetics"
)

func TestReadLines(t *testing.T) {
	in := "  kat \n\n\tˈshu̇-gər\r\n   \nchōz"
	got, err := ReadLines(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	want := []string{"kat", "ˈshu̇-gər", "chōz"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadLines mismatch (-want +got):\n%s", diff)
	}
}

func TestRunPreservesOrder(t *testing.T) {
	lines := make([]string, 200)
	for i := range lines {
		lines[i] = fmt.Sprintf("k%dt", i)
	}
	results, err := Run(context.Background(), phonetics.Default(), lines, 8)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, r := range results {
		if r.Input != lines[i] {
			t.Fatalf("result %d is for %q, want %q", i, r.Input, lines[i])
		}
		if !r.Warning {
			t.Errorf("%q contains digits and should warn", r.Input)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, phonetics.Default(), []string{"kat"}, 1); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestRender(t *testing.T) {
	results, err := Run(context.Background(), phonetics.Default(), []string{"kat", "k@t"}, 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var buf bytes.Buffer
	if err := Render(&buf, results); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "kat ==> kæt\n" +
		"k@t ==> k@t  (WARNING: " + phonetics.WarningMessage + ")\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("Render mismatch (-want +got):\n%s", diff)
	}
}
