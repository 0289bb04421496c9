package envutil

import (
	"testing"
	"time"
)

func TestReadersFallBackOnGarbage(t *testing.T) {
	t.Setenv("ENVUTIL_INT", "abc")
	t.Setenv("ENVUTIL_FLOAT", "x1")
	t.Setenv("ENVUTIL_BOOL", "maybe")
	t.Setenv("ENVUTIL_SECONDS", "-5")

	if got := Int("ENVUTIL_INT", 7); got != 7 {
		t.Fatalf("Int: got %d", got)
	}
	if got := Float("ENVUTIL_FLOAT", 80); got != 80 {
		t.Fatalf("Float: got %v", got)
	}
	if got := Bool("ENVUTIL_BOOL", true); !got {
		t.Fatalf("Bool: expected default true")
	}
	if got := Seconds("ENVUTIL_SECONDS", time.Minute); got != time.Minute {
		t.Fatalf("Seconds: got %v", got)
	}
}

func TestReadersParseValues(t *testing.T) {
	t.Setenv("ENVUTIL_INT", " 15 ")
	t.Setenv("ENVUTIL_BOOL", "off")
	t.Setenv("ENVUTIL_SECONDS", "3600")
	t.Setenv("ENVUTIL_LIST", "http://a, ,http://b")

	if got := Int("ENVUTIL_INT", 0); got != 15 {
		t.Fatalf("Int: got %d", got)
	}
	if got := Bool("ENVUTIL_BOOL", true); got {
		t.Fatalf("Bool: expected false")
	}
	if got := Seconds("ENVUTIL_SECONDS", 0); got != time.Hour {
		t.Fatalf("Seconds: got %v", got)
	}
	got := List("ENVUTIL_LIST", nil)
	if len(got) != 2 || got[0] != "http://a" || got[1] != "http://b" {
		t.Fatalf("List: got %v", got)
	}
}
