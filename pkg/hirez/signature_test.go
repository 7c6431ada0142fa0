package hirez

import (
	"regexp"
	"testing"
	"time"
)

func TestSignature_KnownValue(t *testing.T) {
	// MD5("1234createsessionabcd20230101120000")
	got := Signature("1234", "createsession", "abcd", "20230101120000")
	want := "e1ee1abc7e6b960ba5254c2f0236499d"

	if got != want {
		t.Errorf("Signature mismatch: expected %s, got %s", want, got)
	}
}

func TestSignature_Deterministic(t *testing.T) {
	first := Signature("1004", "getgods", "23DF3C7E9BD14D84BF892AD206B6755C", "20260826120000")
	for i := 0; i < 10; i++ {
		if got := Signature("1004", "getgods", "23DF3C7E9BD14D84BF892AD206B6755C", "20260826120000"); got != first {
			t.Fatalf("Signature not deterministic: %s != %s", got, first)
		}
	}
}

func TestSignature_LowercaseHex(t *testing.T) {
	got := Signature("1234", "getplayer", "abcd", "20230101120000")

	if ok := regexp.MustCompile(`^[0-9a-f]{32}$`).MatchString(got); !ok {
		t.Errorf("Expected 32 lowercase hex chars, got %q", got)
	}
}

func TestSignature_InputOrderMatters(t *testing.T) {
	a := Signature("1234", "getplayer", "abcd", "20230101120000")
	b := Signature("abcd", "getplayer", "1234", "20230101120000")

	if a == b {
		t.Error("Swapping dev id and auth key should change the signature")
	}
}

func TestSignature_EmptyInputsStillDigest(t *testing.T) {
	// Credential validation is the server's job; the signature itself is total.
	got := Signature("", "", "", "")
	want := "d41d8cd98f00b204e9800998ecf8427e" // MD5 of the empty string

	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestTimestamp_Format(t *testing.T) {
	got := Timestamp(time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC))

	if got != "20230101120000" {
		t.Errorf("Expected 20230101120000, got %s", got)
	}
}

func TestTimestamp_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	got := Timestamp(time.Date(2023, 1, 1, 15, 0, 0, 0, loc))

	if got != "20230101120000" {
		t.Errorf("Expected 20230101120000, got %s", got)
	}
}
