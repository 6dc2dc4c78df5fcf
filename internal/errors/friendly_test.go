package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNetworkErrorClassifies(t *testing.T) {
	cases := map[string]string{
		"dial tcp: lookup x: no such host":         "DNS lookup failed",
		"dial tcp 1.2.3.4:443: connection refused": "refused",
		"context deadline exceeded":                "timed out",
		"x509: certificate signed by unknown":      "certificate",
	}
	for in, want := range cases {
		fe := NetworkError(stderrors.New(in))
		if !strings.Contains(fe.Message, want) {
			t.Errorf("NetworkError(%q).Message=%q want substring %q", in, fe.Message, want)
		}
	}
}

func TestScrapeErrorUnwraps(t *testing.T) {
	base := stderrors.New("boom")
	fe := ScrapeError("cat", 429, base)
	if !stderrors.Is(fe, base) {
		t.Fatal("ScrapeError should unwrap to its details")
	}
	if !strings.Contains(fe.Message, "rate limited") {
		t.Fatalf("unexpected message: %q", fe.Message)
	}
	if !strings.Contains(fe.Error(), "How to fix:") {
		t.Fatalf("Error() should include suggestion: %q", fe.Error())
	}
}

func TestDiskSpaceError(t *testing.T) {
	fe := DiskSpaceError("/out", 2_000_000, 1_000_000)
	if !strings.Contains(fe.Suggestion, "2.0 MB") || !strings.Contains(fe.Suggestion, "1.0 MB") {
		t.Fatalf("sizes not humanized: %q", fe.Suggestion)
	}
}
