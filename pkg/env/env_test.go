package env

import "testing"

func TestGetPrefersFirstSetKey(t *testing.T) {
	t.Setenv("STOREFRONT_TEST_A", "")
	t.Setenv("STOREFRONT_TEST_B", " b ")
	t.Setenv("STOREFRONT_TEST_C", "c")

	if got := Get("fallback", "STOREFRONT_TEST_A", "STOREFRONT_TEST_B", "STOREFRONT_TEST_C"); got != "b" {
		t.Fatalf("expected b, got %q", got)
	}
	if got := Get("fallback", "STOREFRONT_TEST_UNSET"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
