package project

import "testing"

func TestHashBytes(t *testing.T) {
	a := HashBytes([]byte("content"))
	if a != HashBytes([]byte("content")) {
		t.Fatalf("hashing must be deterministic")
	}
	if a == HashBytes([]byte("other")) {
		t.Fatalf("distinct content must not collide")
	}
	if len(a.String()) != 64 {
		t.Fatalf("hex digest length = %d", len(a.String()))
	}
}

func TestCombine(t *testing.T) {
	content := HashBytes([]byte("model"))
	dep := HashBytes([]byte("template"))

	if Combine(content, dep) != Combine(content, dep) {
		t.Fatalf("combine must be deterministic")
	}
	if Combine(content) == content {
		t.Fatalf("combine must rehash, not pass through")
	}
	if Combine(content, dep) == Combine(content) {
		t.Fatalf("adding an input must change the digest")
	}
	other := HashBytes([]byte("other"))
	if Combine(content, dep, other) == Combine(content, other, dep) {
		t.Fatalf("combine must be order-sensitive")
	}
}
