package checksum

import "testing"

func TestSum(t *testing.T) {
	// SHA-256 of the empty string is a well-known constant.
	got := Sum(nil)
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Errorf("Sum(nil) = %q, want %q", got, want)
	}
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("different inputs produced the same digest")
	}
}

func TestShort(t *testing.T) {
	sum := Sum([]byte("doc"))
	if got := Short(sum); got != sum[:12] {
		t.Errorf("Short = %q, want %q", got, sum[:12])
	}
	if got := Short("abc"); got != "abc" {
		t.Errorf("Short of short input = %q, want %q", got, "abc")
	}
}
