package kernel

import "testing"

func TestMapAnonymousZeroedAndSized(t *testing.T) {
	data, err := MapAnonymous(8192)
	if err != nil {
		t.Fatalf("MapAnonymous: %v", err)
	}
	defer Unmap(data)

	if len(data) != 8192 {
		t.Fatalf("len(data) = %d, want 8192", len(data))
	}

	for i, b := range data {
		if b != 0 {
			t.Fatalf("anonymous mapping not zeroed at offset %d", i)
		}
	}
}

func TestMapAnonymousRejectsNonPositiveLength(t *testing.T) {
	if _, err := MapAnonymous(0); err == nil {
		t.Fatal("MapAnonymous(0) should fail")
	}
	if _, err := MapAnonymous(-1); err == nil {
		t.Fatal("MapAnonymous(-1) should fail")
	}
}

func TestPageSizePositive(t *testing.T) {
	if PageSize() <= 0 {
		t.Fatalf("PageSize() = %d, want > 0", PageSize())
	}
}
