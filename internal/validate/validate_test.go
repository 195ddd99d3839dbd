package validate

import "testing"

func TestMileage(t *testing.T) {
	if v, ok := Mileage(""); !ok || v != nil {
		t.Fatalf("empty mileage should be unset, got %v %v", v, ok)
	}
	if v, ok := Mileage(" 4000 "); !ok || v == nil || *v != 4000 {
		t.Fatalf("want 4000, got %v %v", v, ok)
	}
	if _, ok := Mileage("-1"); ok {
		t.Fatal("negative mileage accepted")
	}
	if _, ok := Mileage("abc"); ok {
		t.Fatal("non-numeric mileage accepted")
	}
}

func TestBrandAndPrice(t *testing.T) {
	if _, ok := Brand("Mercedes-Benz"); !ok {
		t.Fatal("brand rejected")
	}
	if _, ok := Brand("<script>"); ok {
		t.Fatal("markup accepted as brand")
	}
	if _, ok := Price("30"); !ok {
		t.Fatal("price rejected")
	}
	if _, ok := Price("30$"); ok {
		t.Fatal("bad price accepted")
	}
}

func TestEmailAndLength(t *testing.T) {
	if _, ok := Email("driver@example.com"); !ok {
		t.Fatal("email rejected")
	}
	if _, ok := Email("driver@"); ok {
		t.Fatal("bad email accepted")
	}
	if !Length("Їжак", 2, 60) {
		t.Fatal("length should count runes")
	}
	if Length("a", 2, 60) {
		t.Fatal("short name accepted")
	}
}
