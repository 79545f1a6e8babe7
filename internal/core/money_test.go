package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"-160.89", "-160.89", true},
		{"-160,89", "-160.89", true},
		{"+12.3", "12.3", true},
		{" 2.50 ", "2.5", true},
		{"-1 234,50", "-1234.5", true},
		{"1 000", "1000", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseOptionalAmount(t *testing.T) {
	got, err := ParseOptionalAmount("  ")
	if err != nil || got.Valid {
		t.Fatalf("blank cell should be absent, got %+v err=%v", got, err)
	}
	got, err = ParseOptionalAmount("15")
	if err != nil || !got.Valid || got.Decimal.String() != "15" {
		t.Fatalf("expected 15, got %+v err=%v", got, err)
	}
	if _, err := ParseOptionalAmount("x"); err == nil {
		t.Fatalf("expected error for garbage")
	}
}
