package slugify

import (
	"regexp"
	"strings"
	"testing"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestMake(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Acme Corp", "acme-corp"},
		{"Company:Acme-HR-Jane Doe-E1", "company-acme-hr-jane-doe-e1"},
		{"  spaced  out  ", "spaced-out"},
	}
	for _, tt := range tests {
		if got := Make(tt.in); got != tt.want {
			t.Errorf("Make(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMake_Truncates(t *testing.T) {
	got := Make(strings.Repeat("abc ", 60))
	if len(got) > MaxLength {
		t.Errorf("len = %d, want <= %d", len(got), MaxLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("truncated slug %q must not end with a hyphen", got)
	}
}

func TestCompany(t *testing.T) {
	a := Company("Acme Corp")
	b := Company("Acme Corp")

	if !strings.HasPrefix(a, "company-acme-corp-") {
		t.Errorf("Company slug %q has wrong prefix", a)
	}
	if len(a) != len("company-acme-corp-")+5 {
		t.Errorf("Company slug %q should end with a 5 character suffix", a)
	}
	if a == b {
		t.Error("two slugs for the same name should differ")
	}
	if !slugPattern.MatchString(a) {
		t.Errorf("Company slug %q is not a valid slug", a)
	}
}

func TestProfile(t *testing.T) {
	got := Profile("Acme", "Manager", "John Smith", "M-7")
	if got != "company-acme-manager-john-smith-m-7" {
		t.Errorf("Profile = %q", got)
	}
}

func TestRandomSuffix(t *testing.T) {
	s := RandomSuffix(8)
	if len(s) != 8 {
		t.Fatalf("len = %d, want 8", len(s))
	}
	for _, r := range s {
		if !strings.ContainsRune(suffixAlphabet, r) {
			t.Errorf("unexpected rune %q", r)
		}
	}
}

func TestWithSuffix_LongBase(t *testing.T) {
	base := strings.Repeat("northwind ", 12)
	a := WithSuffix(base, 5)
	b := WithSuffix(base, 5)

	if len(a) > MaxLength {
		t.Errorf("len = %d, want <= %d", len(a), MaxLength)
	}
	if a == b {
		t.Error("suffix must survive the truncation")
	}
	if a[:len(a)-5] != b[:len(b)-5] {
		t.Errorf("%q and %q should share the base", a, b)
	}
	if !slugPattern.MatchString(a) {
		t.Errorf("%q is not a valid slug", a)
	}
}

func TestProfile_LongNamesKeepEmployeeID(t *testing.T) {
	company := "Northwind International Logistics and Supply Grp"
	name := "Alexandrina Konstantopoulou-Papadimitriou"

	first := Profile(company, "HR", name, "EMP-0001")
	second := Profile(company, "HR", name, "EMP-0002")
	if len(first) > MaxLength || len(second) > MaxLength {
		t.Fatalf("lengths %d and %d exceed %d", len(first), len(second), MaxLength)
	}
	if !strings.HasSuffix(first, "-emp-0001") || !strings.HasSuffix(second, "-emp-0002") {
		t.Errorf("employee id cut off: %q / %q", first, second)
	}

	retry := ProfileWithSuffix(company, "HR", name, "EMP-0001", 5)
	if len(retry) > MaxLength {
		t.Errorf("retry len = %d", len(retry))
	}
	if !strings.Contains(retry, "-emp-0001-") || retry == first {
		t.Errorf("retry slug %q should add a suffix after the employee id", retry)
	}
	if !slugPattern.MatchString(retry) {
		t.Errorf("%q is not a valid slug", retry)
	}
}
