package validation

import (
	"regexp"
	"testing"
	"time"
)

const errNameRequired = "Name is required."

func TestRequired(t *testing.T) {
	tests := []struct {
		name    string
		maxLen  int
		value   string
		wantErr string
	}{
		{name: "valid input", maxLen: 10, value: "valid"},
		{name: "empty string", maxLen: 10, value: "", wantErr: errNameRequired},
		{name: "whitespace only", maxLen: 10, value: "   ", wantErr: errNameRequired},
		{name: "multibyte within limit", maxLen: 2, value: "太郎"},
		{name: "too long", maxLen: 2, value: "田中太", wantErr: "Name cannot exceed 2 characters."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Required("Name", tt.maxLen)(tt.value); got != tt.wantErr {
				t.Errorf("Required() = %q, want %q", got, tt.wantErr)
			}
		})
	}
}

func TestMinLen(t *testing.T) {
	v := MinLen("Username", 3)
	if v("ab") == "" {
		t.Error("expected error for short value")
	}
	if v("") != "" {
		t.Error("empty value is Required's concern")
	}
	if v("abc") != "" {
		t.Error("expected abc to pass")
	}
}

func TestIntRange(t *testing.T) {
	v := IntRange("Birth hour", 0, 23)
	for _, ok := range []string{"0", "12", " 23 "} {
		if got := v(ok); got != "" {
			t.Errorf("IntRange(%q) = %q, want ok", ok, got)
		}
	}
	if got := v("24"); got != "Birth hour must be between 0 and 23." {
		t.Errorf("unexpected message %q", got)
	}
	if got := v("noon"); got != "Birth hour must be a number." {
		t.Errorf("unexpected message %q", got)
	}
}

func TestPattern(t *testing.T) {
	v := Pattern("Code", regexp.MustCompile(`^[a-z]+$`))
	if v("") != "" || v("abc") != "" {
		t.Error("expected empty and matching values to pass")
	}
	if v("ABC") == "" {
		t.Error("expected non-matching value to fail")
	}
}

func TestOptional(t *testing.T) {
	v := Optional("Display name", 3)
	if v("") != "" || v("abc") != "" {
		t.Error("expected values within limit to pass")
	}
	if v("abcd") == "" {
		t.Error("expected long value to fail")
	}
}

func TestEmail(t *testing.T) {
	v := Email("Email")
	if v("b@example.com") != "" {
		t.Error("expected valid email to pass")
	}
	for _, bad := range []string{"", "b@", "b example@x.com", "b@example"} {
		if v(bad) == "" {
			t.Errorf("expected %q to fail", bad)
		}
	}
}

func TestPassword(t *testing.T) {
	v := Password("Password", 8)
	if got := v("short1"); got != "Password must be at least 8 characters." {
		t.Errorf("unexpected message %q", got)
	}
	if got := v("onlyletters"); got != "Password must include letters and numbers." {
		t.Errorf("unexpected message %q", got)
	}
	if got := v("12345678"); got == "" {
		t.Error("expected digits-only password to fail")
	}
	if got := v("letters123"); got != "" {
		t.Errorf("expected valid password, got %q", got)
	}
}

func TestASCIIPrintable(t *testing.T) {
	v := ASCIIPrintable("Username")
	if v("user_01!") != "" {
		t.Error("expected ascii username to pass")
	}
	for _, bad := range []string{"user name", "ユーザー", "ｕｓｅｒ"} {
		if v(bad) == "" {
			t.Errorf("expected %q to fail", bad)
		}
	}
}

func TestNotFutureDate(t *testing.T) {
	loc := time.FixedZone("JST", 9*60*60)
	now := func() time.Time { return time.Date(2024, 5, 10, 15, 0, 0, 0, loc) }
	v := NotFutureDate("Birth date", now)

	tests := []struct {
		value string
		ok    bool
	}{
		{"1990-01-01", true},
		{"2024-05-10", true},
		{"2024-05-11", false},
		{"2024-02-30", false},
		{"not-a-date", false},
		{"", false},
	}

	for _, tt := range tests {
		got := v(tt.value)
		if (got == "") != tt.ok {
			t.Errorf("NotFutureDate(%q) = %q, want ok=%v", tt.value, got, tt.ok)
		}
	}
}

func TestFieldValidator(t *testing.T) {
	fv := New().
		Validate("name", "", Required("Name", 10)).
		Validate("email", "bad", Required("Email", 100), Email("Email")).
		Validate("ok", "fine", Required("Ok", 10))

	if fv.Valid() {
		t.Fatal("expected validator to report errors")
	}
	errs := fv.Errors()
	if errs["name"] != errNameRequired {
		t.Errorf("unexpected name error %q", errs["name"])
	}
	if errs["email"] != "Email format is invalid." {
		t.Errorf("unexpected email error %q", errs["email"])
	}
	if _, ok := errs["ok"]; ok {
		t.Error("did not expect an error for ok field")
	}
}
