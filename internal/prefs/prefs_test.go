package prefs

import "testing"

func fptr(v float64) *float64 { return &v }

func TestPrefsInputValidate(t *testing.T) {
	cases := []struct {
		name      string
		in        prefsInput
		ok        bool
		wantLevel string
	}{
		{"empty input", prefsInput{}, true, ""},
		{"alias level normalized", prefsInput{Level: "sec"}, true, "SECONDARY"},
		{"canonical level kept", prefsInput{Level: "JUNIOR_COLLEGE"}, true, "JUNIOR_COLLEGE"},
		{"unknown level rejected", prefsInput{Level: "montessori"}, false, ""},
		{"valid postal", prefsInput{HomePostal: "238801"}, true, ""},
		{"short postal rejected", prefsInput{HomePostal: "1234"}, false, ""},
		{"alpha postal rejected", prefsInput{HomePostal: "23880a"}, false, ""},
		{"positive distance", prefsInput{MaxDistanceKm: fptr(5)}, true, ""},
		{"zero distance rejected", prefsInput{MaxDistanceKm: fptr(0)}, false, ""},
		{"negative distance rejected", prefsInput{MaxDistanceKm: fptr(-3)}, false, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.in
			code, ok := in.validate()
			if ok != tc.ok {
				t.Fatalf("validate() ok = %v, want %v (code %q)", ok, tc.ok, code)
			}
			if !ok && code != "VALIDATION_ERROR" {
				t.Errorf("code = %q, want VALIDATION_ERROR", code)
			}
			if tc.ok && tc.wantLevel != "" && in.Level != tc.wantLevel {
				t.Errorf("normalized level = %q, want %q", in.Level, tc.wantLevel)
			}
		})
	}
}
