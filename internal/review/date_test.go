// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package review

import "testing"

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string // 2006-01-02, empty for nil
	}{
		{"28/Dic/2016", "2016-12-28"},
		{"5/ene/2020", "2020-01-05"},
		{"05/AGO/2019", "2019-08-05"},
		{" 1/Abr/2021 ", "2021-04-01"},
		{"2021-03-04", "2021-03-04"},
		{"04/03/2021", "2021-03-04"}, // day first wins
		{"12/31/2021", "2021-12-31"}, // falls through to month first
		{"2021/03/04", "2021-03-04"},
		{"31/Feb/2020", ""},
		{"28/Xyz/2016", ""},
		{"yesterday", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got := ParseDate(tt.in)
			switch {
			case tt.want == "" && got != nil:
				t.Errorf("ParseDate(%q) = %v, want nil", tt.in, got)
			case tt.want != "" && got == nil:
				t.Errorf("ParseDate(%q) = nil, want %s", tt.in, tt.want)
			case got != nil && got.Format("2006-01-02") != tt.want:
				t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestFormatISO(t *testing.T) {
	t.Parallel()

	if FormatISO(nil) != nil {
		t.Error("expected nil for absent date")
	}
	d := ParseDate("28/Dic/2016")
	if got := *FormatISO(d); got != "2016-12-28T00:00:00" {
		t.Errorf("expected 2016-12-28T00:00:00, got %s", got)
	}
}
