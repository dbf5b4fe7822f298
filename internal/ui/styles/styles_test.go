// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b uint8
		wantErr bool
	}{
		{"#427FE1", 0x42, 0x7F, 0xE1, false},
		{"#fff", 0xFF, 0xFF, 0xFF, false},
		{"000000", 0, 0, 0, false},
		{"#12345", 0, 0, 0, true},
		{"#zzzzzz", 0, 0, 0, true},
		{"", 0, 0, 0, true},
	}
	for _, tt := range tests {
		r, g, b, err := ParseHex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHex(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && (r != tt.r || g != tt.g || b != tt.b) {
			t.Errorf("ParseHex(%q) = %d,%d,%d", tt.in, r, g, b)
		}
	}
}

func TestNormalizeHex(t *testing.T) {
	if got := NormalizeHex("#abc"); got != "#AABBCC" {
		t.Errorf("NormalizeHex(#abc) = %q", got)
	}
	if got := NormalizeHex("blue"); got != DefaultMainColor {
		t.Errorf("NormalizeHex(blue) = %q, want default", got)
	}
}

func TestContrastText(t *testing.T) {
	if ContrastText("#FFFFFF") == TextInverse {
		t.Error("white background needs dark text")
	}
	if ContrastText("#000080") != TextInverse {
		t.Error("navy background needs light text")
	}
}

func TestNewThemeExplicitModes(t *testing.T) {
	dark := NewTheme("dark", "#ff0000")
	if !dark.IsDark {
		t.Error("dark mode should set IsDark")
	}
	if dark.MainColor != "#FF0000" {
		t.Errorf("MainColor = %q", dark.MainColor)
	}

	light := NewTheme("light", "nope")
	if light.IsDark {
		t.Error("light mode should clear IsDark")
	}
	if light.MainColor != DefaultMainColor {
		t.Errorf("MainColor = %q, want default", light.MainColor)
	}

	if light.Header.Render("x") == "" {
		t.Error("Header style should render")
	}
}

func TestWithMainColor(t *testing.T) {
	base := NewTheme("dark", "#000000")
	other := base.WithMainColor("#00ff00")
	if base.MainColor != "#000000" {
		t.Error("WithMainColor must not mutate the receiver")
	}
	if other.MainColor != "#00FF00" {
		t.Errorf("MainColor = %q", other.MainColor)
	}
}
