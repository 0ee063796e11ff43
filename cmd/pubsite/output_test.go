package main

import (
	"errors"
	"fmt"
	"testing"
	"unicode/utf8"

	"github.com/matsen/pubsite/internal/source"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"Schrödinger équations", 10, "Schrödi..."},
		{"日本語のタイトルです", 9, "日本語のタイ..."},
		{"日本語のタイトル", 8, "日本語のタイトル"},
		{"tiny", 2, "ti"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
			if got := truncateString(tt.input, tt.maxLen); !utf8.ValidString(got) {
				t.Errorf("truncateString(%q, %d) = %q is not valid UTF-8", tt.input, tt.maxLen, got)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{false, true} {
		l, err := newLogger(debug)
		if err != nil {
			t.Fatalf("newLogger(%v) error = %v", debug, err)
		}
		if got := l.Core().Enabled(-1); got != debug {
			t.Errorf("newLogger(%v) debug enabled = %v", debug, got)
		}
	}
}

func TestLoadErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing file", fmt.Errorf("%w: references.bib", source.ErrNotFound), ExitConfigError},
		{"upstream 404", &source.StatusError{StatusCode: 404}, ExitConfigError},
		{"upstream 500", &source.StatusError{StatusCode: 500}, ExitDataError},
		{"other", errors.New("boom"), ExitDataError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loadErrorCode(tt.err); got != tt.want {
				t.Errorf("loadErrorCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
