package parser

import (
	"reflect"
	"testing"

	"pptrans/internal/types"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name        string
		spec        string
		totalSlides int
		want        []int
		wantErr     bool
	}{
		{
			name:        "all keyword",
			spec:        "all",
			totalSlides: 10,
			want:        []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		},
		{
			name:        "empty spec means all",
			spec:        "",
			totalSlides: 3,
			want:        []int{0, 1, 2},
		},
		{
			name:        "single slide",
			spec:        "5",
			totalSlides: 10,
			want:        []int{4},
		},
		{
			name:        "simple range",
			spec:        "5-7",
			totalSlides: 10,
			want:        []int{4, 5, 6},
		},
		{
			name:        "mixed singles and ranges",
			spec:        "1,3,5-7",
			totalSlides: 10,
			want:        []int{0, 2, 4, 5, 6},
		},
		{
			name:        "reversed range is swapped",
			spec:        "7-5",
			totalSlides: 10,
			want:        []int{4, 5, 6},
		},
		{
			name:        "duplicates removed",
			spec:        "2,2,1-3",
			totalSlides: 5,
			want:        []int{0, 1, 2},
		},
		{
			name:        "stray characters stripped",
			spec:        "16-18l",
			totalSlides: 20,
			want:        []int{15, 16, 17},
		},
		{
			name:        "whitespace tolerated",
			spec:        " 1, 3 ",
			totalSlides: 5,
			want:        []int{0, 2},
		},
		{
			name:        "zero is out of bounds",
			spec:        "0-5",
			totalSlides: 10,
			wantErr:     true,
		},
		{
			name:        "exceeds slide count",
			spec:        "11",
			totalSlides: 10,
			wantErr:     true,
		},
		{
			name:        "bare dash",
			spec:        "-",
			totalSlides: 10,
			wantErr:     true,
		},
		{
			name:        "no usable characters",
			spec:        "abc",
			totalSlides: 10,
			wantErr:     true,
		},
		{
			name:        "only commas",
			spec:        ",,,",
			totalSlides: 10,
			wantErr:     true,
		},
		{
			name:        "empty presentation",
			spec:        "1",
			totalSlides: 0,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.spec, tt.totalSlides)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseRange(%q, %d) = %v, want error", tt.spec, tt.totalSlides, got)
				}
				if types.CodeOf(err) != types.ErrRangeSyntax {
					t.Errorf("error code = %v, want %v", types.CodeOf(err), types.ErrRangeSyntax)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRange(%q, %d) unexpected error: %v", tt.spec, tt.totalSlides, err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseRange(%q, %d) = %v, want %v", tt.spec, tt.totalSlides, got, tt.want)
			}
		})
	}
}

func TestParseRangeReversedEqualsForward(t *testing.T) {
	fwd, err := ParseRange("5-7", 10)
	if err != nil {
		t.Fatal(err)
	}
	rev, err := ParseRange("7-5", 10)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(fwd, rev) {
		t.Errorf("reversed range %v != forward range %v", rev, fwd)
	}
}

func TestValidateRangeInput(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{"all", false},
		{"", false},
		{"1-3,5", false},
		{"7-5", false},
		{"abc", true},
		{"-", true},
		{"1-2-3", true},
	}

	for _, tt := range tests {
		err := ValidateRangeInput(tt.spec)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateRangeInput(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
		}
	}
}
