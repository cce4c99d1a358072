// Package parser provides slide range parsing for PPTrans.
package parser

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"pptrans/internal/logger"
	"pptrans/internal/types"
)

var (
	// Anything that is not a digit, comma or dash is stray input
	// (e.g. "16-18l" from a mistyped range) and is stripped rather
	// than rejected.
	strayCharsPattern = regexp.MustCompile(`[^0-9\-,]`)
)

// ParseRange parses a user slide-range specification into a sorted,
// deduplicated list of 0-based slide indices.
//
// Supported formats:
//   - "all" (or empty) for every slide
//   - single slide: "5"
//   - range: "5-10" (reversed bounds are swapped, not rejected)
//   - combinations: "1-3,5,7-9"
//
// Slide numbers are 1-based and must fall within [1, totalSlides].
func ParseRange(spec string, totalSlides int) ([]int, error) {
	logger.Debug("parsing slide range", logger.String("spec", spec), logger.Int("totalSlides", totalSlides))

	if totalSlides <= 0 {
		return nil, types.NewAppError(types.ErrRangeSyntax, "presentation has no slides", nil)
	}

	spec = strings.ToLower(strings.TrimSpace(spec))

	if spec == "" || spec == "all" {
		indices := make([]int, totalSlides)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}

	cleaned := strayCharsPattern.ReplaceAllString(spec, "")
	if cleaned == "" {
		logger.Warn("slide range contains no usable characters", logger.String("spec", spec))
		return nil, types.NewAppErrorWithDetails(types.ErrRangeSyntax,
			"invalid slide range", fmt.Sprintf("%q contains no valid numbers", spec), nil)
	}

	seen := make(map[int]bool)

	for _, token := range strings.Split(cleaned, ",") {
		if token == "" {
			continue
		}

		if strings.Contains(token, "-") {
			start, end, err := parseRangeToken(token, totalSlides)
			if err != nil {
				return nil, err
			}
			for n := start; n <= end; n++ {
				seen[n-1] = true
			}
		} else {
			n, err := parseSlideNumber(token, totalSlides)
			if err != nil {
				return nil, err
			}
			seen[n-1] = true
		}
	}

	if len(seen) == 0 {
		return nil, types.NewAppErrorWithDetails(types.ErrRangeSyntax,
			"invalid slide range", fmt.Sprintf("no valid slides in %q", spec), nil)
	}

	indices := make([]int, 0, len(seen))
	for idx := range seen {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	logger.Debug("slide range parsed", logger.String("spec", spec), logger.Int("count", len(indices)))
	return indices, nil
}

// parseRangeToken parses a "start-end" token and returns validated 1-based
// bounds with start <= end.
func parseRangeToken(token string, totalSlides int) (int, int, error) {
	parts := strings.Split(token, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return 0, 0, types.NewAppErrorWithDetails(types.ErrRangeSyntax,
			"invalid slide range", fmt.Sprintf("%q is not a start-end pair", token), nil)
	}

	start, err := parseSlideNumber(parts[0], totalSlides)
	if err != nil {
		return 0, 0, err
	}
	end, err := parseSlideNumber(parts[1], totalSlides)
	if err != nil {
		return 0, 0, err
	}

	// Reversed bounds are a common typo; swap instead of failing.
	if start > end {
		logger.Debug("swapping reversed slide range", logger.String("token", token))
		start, end = end, start
	}

	return start, end, nil
}

// parseSlideNumber parses a single 1-based slide number and validates bounds.
func parseSlideNumber(token string, totalSlides int) (int, error) {
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, types.NewAppErrorWithDetails(types.ErrRangeSyntax,
			"invalid slide range", fmt.Sprintf("%q is not a number", token), err)
	}

	if n < 1 {
		return 0, types.NewAppErrorWithDetails(types.ErrRangeSyntax,
			"invalid slide range", fmt.Sprintf("slide numbers are 1-based, got %d", n), nil)
	}
	if n > totalSlides {
		return 0, types.NewAppErrorWithDetails(types.ErrRangeSyntax,
			"invalid slide range", fmt.Sprintf("slide %d exceeds available slides (1-%d)", n, totalSlides), nil)
	}

	return n, nil
}

// ValidateRangeInput checks the syntax of a range specification without
// knowing the slide count. Useful for validating user input up front.
func ValidateRangeInput(spec string) error {
	spec = strings.ToLower(strings.TrimSpace(spec))
	if spec == "" || spec == "all" {
		return nil
	}

	cleaned := strayCharsPattern.ReplaceAllString(spec, "")
	if cleaned == "" {
		return types.NewAppErrorWithDetails(types.ErrRangeSyntax,
			"invalid slide range", fmt.Sprintf("%q contains no valid numbers", spec), nil)
	}

	for _, token := range strings.Split(cleaned, ",") {
		if token == "" {
			continue
		}
		if strings.Contains(token, "-") {
			parts := strings.Split(token, "-")
			if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
				return types.NewAppErrorWithDetails(types.ErrRangeSyntax,
					"invalid slide range", fmt.Sprintf("%q is not a start-end pair", token), nil)
			}
		}
	}

	return nil
}
