package volume

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// alsaPercent converts a raw playback volume to a percentage of the
// element's own maximum.
func alsaPercent(raw, max int64) int {
	if max <= 0 {
		return MinVolume
	}
	return Clamp(int(math.Round(float64(raw) * 100 / float64(max))))
}

// alsaRaw converts a percentage to a raw playback volume, truncating like
// integer division and keeping the result inside [min, max].
func alsaRaw(percent int, min, max int64) int64 {
	raw := int64(percent) * max / 100
	if raw < min {
		return min
	}
	if raw > max {
		return max
	}
	return raw
}

// scalarPercent converts a Core Audio scalar in [0, 1] to a percentage.
func scalarPercent(scalar float32) int {
	return Clamp(int(math.Round(float64(scalar) * 100)))
}

// percentScalar converts a percentage to a Core Audio scalar.
func percentScalar(percent int) float32 {
	return float32(percent) / 100
}

var amixerPercentRe = regexp.MustCompile(`\[(\d+)%\]`)

// parseAmixerPercent returns the first [NN%] value of `amixer get` output.
func parseAmixerPercent(out string) (int, error) {
	matches := amixerPercentRe.FindStringSubmatch(out)
	if len(matches) < 2 {
		return 0, fmt.Errorf("could not parse amixer output")
	}
	v, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("parse amixer percent: %w", err)
	}
	return Clamp(v), nil
}

// parseOsascriptVolume parses the output of
// `output volume of (get volume settings)`.
func parseOsascriptVolume(out string) (int, error) {
	var v int
	if _, err := fmt.Sscanf(out, "%d", &v); err != nil {
		return 0, fmt.Errorf("parse osascript output %q: %w", out, err)
	}
	return Clamp(v), nil
}
