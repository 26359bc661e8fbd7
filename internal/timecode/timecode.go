// Package timecode converts elapsed time into SMPTE-style HH:MM:SS:FF strings
// at a fixed frame rate and provides the per-take running clock.
package timecode

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FrameRate is the fixed number of frames per second for the slate.
const FrameRate = 24

// Zero is the display value while no clock is running.
const Zero = "00:00:00:00"

// Frames returns the number of whole frames elapsed. Frames are floored, so
// the value may lag real time by up to one frame. Negative input counts as zero.
func Frames(elapsed time.Duration) int64 {
	ms := elapsed.Milliseconds()
	if ms <= 0 {
		return 0
	}
	return ms * FrameRate / 1000
}

// Format returns the timecode for elapsed wall-clock time.
func Format(elapsed time.Duration) string {
	return FormatFrames(Frames(elapsed))
}

// FormatFrames renders a frame count as HH:MM:SS:FF. Hours have no upper
// bound and grow past two digits instead of wrapping.
func FormatFrames(elapsedFrames int64) string {
	if elapsedFrames < 0 {
		elapsedFrames = 0
	}
	frames := elapsedFrames % FrameRate
	totalSeconds := elapsedFrames / FrameRate
	seconds := totalSeconds % 60
	minutes := (totalSeconds / 60) % 60
	hours := totalSeconds / 3600

	var buf [24]byte
	b := appendPadded(buf[:0], hours)
	b = append(b, ':')
	b = appendPadded(b, minutes)
	b = append(b, ':')
	b = appendPadded(b, seconds)
	b = append(b, ':')
	b = appendPadded(b, frames)
	return string(b)
}

func appendPadded(b []byte, v int64) []byte {
	if v < 10 {
		b = append(b, '0')
	}
	return strconv.AppendInt(b, v, 10)
}

// Parse converts an HH:MM:SS:FF string back into a frame count.
func Parse(s string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 4 {
		return 0, fmt.Errorf("invalid timecode %q: want HH:MM:SS:FF", s)
	}

	var fields [4]int64
	for i, p := range parts {
		if len(p) < 2 {
			return 0, fmt.Errorf("invalid timecode %q: fields must be two digits", s)
		}
		if !allDigits(p) {
			return 0, fmt.Errorf("invalid timecode %q: %q is not a number", s, p)
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timecode %q: %q is out of range", s, p)
		}
		fields[i] = v
	}

	hours, minutes, seconds, frames := fields[0], fields[1], fields[2], fields[3]
	if minutes > 59 {
		return 0, fmt.Errorf("invalid timecode %q: minutes must be below 60", s)
	}
	if seconds > 59 {
		return 0, fmt.Errorf("invalid timecode %q: seconds must be below 60", s)
	}
	if frames >= FrameRate {
		return 0, fmt.Errorf("invalid timecode %q: frames must be below %d", s, FrameRate)
	}

	totalSeconds := hours*3600 + minutes*60 + seconds
	return totalSeconds*FrameRate + frames, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
