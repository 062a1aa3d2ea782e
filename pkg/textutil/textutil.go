// Package textutil provides text helpers shared by the scanner and the file
// runner: binary detection, line counting and newline-aware line splitting.
package textutil

import (
	"bytes"
	"strings"
)

// BinarySniffLength is the maximum number of bytes scanned for null-byte
// detection. Matches the heuristic used by Git and most editors.
const BinarySniffLength = 8000

// Line terminators recognized by SplitLines.
const (
	LF   = "\n"
	CRLF = "\r\n"
)

// IsBinary returns true if data contains a null byte within the first
// BinarySniffLength bytes. Empty data is not binary.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	sniff := data
	if len(sniff) > BinarySniffLength {
		sniff = sniff[:BinarySniffLength]
	}

	return bytes.IndexByte(sniff, 0) >= 0
}

// CountLines returns the number of newline-delimited lines in data.
// A non-empty buffer without a trailing newline counts the last partial line.
// Returns 0 for empty data.
func CountLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}

	lines := bytes.Count(data, []byte{'\n'})

	if data[len(data)-1] != '\n' {
		lines++
	}

	return lines
}

// DetectNewline returns CRLF when the first line break in text is "\r\n",
// LF otherwise.
func DetectNewline(text string) string {
	idx := strings.IndexByte(text, '\n')
	if idx > 0 && text[idx-1] == '\r' {
		return CRLF
	}

	return LF
}

// SplitLines splits text into lines without their terminators. It also
// returns the detected terminator and whether text ended with a line break.
// Empty text yields no lines.
func SplitLines(text string) (lines []string, newline string, trailing bool) {
	newline = DetectNewline(text)
	if text == "" {
		return nil, newline, false
	}

	trailing = strings.HasSuffix(text, "\n")
	if trailing {
		text = text[:len(text)-1]
	}

	lines = strings.Split(text, "\n")
	for idx, line := range lines {
		lines[idx] = strings.TrimSuffix(line, "\r")
	}

	return lines, newline, trailing
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string, newline string, trailing bool) string {
	out := strings.Join(lines, newline)
	if trailing {
		out += newline
	}

	return out
}
