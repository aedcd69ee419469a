// Package transcript flattens WebVTT subtitle files into plain text.
package transcript

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"
)

var timestampPattern = regexp.MustCompile(`\d{2}:\d{2}:\d{2}\.\d{3} --> \d{2}:\d{2}:\d{2}\.\d{3}`)

// ExtractText reads subtitle-formatted content and returns the dialogue
// lines joined by single spaces, in original order. Timestamp lines, numeric
// cue indexes, the WEBVTT header, and blank lines are dropped. Malformed
// input is not an error; whatever dialogue lines remain are returned,
// possibly none.
func ExtractText(r io.Reader) string {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "WEBVTT" || strings.HasPrefix(line, "WEBVTT ") {
			continue
		}
		if timestampPattern.MatchString(line) {
			continue
		}
		if isCueIndex(line) {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, " ")
}

// ExtractTextFromFile is ExtractText over a file on disk.
func ExtractTextFromFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return ExtractText(f), nil
}

func isCueIndex(line string) bool {
	for _, r := range line {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
