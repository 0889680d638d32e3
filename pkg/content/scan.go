package content

import (
	"bufio"
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/arthur-debert/rulescan/pkg/errors"
)

// maxLineLength bounds how long a single line the streaming scanner
// accepts. Minified assets routinely pack a whole file into one line.
const maxLineLength = 1 << 20

// scanInMemory reads the whole file and matches line by line. Used for
// files under the streaming threshold.
func (a *Analyzer) scanInMemory(analysis *Analysis, re *regexp.Regexp) error {
	data, err := a.fs.ReadFile(analysis.Path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read file %s", analysis.Path)
	}
	analysis.bytesRead = int64(len(data))

	sample := data
	if len(sample) > binarySniffSize {
		sample = sample[:binarySniffSize]
	}
	if isBinaryData(sample) {
		analysis.IsBinary = true
		return nil
	}

	lineNo := 0
	for len(data) > 0 {
		lineNo++
		line := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line = data[:i]
			data = data[i+1:]
		} else {
			data = nil
		}
		text := strings.TrimSuffix(string(line), "\r")
		if !appendLineMatches(analysis, re, text, lineNo) {
			break
		}
	}
	return nil
}

// scanStreaming matches line by line without holding the file in
// memory. The binary sniff consumes the head of the stream, so the
// scanner reads a MultiReader that replays it.
func (a *Analyzer) scanStreaming(analysis *Analysis, re *regexp.Regexp) error {
	f, err := a.fs.Open(analysis.Path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to open file %s", analysis.Path)
	}
	defer f.Close()

	sniff := make([]byte, binarySniffSize)
	n, err := io.ReadFull(f, sniff)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read file %s", analysis.Path)
	}
	sniff = sniff[:n]
	if isBinaryData(sniff) {
		analysis.IsBinary = true
		analysis.bytesRead = int64(n)
		return nil
	}

	scanner := bufio.NewScanner(io.MultiReader(bytes.NewReader(sniff), f))
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()
		analysis.bytesRead += int64(len(scanner.Bytes())) + 1
		if !appendLineMatches(analysis, re, text, lineNo) {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		// A mid-stream read error keeps whatever matched before it.
		a.logger.Warn().
			Err(err).
			Str("path", analysis.Path).
			Int("matches", len(analysis.Matches)).
			Msg("Content scan ended early on read error")
	}
	return nil
}

// appendLineMatches records every occurrence of the pattern on one
// line. Returns false once the match cap is reached.
func appendLineMatches(analysis *Analysis, re *regexp.Regexp, text string, lineNo int) bool {
	locs := re.FindAllStringIndex(text, -1)
	for _, loc := range locs {
		if len(analysis.Matches) >= MaxMatches {
			return false
		}
		analysis.Matches = append(analysis.Matches, Match{
			Line:     lineNo,
			Column:   loc[0] + 1,
			LineText: text,
			Text:     text[loc[0]:loc[1]],
		})
	}
	return len(analysis.Matches) < MaxMatches
}
