// Package xer reads Primavera P6 XER exports.
//
// An XER file is tab-separated text: an ERMHDR line, then for each table a
// %T line naming it, a %F line of field names and any number of %R rows,
// closed by a single %E line.
package xer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ErrNotXER is returned when the input has no tables.
var ErrNotXER = errors.New("xer: no tables found")

// ParseResult holds the output of parsing a single XER file.
type ParseResult struct {
	File        DiscoveredFile
	Data        *File
	ParseErrors int
	Err         error
}

// ParseFile reads and parses one discovered file. Malformed lines are counted
// in ParseErrors and skipped.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{File: df, Err: err}
	}
	defer func() { _ = f.Close() }()

	data, bad, err := parse(f)
	return ParseResult{File: df, Data: data, ParseErrors: bad, Err: err}
}

// Parse reads an XER document from r.
func Parse(r io.Reader) (*File, error) {
	f, _, err := parse(r)
	return f, err
}

func parse(r io.Reader) (*File, int, error) {
	file := &File{Tables: make(map[string]*Table)}
	var (
		cur *Table
		bad int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 256*1024), 8*1024*1024)

	for scanner.Scan() {
		line := decodeLine(scanner.Bytes())
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		marker, rest, _ := strings.Cut(line, "\t")
		switch marker {
		case "ERMHDR":
			file.Header = strings.Split(rest, "\t")
		case "%T":
			name := strings.TrimSpace(rest)
			if name == "" {
				bad++
				cur = nil
				continue
			}
			cur = &Table{Name: name}
			file.Tables[name] = cur
			file.Order = append(file.Order, name)
		case "%F":
			if cur == nil {
				bad++
				continue
			}
			cur.Fields = strings.Split(rest, "\t")
			cur.index = nil
		case "%R":
			if cur == nil || cur.Fields == nil {
				bad++
				continue
			}
			cur.Rows = append(cur.Rows, strings.Split(rest, "\t"))
		case "%E":
			cur = nil
		default:
			bad++
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, bad, fmt.Errorf("reading xer: %w", err)
	}
	if len(file.Tables) == 0 {
		return nil, bad, ErrNotXER
	}
	return file, bad, nil
}

// decodeLine returns the line as UTF-8. P6 writes XER in the Windows code page
// unless told otherwise, so non-UTF-8 lines are decoded as Windows-1252.
func decodeLine(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	s, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}
