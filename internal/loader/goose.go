package loader

import (
	"errors"
	"strings"
)

// Goose annotation errors.
var (
	ErrDuplicateUp      = errors.New("duplicate '-- +goose Up' annotation")
	ErrUnterminatedStmt = errors.New("'-- +goose StatementBegin' without StatementEnd")
)

const gooseAnnotation = "-- +goose"

type section int

const (
	sectionNone section = iota
	sectionUp
	sectionDown
)

// UpSection returns content with everything outside the goose Up section
// blanked. Content without any goose annotation is returned unchanged.
// Line breaks are preserved so diagnostics keep their file positions.
func UpSection(content string) (string, error) {
	if !strings.Contains(content, gooseAnnotation) {
		return content, nil
	}

	lines := strings.SplitAfter(content, "\n")
	var b strings.Builder
	b.Grow(len(content))

	cur := sectionNone
	seenUp, inBlock := false, false
	for _, line := range lines {
		directive, ok := annotation(line)
		if ok {
			switch directive {
			case "up":
				if seenUp {
					return "", ErrDuplicateUp
				}
				seenUp, cur = true, sectionUp
			case "down":
				if inBlock {
					return "", ErrUnterminatedStmt
				}
				cur = sectionDown
			case "statementbegin":
				inBlock = true
			case "statementend":
				inBlock = false
			}
			b.WriteString(blank(line))
			continue
		}
		if cur == sectionUp {
			b.WriteString(line)
		} else {
			b.WriteString(blank(line))
		}
	}
	if inBlock {
		return "", ErrUnterminatedStmt
	}
	return b.String(), nil
}

// annotation returns the lowercased directive of a "-- +goose X" line.
func annotation(line string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), gooseAnnotation)
	if !ok {
		return "", false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", true
	}
	return strings.ToLower(fields[0]), true
}

// blank keeps only the line terminator.
func blank(line string) string {
	if strings.HasSuffix(line, "\r\n") {
		return "\r\n"
	}
	if strings.HasSuffix(line, "\n") {
		return "\n"
	}
	return ""
}
