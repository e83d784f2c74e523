package flatfile

import (
	"fmt"
	"strconv"
	"strings"

	"todo/internal/service"
)

const (
	// Delimiter separates the fields of a record. It is not escaped.
	Delimiter = "|"

	fieldCount = 4

	// recordOverhead covers the id, the timestamp, the flag, the delimiters
	// and a CRLF terminator.
	recordOverhead = 64

	// MaxDescriptionSize is the longest description whose record still
	// loads back.
	MaxDescriptionSize = maxLineSize - recordOverhead
)

// encodeLine renders a task as id|description|created_at|completed plus newline.
func encodeLine(t service.Task) string {
	return strconv.FormatInt(t.ID, 10) + Delimiter +
		t.Description + Delimiter +
		service.FormatTime(t.CreatedAt) + Delimiter +
		formatCompleted(t.Completed) + "\n"
}

// decodeLine parses one record. The caller strips the line terminator.
func decodeLine(line string) (service.Task, error) {
	fields := strings.Split(line, Delimiter)
	if len(fields) != fieldCount {
		return service.Task{}, fmt.Errorf("expected %d fields, got %d", fieldCount, len(fields))
	}

	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || id < 1 {
		return service.Task{}, fmt.Errorf("invalid id: %q", fields[0])
	}

	if strings.TrimSpace(fields[1]) == "" {
		return service.Task{}, fmt.Errorf("empty description for id %d", id)
	}

	createdAt, err := service.ParseTime(fields[2])
	if err != nil {
		return service.Task{}, fmt.Errorf("invalid timestamp: %q", fields[2])
	}

	completed, err := parseCompleted(fields[3])
	if err != nil {
		return service.Task{}, err
	}

	return service.Task{
		ID:          id,
		Description: fields[1],
		CreatedAt:   createdAt,
		Completed:   completed,
	}, nil
}

func formatCompleted(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func parseCompleted(s string) (bool, error) {
	switch s {
	case "True":
		return true, nil
	case "False":
		return false, nil
	default:
		return false, fmt.Errorf("invalid completed flag: %q", s)
	}
}

// validateDescription rejects text that would break the line format.
func validateDescription(desc string) error {
	if strings.Contains(desc, Delimiter) {
		return fmt.Errorf("%w: description must not contain %q", service.ErrInvalidInput, Delimiter)
	}
	if strings.ContainsAny(desc, "\r\n") {
		return fmt.Errorf("%w: description must not contain line breaks", service.ErrInvalidInput)
	}
	if len(desc) > MaxDescriptionSize {
		return fmt.Errorf("%w: description longer than %d bytes", service.ErrInvalidInput, MaxDescriptionSize)
	}
	return nil
}
