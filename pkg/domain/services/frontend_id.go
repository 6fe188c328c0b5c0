package services

import (
	"fmt"
	"regexp"
	"strconv"
)

// Frontend ID prefixes for the record types that carry human-facing
// identifiers like "PND-00042"
const (
	PendingPrefix = "PND"
	RemnantPrefix = "WST"
	JumboPrefix   = "JR"
	SetRollPrefix = "SR"
	CutRollPrefix = "CR"
)

var frontendIDPattern = regexp.MustCompile(`^([A-Z]+)-(\d+)$`)

// NextFrontendID derives the next human-facing identifier from the highest
// sequence currently stored. It is a pure function: the store owns the
// counter and whatever locking its backend requires.
func NextFrontendID(prefix string, currentMax int) string {
	if currentMax < 0 {
		currentMax = 0
	}
	return fmt.Sprintf("%s-%05d", prefix, currentMax+1)
}

// ParseFrontendID splits an identifier like "PND-00042" into its prefix
// and sequence number
func ParseFrontendID(id string) (string, int, error) {
	matches := frontendIDPattern.FindStringSubmatch(id)
	if len(matches) != 3 {
		return "", 0, fmt.Errorf("invalid frontend id format: %s", id)
	}
	seq, err := strconv.Atoi(matches[2])
	if err != nil {
		return "", 0, fmt.Errorf("invalid sequence in frontend id %s: %v", id, err)
	}
	return matches[1], seq, nil
}
