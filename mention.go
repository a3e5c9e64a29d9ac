package main

import (
	"errors"
	"regexp"
	"strings"
)

var errNoMention = errors.New("no candidate mention found")

// mentionPattern accepts <@U123>, <@U123|name>, @U123 or a bare U123 at the
// start of the command text, separated from the slots by spaces, commas or
// semicolons.
var mentionPattern = regexp.MustCompile(`^(?:<@([A-Z0-9]+)(?:\|[^>]*)?>[\s,;]*|@([A-Z0-9]+)(?:[\s,;]+|$)|([A-Z0-9]+)(?:[\s,;]+|$))`)

// extractMention splits a scheduling command into the candidate id and the
// free-text slot description that follows it.
func extractMention(text string) (string, string, error) {
	text = strings.TrimSpace(text)
	loc := mentionPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", "", errNoMention
	}
	var candidate string
	for group := 1; group <= 3; group++ {
		if start := loc[2*group]; start >= 0 {
			candidate = text[start:loc[2*group+1]]
			break
		}
	}
	return candidate, strings.TrimSpace(text[loc[1]:]), nil
}
