package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/sjson"
)

// setPatchField writes one key=value edit into the JSON patch document.
// Values are sniffed: bools and numbers stay typed, comma lists become
// string arrays, everything else is a string.
func setPatchField(doc []byte, path, raw string) ([]byte, error) {
	out, err := sjson.SetBytes(doc, path, parseScalar(raw))
	if err != nil {
		return nil, fmt.Errorf("setting %s: %w", path, err)
	}
	return out, nil
}

func parseScalar(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		ints := make([]int, 0, len(parts))
		allInts := true
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
			n, err := strconv.Atoi(parts[i])
			if err != nil {
				allInts = false
				continue
			}
			ints = append(ints, n)
		}
		if allInts {
			return ints
		}
		return parts
	}
	return raw
}

func timeNow() time.Time {
	return time.Now().UTC()
}
