// Package protocol implements the line-based ASCII command protocol of the
// Shure SLX-D receiver family: building command lines, parsing response
// lines, and converting raw wire values to physical units.
package protocol

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NoChannel omits the channel number from a built command.
const NoChannel = -1

// ErrInvalidCommand indicates that a command cannot be built from the given
// property name or value. This is a caller-side validation error, detected
// before anything is written to the wire.
var ErrInvalidCommand = errors.New("invalid command")

// ErrMalformedResponse indicates a response line that does not follow the
// protocol grammar.
var ErrMalformedResponse = errors.New("malformed response")

var (
	propertyExp = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
	channelExp  = regexp.MustCompile(`^(\d+)\s+`)
	rssiExp     = regexp.MustCompile(`^RSSI\s+(\d+)\s+(\d+)`)
	bracedExp   = regexp.MustCompile(`^(\w+)\s+\{(.+)\}`)
)

// Response is a parsed line received from a receiver.
type Response struct {
	Kind     Kind
	Property string
	Channel  int    // 0 when the line carries no channel number
	Value    string // textual value, brace padding stripped
	Raw      int    // numeric value, valid when Numeric is true
	Numeric  bool
	Antenna  int   // antenna number of RSSI replies, 0 otherwise
	Values   []int // SAMPLE payload: peak, rms, rssi1, rssi2, antenna
}

// Build formats a command line of the given kind. Pass NoChannel to omit
// the channel number and the empty string to omit the value. The property
// name and value are validated against the protocol grammar; Build fails
// with ErrInvalidCommand before any I/O can happen.
func Build(kind Kind, property string, channel int, value string) (string, error) {
	if !propertyExp.MatchString(property) {
		return "", fmt.Errorf("%w: property %q must match [A-Z][A-Z0-9_]*", ErrInvalidCommand, property)
	}
	if strings.ContainsAny(value, "<>\r\n") {
		return "", fmt.Errorf("%w: value %q contains a protocol delimiter", ErrInvalidCommand, value)
	}

	parts := []string{string(kind)}
	if channel != NoChannel {
		parts = append(parts, strconv.Itoa(channel))
	}
	parts = append(parts, property)
	if value != "" {
		parts = append(parts, value)
	}
	return fmt.Sprintf("< %s >", strings.Join(parts, " ")), nil
}

// Parse decodes a single response line. It fails with ErrMalformedResponse
// on anything that does not follow the protocol grammar.
func Parse(line string) (Response, error) {
	if line == "" {
		return Response{}, fmt.Errorf("%w: empty line", ErrMalformedResponse)
	}

	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "<") || !strings.HasSuffix(line, ">") {
		return Response{}, fmt.Errorf("%w: %q", ErrMalformedResponse, line)
	}

	inner := strings.TrimSpace(line[1 : len(line)-1])
	if inner == "" {
		return Response{}, fmt.Errorf("%w: empty body in %q", ErrMalformedResponse, line)
	}

	kindToken, remaining, _ := strings.Cut(inner, " ")
	kind := Kind(kindToken)
	switch kind {
	case Get, Set, Rep, Sample:
	default:
		return Response{}, fmt.Errorf("%w: unknown kind %q", ErrMalformedResponse, kindToken)
	}

	remaining = strings.TrimSpace(remaining)
	if remaining == "" {
		return Response{}, fmt.Errorf("%w: nothing after kind in %q", ErrMalformedResponse, line)
	}

	if kind == Sample {
		return parseSample(remaining)
	}

	channel := 0
	if m := channelExp.FindStringSubmatch(remaining); m != nil {
		channel, _ = strconv.Atoi(m[1])
		remaining = remaining[len(m[0]):]
	}

	return parseRep(kind, remaining, channel)
}

func parseSample(remaining string) (Response, error) {
	parts := strings.Fields(remaining)
	if len(parts) < 2 {
		return Response{}, fmt.Errorf("%w: invalid SAMPLE body %q", ErrMalformedResponse, remaining)
	}

	channel, err := strconv.Atoi(parts[0])
	if err != nil {
		return Response{}, fmt.Errorf("%w: SAMPLE channel %q is not a number", ErrMalformedResponse, parts[0])
	}
	// parts[1] is the literal ALL marker
	values := make([]int, len(parts)-2)
	for i, part := range parts[2:] {
		values[i], err = strconv.Atoi(part)
		if err != nil {
			return Response{}, fmt.Errorf("%w: SAMPLE value %q is not a number", ErrMalformedResponse, part)
		}
	}

	return Response{
		Kind:     Sample,
		Property: "ALL",
		Channel:  channel,
		Values:   values,
	}, nil
}

func parseRep(kind Kind, remaining string, channel int) (Response, error) {
	if m := rssiExp.FindStringSubmatch(remaining); m != nil {
		antenna, _ := strconv.Atoi(m[1])
		raw, _ := strconv.Atoi(m[2])
		return Response{
			Kind:     kind,
			Property: PropRSSI,
			Channel:  channel,
			Raw:      raw,
			Numeric:  true,
			Antenna:  antenna,
		}, nil
	}

	if m := bracedExp.FindStringSubmatch(remaining); m != nil {
		return Response{
			Kind:     kind,
			Property: m[1],
			Channel:  channel,
			Value:    strings.TrimSpace(m[2]),
		}, nil
	}

	property, value, _ := strings.Cut(remaining, " ")
	if property == "" {
		return Response{}, fmt.Errorf("%w: no property in %q", ErrMalformedResponse, remaining)
	}
	value = strings.TrimSpace(value)

	result := Response{
		Kind:     kind,
		Property: property,
		Channel:  channel,
		Value:    value,
	}
	if raw, err := strconv.Atoi(value); err == nil {
		result.Raw = raw
		result.Numeric = true
	}
	return result, nil
}
