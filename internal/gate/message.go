// Package gate speaks the hardware side of the system: a byte-oriented
// duplex channel to the gate/terminal controller. Outbound traffic is
// single-byte command codes; inbound traffic is newline-delimited text,
// decoded once at the channel boundary into tagged messages.
package gate

import (
	"strconv"
	"strings"
)

// Command codes accepted by the actuator.
const (
	CmdOpen         byte = '1'
	CmdClose        byte = '0'
	CmdAlertPayment byte = '2' // payment pending / no record
	CmdAlertStale   byte = '3' // stale payment / unhandled state
	CmdStopAlert    byte = 'S'
)

// insufficientLine tells the payment terminal the card cannot cover the
// fee.
const insufficientLine = "I"

// MessageKind tags a decoded inbound line.
type MessageKind int

const (
	KindUnknown MessageKind = iota
	KindDistance
	KindInfo
	KindReady
	KindDone
	KindBalanceReport
)

// Message is one decoded line from the hardware.
type Message struct {
	Kind MessageKind
	Raw  string

	Distance float64 // KindDistance: proximity reading in cm
	Text     string  // KindInfo: diagnostic text after the MSG: prefix
	Plate    string  // KindBalanceReport
	Balance  int64   // KindBalanceReport
}

// ParseMessage decodes one raw line. Lines that fit no known shape come
// back as KindUnknown with Raw preserved for logging; the protocol treats
// them as noise, never as faults.
func ParseMessage(line string) Message {
	line = strings.TrimSpace(line)

	switch {
	case strings.HasPrefix(line, "DIST:"):
		v, err := strconv.ParseFloat(strings.TrimPrefix(line, "DIST:"), 64)
		if err != nil {
			return Message{Kind: KindUnknown, Raw: line}
		}
		return Message{Kind: KindDistance, Raw: line, Distance: v}

	case strings.HasPrefix(line, "MSG:"):
		return Message{Kind: KindInfo, Raw: line, Text: strings.TrimPrefix(line, "MSG:")}

	case line == "READY":
		return Message{Kind: KindReady, Raw: line}

	case strings.Contains(line, "DONE"):
		return Message{Kind: KindDone, Raw: line}

	case strings.Contains(line, ","):
		return parseBalanceReport(line)

	default:
		return Message{Kind: KindUnknown, Raw: line}
	}
}

// parseBalanceReport decodes a "PLATE,AMOUNT" pair from the payment
// terminal. The amount may carry stray non-digit bytes from the card
// reader, so digits are sieved out before parsing.
func parseBalanceReport(line string) Message {
	parts := strings.SplitN(line, ",", 2)
	plate := strings.TrimSpace(parts[0])

	var digits strings.Builder
	for _, c := range parts[1] {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	if plate == "" || digits.Len() == 0 {
		return Message{Kind: KindUnknown, Raw: line}
	}

	balance, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return Message{Kind: KindUnknown, Raw: line}
	}
	return Message{Kind: KindBalanceReport, Raw: line, Plate: plate, Balance: balance}
}
