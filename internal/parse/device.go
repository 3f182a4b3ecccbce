package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"device-inventory-backend/internal/model"
)

var (
	ipv4Re = regexp.MustCompile(`^(?:[0-9]{1,3}\.){3}[0-9]{1,3}$`)
	macRe  = regexp.MustCompile(`^([0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$`)
)

// Messages used in FieldErrors.
const (
	MsgRequired     = "Missing data for required field."
	MsgNotString    = "Not a valid string."
	MsgUnknownField = "Unknown field."
	MsgIPFormat     = "Invalid IPv4 address format"
	MsgIPRange      = "IPv4 octets must be between 0 and 255"
	MsgMACFormat    = "Invalid MAC address format (expected XX:XX:XX:XX:XX:XX)"
)

// ErrInvalidID is returned by ObjectID for anything that is not a
// 24-character hex object identifier.
var ErrInvalidID = errors.New("invalid object id")

// FieldErrors maps an input field name to its validation messages.
type FieldErrors map[string][]string

func (e FieldErrors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Error renders the messages sorted by field name, e.g.
// "ip_address: Invalid IPv4 address format; name: Missing data for required field."
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e[f], " "))
	}
	return strings.Join(parts, "; ")
}

// inputFields lists the accepted keys in wire order. "type" is stored as
// device_type.
var inputFields = []string{"name", "ip_address", "mac_address", "location", "type"}

// Device validates a create/update request body. Every problem is
// collected; a non-nil error is always a FieldErrors. A body that is not a
// JSON object is handled as an empty object.
func Device(body []byte) (model.DeviceFields, error) {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		raw = map[string]json.RawMessage{}
	}

	errs := FieldErrors{}
	values := make(map[string]string, len(inputFields))

	for _, field := range inputFields {
		msg, ok := raw[field]
		if !ok || isNull(msg) {
			errs.add(field, MsgRequired)
			continue
		}
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			errs.add(field, MsgNotString)
			continue
		}
		values[field] = s
	}

	for key := range raw {
		if !isInputField(key) {
			errs.add(key, MsgUnknownField)
		}
	}

	if ip, ok := values["ip_address"]; ok {
		if msg := checkIPv4(ip); msg != "" {
			errs.add("ip_address", msg)
		}
	}
	if mac, ok := values["mac_address"]; ok && !macRe.MatchString(mac) {
		errs.add("mac_address", MsgMACFormat)
	}

	if len(errs) > 0 {
		return model.DeviceFields{}, errs
	}

	return model.DeviceFields{
		Name:       values["name"],
		IPAddress:  values["ip_address"],
		MACAddress: values["mac_address"],
		Location:   values["location"],
		DeviceType: values["type"],
	}, nil
}

// checkIPv4 returns an empty string for a valid dotted quad. The regex only
// bounds each group to three digits, so every octet is also range-checked.
func checkIPv4(ip string) string {
	if !ipv4Re.MatchString(ip) {
		return MsgIPFormat
	}
	for _, part := range strings.Split(ip, ".") {
		n, err := strconv.Atoi(part)
		if err != nil || n > 255 {
			return MsgIPRange
		}
	}
	return ""
}

// ObjectID validates a path identifier and returns it in canonical
// lower-case hex form.
func ObjectID(s string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return oid.Hex(), nil
}

func isNull(msg json.RawMessage) bool {
	return strings.TrimSpace(string(msg)) == "null"
}

func isInputField(key string) bool {
	for _, f := range inputFields {
		if f == key {
			return true
		}
	}
	return false
}
