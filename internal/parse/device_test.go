package parse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"device-inventory-backend/internal/model"
)

func TestDevice(t *testing.T) {
	testCases := []struct {
		name        string
		body        string
		expected    model.DeviceFields
		expectedErr FieldErrors
	}{
		{
			name: "Valid switch",
			body: `{"name":"sw1","ip_address":"10.0.0.1","mac_address":"AA:BB:CC:DD:EE:FF","location":"rack1","type":"switch"}`,
			expected: model.DeviceFields{
				Name: "sw1", IPAddress: "10.0.0.1", MACAddress: "AA:BB:CC:DD:EE:FF",
				Location: "rack1", DeviceType: "switch",
			},
		},
		{
			name: "Lower-case MAC and boundary octets",
			body: `{"name":"r","ip_address":"255.0.0.255","mac_address":"0a:1b:2c:3d:4e:5f","location":"","type":"router"}`,
			expected: model.DeviceFields{
				Name: "r", IPAddress: "255.0.0.255", MACAddress: "0a:1b:2c:3d:4e:5f",
				Location: "", DeviceType: "router",
			},
		},
		{
			name:        "Octet above 255",
			body:        `{"name":"a","ip_address":"999.1.1.1","mac_address":"AA:BB:CC:DD:EE:FF","location":"l","type":"t"}`,
			expectedErr: FieldErrors{"ip_address": {MsgIPRange}},
		},
		{
			name:        "Three groups",
			body:        `{"name":"a","ip_address":"1.2.3","mac_address":"AA:BB:CC:DD:EE:FF","location":"l","type":"t"}`,
			expectedErr: FieldErrors{"ip_address": {MsgIPFormat}},
		},
		{
			name:        "Four-digit group",
			body:        `{"name":"a","ip_address":"1.2.3.1000","mac_address":"AA:BB:CC:DD:EE:FF","location":"l","type":"t"}`,
			expectedErr: FieldErrors{"ip_address": {MsgIPFormat}},
		},
		{
			name:        "Short MAC",
			body:        `{"name":"a","ip_address":"1.2.3.4","mac_address":"AA:BB:CC","location":"l","type":"t"}`,
			expectedErr: FieldErrors{"mac_address": {MsgMACFormat}},
		},
		{
			name:        "Dash-separated MAC",
			body:        `{"name":"a","ip_address":"1.2.3.4","mac_address":"AA-BB-CC-DD-EE-FF","location":"l","type":"t"}`,
			expectedErr: FieldErrors{"mac_address": {MsgMACFormat}},
		},
		{
			name: "Missing and null fields are aggregated",
			body: `{"name":null,"ip_address":"1.2.3.4"}`,
			expectedErr: FieldErrors{
				"name":        {MsgRequired},
				"mac_address": {MsgRequired},
				"location":    {MsgRequired},
				"type":        {MsgRequired},
			},
		},
		{
			name:        "Non-string value",
			body:        `{"name":42,"ip_address":"1.2.3.4","mac_address":"AA:BB:CC:DD:EE:FF","location":"l","type":"t"}`,
			expectedErr: FieldErrors{"name": {MsgNotString}},
		},
		{
			name:        "Read-only and unknown fields",
			body:        `{"id":"x","name":"a","ip_address":"1.2.3.4","mac_address":"AA:BB:CC:DD:EE:FF","location":"l","type":"t"}`,
			expectedErr: FieldErrors{"id": {MsgUnknownField}},
		},
		{
			name: "Not JSON behaves like an empty object",
			body: `not json`,
			expectedErr: FieldErrors{
				"name": {MsgRequired}, "ip_address": {MsgRequired}, "mac_address": {MsgRequired},
				"location": {MsgRequired}, "type": {MsgRequired},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fields, err := Device([]byte(tc.body))
			if tc.expectedErr != nil {
				var fe FieldErrors
				require.True(t, errors.As(err, &fe), "expected FieldErrors, got %v", err)
				assert.Equal(t, tc.expectedErr, fe)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, fields)
		})
	}
}

func TestFieldErrors_Error(t *testing.T) {
	errs := FieldErrors{
		"name":       {MsgRequired},
		"ip_address": {MsgIPFormat},
	}
	assert.Equal(t, "ip_address: Invalid IPv4 address format; name: Missing data for required field.", errs.Error())
}

func TestObjectID(t *testing.T) {
	id, err := ObjectID("65A1B2C3D4E5F60718293A4B")
	require.NoError(t, err)
	assert.Equal(t, "65a1b2c3d4e5f60718293a4b", id)

	for _, bad := range []string{"", "123", "not-an-object-id-at-all!", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		_, err := ObjectID(bad)
		assert.ErrorIs(t, err, ErrInvalidID, bad)
	}

	fresh := primitive.NewObjectID().Hex()
	assert.Len(t, fresh, 24)
	_, err = ObjectID(fresh)
	assert.NoError(t, err)
}
