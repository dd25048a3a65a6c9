package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferences_Validate(t *testing.T) {
	tests := []struct {
		name string
		p    Preferences
		want error
	}{
		{"ok", Preferences{Year: 2024, Make: "Mazda", Model: "CX-90"}, nil},
		{"lower bound", Preferences{Year: 2000, Make: "a", Model: "b"}, nil},
		{"upper bound", Preferences{Year: 2030, Make: "a", Model: "b"}, nil},
		{"too old", Preferences{Year: 1999, Make: "a", Model: "b"}, ErrInvalidYear},
		{"too new", Preferences{Year: 2031, Make: "a", Model: "b"}, ErrInvalidYear},
		{"blank make", Preferences{Year: 2024, Make: "  ", Model: "b"}, ErrMakeRequired},
		{"blank model", Preferences{Year: 2024, Make: "a"}, ErrModelRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPreferences_String(t *testing.T) {
	assert.Equal(t, "2024 Mazda CX-90", Preferences{Year: 2024, Make: "Mazda", Model: "CX-90"}.String())
}

func TestUser_HasPreferencesAndClone(t *testing.T) {
	var nilUser *User
	assert.False(t, nilUser.HasPreferences())
	assert.Nil(t, nilUser.Clone())

	u := &User{ID: "u1", Preferences: &Preferences{Year: 2024, Make: "Mazda", Model: "CX-90"}}
	assert.True(t, u.HasPreferences())

	c := u.Clone()
	c.Preferences.Make = "Honda"
	assert.Equal(t, "Mazda", u.Preferences.Make)
}

func TestSellerType(t *testing.T) {
	for _, st := range SellerTypes {
		got, err := ParseSellerType(string(st))
		require.NoError(t, err)
		assert.Equal(t, st, got)
		assert.NotEmpty(t, st.Label())
	}

	got, err := ParseSellerType(" Dealership ")
	require.NoError(t, err)
	assert.Equal(t, SellerDealership, got)

	_, err = ParseSellerType("broker")
	require.Error(t, err)

	var th Thread
	require.Error(t, json.Unmarshal([]byte(`{"id":"t","sellerType":"broker"}`), &th))

	_, err = json.Marshal(Thread{SellerType: "broker"})
	require.Error(t, err)

	assert.Panics(t, func() { _ = SellerType("broker").Label() })
}

func TestSender(t *testing.T) {
	assert.Equal(t, "You", SenderUser.Label("Bob"))
	assert.Equal(t, "AI Agent", SenderAgent.Label("Bob"))
	assert.Equal(t, "Bob", SenderSeller.Label("Bob"))
	assert.Equal(t, "Seller", SenderSeller.Label(""))

	var m Message
	require.NoError(t, json.Unmarshal([]byte(`{"id":"m","sender":"agent","content":"hi"}`), &m))
	assert.Equal(t, SenderAgent, m.Sender)
	require.Error(t, json.Unmarshal([]byte(`{"sender":"bot"}`), &m))
}

func TestThread_Title(t *testing.T) {
	assert.Equal(t, "Bob's Cars", Thread{DisplayName: "Bob's Cars", SellerName: "Bob"}.Title())
	assert.Equal(t, "Bob", Thread{SellerName: "Bob"}.Title())
	assert.Equal(t, "(555) 123-4567", Thread{Phone: "+15551234567"}.Title())
	assert.Equal(t, "Unknown", Thread{}.Title())
}

func TestFormatPhoneNumber(t *testing.T) {
	tests := map[string]string{
		"+15551234567":  "(555) 123-4567",
		"5551234567":    "(555) 123-4567",
		"555-123-4567":  "(555) 123-4567",
		"+445551234567": "+445551234567",
		"12345":         "12345",
		"":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatPhoneNumber(in), in)
	}
}

func TestUnreadBadge(t *testing.T) {
	assert.Equal(t, "", UnreadBadge(0))
	assert.Equal(t, "7", UnreadBadge(7))
	assert.Equal(t, "99", UnreadBadge(99))
	assert.Equal(t, "99+", UnreadBadge(100))
}

func TestInboxMessage_DisplaySubject(t *testing.T) {
	assert.Equal(t, "No Subject", InboxMessage{}.DisplaySubject())
	assert.Equal(t, "Quote", InboxMessage{Subject: "Quote"}.DisplaySubject())
}

func TestCanonicalMake(t *testing.T) {
	tests := map[string]string{
		"honda":         "Honda",
		"  bmw ":        "BMW",
		"land rover":    "Land Rover",
		"MERCEDES-BENZ": "Mercedes-Benz",
		"Lada":          "Lada",
		" ":             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, CanonicalMake(in), "input %q", in)
	}
}
