package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConfigValue(t *testing.T) {
	tests := []struct {
		name    string
		key     ConfigKey
		raw     string
		want    ConfigValue
		wantErr error
	}{
		{
			name: "site settings",
			key:  KeySiteSettings,
			raw:  `{"site_name":"Mic Night","contact_email":"host@example.com","timezone":"UTC"}`,
			want: SiteSettings{SiteName: "Mic Night", ContactEmail: "host@example.com", Timezone: "UTC"},
		},
		{
			name: "signup policy",
			key:  KeySignupPolicy,
			raw:  `{"signups_open":false,"require_phone":true}`,
			want: SignupPolicy{SignupsOpen: false, RequirePhone: true},
		},
		{
			name: "slot duration",
			key:  KeyDefaultSlotDuration,
			raw:  `{"minutes":15}`,
			want: DefaultSlotDuration{Minutes: 15},
		},
		{
			name:    "slot duration out of range",
			key:     KeyDefaultSlotDuration,
			raw:     `{"minutes":2}`,
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown field",
			key:     KeyAnnouncement,
			raw:     `{"message":"hi","level":"info","color":"red"}`,
			wantErr: ErrInvalidInput,
		},
		{
			name:    "bad level",
			key:     KeyAnnouncement,
			raw:     `{"message":"hi","level":"loud"}`,
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown key",
			key:     ConfigKey("theme"),
			raw:     `{}`,
			wantErr: ErrUnknownConfigKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeConfigValue(tt.key, json.RawMessage(tt.raw))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.key, got.ConfigKey())
		})
	}
}

func TestConfiguration_MarshalsValueInline(t *testing.T) {
	c := &Configuration{Key: KeyDefaultSlotDuration, Value: DefaultSlotDuration{Minutes: 10}, IsPublic: true}
	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"value":{"minutes":10}`)
}
