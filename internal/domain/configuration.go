package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// ConfigKey names a known configuration entry.
type ConfigKey string

const (
	KeySiteSettings        ConfigKey = "site_settings"
	KeySignupPolicy        ConfigKey = "signup_policy"
	KeyDefaultSlotDuration ConfigKey = "default_slot_duration"
	KeyAnnouncement        ConfigKey = "announcement"
)

// ConfigKeys lists every known key.
func ConfigKeys() []ConfigKey {
	return []ConfigKey{KeySiteSettings, KeySignupPolicy, KeyDefaultSlotDuration, KeyAnnouncement}
}

// ConfigValue is one variant of the configuration union. Each known key has
// exactly one concrete value type.
type ConfigValue interface {
	ConfigKey() ConfigKey
	Validate() error
}

// SiteSettings is the value of KeySiteSettings.
type SiteSettings struct {
	SiteName     string `json:"site_name"`
	ContactEmail string `json:"contact_email"`
	Timezone     string `json:"timezone"`
}

func (SiteSettings) ConfigKey() ConfigKey { return KeySiteSettings }

func (s SiteSettings) Validate() error {
	if strings.TrimSpace(s.SiteName) == "" {
		return fmt.Errorf("%w: site_name is required", ErrInvalidInput)
	}
	if s.ContactEmail != "" {
		if _, err := mail.ParseAddress(s.ContactEmail); err != nil {
			return fmt.Errorf("%w: contact_email is not a valid address", ErrInvalidInput)
		}
	}
	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, s.Timezone)
		}
	}
	return nil
}

// SignupPolicy is the value of KeySignupPolicy.
type SignupPolicy struct {
	SignupsOpen  bool `json:"signups_open"`
	RequirePhone bool `json:"require_phone"`
}

func (SignupPolicy) ConfigKey() ConfigKey { return KeySignupPolicy }

func (SignupPolicy) Validate() error { return nil }

// DefaultSignupPolicy applies when no signup_policy entry exists.
func DefaultSignupPolicy() SignupPolicy {
	return SignupPolicy{SignupsOpen: true}
}

// DefaultSlotDuration is the value of KeyDefaultSlotDuration.
type DefaultSlotDuration struct {
	Minutes int `json:"minutes"`
}

func (DefaultSlotDuration) ConfigKey() ConfigKey { return KeyDefaultSlotDuration }

func (d DefaultSlotDuration) Validate() error {
	if d.Minutes < MinSlotDurationMinutes || d.Minutes > MaxSlotDurationMinutes {
		return fmt.Errorf("%w: minutes must be between %d and %d", ErrInvalidInput, MinSlotDurationMinutes, MaxSlotDurationMinutes)
	}
	return nil
}

// Announcement is the value of KeyAnnouncement.
type Announcement struct {
	Message string `json:"message"`
	Level   string `json:"level"`
}

func (Announcement) ConfigKey() ConfigKey { return KeyAnnouncement }

func (a Announcement) Validate() error {
	switch a.Level {
	case "info", "warning", "critical":
	default:
		return fmt.Errorf("%w: level must be one of info, warning, critical", ErrInvalidInput)
	}
	return nil
}

// DecodeConfigValue parses raw JSON into the variant registered for key.
// Unknown keys and unknown fields are rejected.
func DecodeConfigValue(key ConfigKey, raw json.RawMessage) (ConfigValue, error) {
	var v ConfigValue
	switch key {
	case KeySiteSettings:
		var s SiteSettings
		if err := strictUnmarshal(raw, &s); err != nil {
			return nil, err
		}
		v = s
	case KeySignupPolicy:
		var s SignupPolicy
		if err := strictUnmarshal(raw, &s); err != nil {
			return nil, err
		}
		v = s
	case KeyDefaultSlotDuration:
		var s DefaultSlotDuration
		if err := strictUnmarshal(raw, &s); err != nil {
			return nil, err
		}
		v = s
	case KeyAnnouncement:
		var s Announcement
		if err := strictUnmarshal(raw, &s); err != nil {
			return nil, err
		}
		v = s
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownConfigKey, key)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

func strictUnmarshal(raw json.RawMessage, dest any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// Configuration is a stored configuration entry.
// swagger:model Configuration
type Configuration struct {
	Key         ConfigKey   `json:"key"`
	Value       ConfigValue `json:"value" swaggertype:"object"`
	Description string      `json:"description"`
	IsPublic    bool        `json:"is_public"`
	UpdatedBy   *string     `json:"updated_by"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ConfigRepository defines storage for configuration entries.
type ConfigRepository interface {
	List(ctx context.Context, publicOnly bool) ([]*Configuration, error)
	Get(ctx context.Context, key ConfigKey) (*Configuration, error)
	Upsert(ctx context.Context, cfg *Configuration) error
	Delete(ctx context.Context, key ConfigKey) error
}

// ConfigUpdate is an admin write to a configuration entry.
type ConfigUpdate struct {
	Key         ConfigKey
	Value       json.RawMessage
	Description *string
	IsPublic    *bool
	UpdatedBy   string
}

// ConfigService defines configuration business logic.
type ConfigService interface {
	ListPublic(ctx context.Context) ([]*Configuration, error)
	ListAll(ctx context.Context) ([]*Configuration, error)
	Get(ctx context.Context, key ConfigKey) (*Configuration, error)
	Set(ctx context.Context, update ConfigUpdate) (*Configuration, error)
	Delete(ctx context.Context, key ConfigKey) error
	SignupPolicy(ctx context.Context) (SignupPolicy, error)
	DefaultSlotDuration(ctx context.Context) (int, error)
}
