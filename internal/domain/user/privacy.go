package user

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityFamily  Visibility = "family"
	VisibilityPrivate Visibility = "private"
)

// Privacy-controlled profile fields. Fields absent from a user's settings fall
// back to the default visibility at read time.
const (
	FieldEmail              = "email"
	FieldBio                = "bio"
	FieldBirthPlace         = "birthPlace"
	FieldCurrentPlace       = "currentPlace"
	FieldRelationshipStatus = "relationshipStatus"
	FieldLanguages          = "languages"
	FieldInterests          = "interests"
)

const (
	TabAbout       = "about"
	TabEducation   = "education"
	TabWorkHistory = "workHistory"
	TabInterests   = "interests"
)

var profileFields = []string{
	FieldEmail,
	FieldBio,
	FieldBirthPlace,
	FieldCurrentPlace,
	FieldRelationshipStatus,
	FieldLanguages,
	FieldInterests,
}

var profileTabs = []string{TabAbout, TabEducation, TabWorkHistory, TabInterests}

const defaultVisibility = VisibilityFamily

type PrivacySettings struct {
	Fields map[string]Visibility `json:"fields,omitempty"`
	Tabs   map[string]bool       `json:"tabs,omitempty"`
}

func (p PrivacySettings) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (p *PrivacySettings) Scan(value interface{}) error {
	if value == nil {
		*p = PrivacySettings{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("privacy settings: unsupported column type %T", value)
	}
}

// FieldVisibility resolves a field against stored settings, merged over the
// default. Unknown field names resolve to private.
func (p PrivacySettings) FieldVisibility(field string) Visibility {
	if !isProfileField(field) {
		return VisibilityPrivate
	}
	if value, ok := p.Fields[field]; ok {
		switch value {
		case VisibilityPublic, VisibilityFamily, VisibilityPrivate:
			return value
		}
	}
	return defaultVisibility
}

// TabVisible reports whether a profile tab is exposed to other viewers.
// Tabs default to visible.
func (p PrivacySettings) TabVisible(tab string) bool {
	if visible, ok := p.Tabs[tab]; ok {
		return visible
	}
	return true
}

// ViewerClass separates the three audiences privacy settings distinguish.
type ViewerClass int

const (
	ViewerSelf ViewerClass = iota
	ViewerFamily
	ViewerPublic
)

func (p PrivacySettings) visibleTo(field string, viewer ViewerClass) bool {
	if viewer == ViewerSelf {
		return true
	}
	switch p.FieldVisibility(field) {
	case VisibilityPublic:
		return true
	case VisibilityFamily:
		return viewer == ViewerFamily
	default:
		return false
	}
}

func isProfileField(field string) bool {
	for _, known := range profileFields {
		if known == field {
			return true
		}
	}
	return false
}

func isProfileTab(tab string) bool {
	for _, known := range profileTabs {
		if known == tab {
			return true
		}
	}
	return false
}

// buildProfile shapes a user record for a viewer, dropping fields the
// viewer's class is not allowed to see.
func buildProfile(u *User, viewer ViewerClass) Profile {
	profile := Profile{
		ID:                u.ID,
		FullName:          u.FullName,
		ProfilePictureURL: u.ProfilePictureURL,
		IsOwner:           viewer == ViewerSelf,
	}

	if u.Privacy.visibleTo(FieldEmail, viewer) && u.Email != "" {
		email := u.Email
		profile.Email = &email
	}
	if u.Privacy.visibleTo(FieldBio, viewer) {
		profile.Bio = u.Bio
	}
	if u.Privacy.visibleTo(FieldBirthPlace, viewer) {
		profile.BirthPlace = u.BirthPlace
	}
	if u.Privacy.visibleTo(FieldCurrentPlace, viewer) {
		profile.CurrentPlace = u.CurrentPlace
	}
	if u.Privacy.visibleTo(FieldRelationshipStatus, viewer) {
		profile.RelationshipStatus = u.RelationshipStatus
	}
	if u.Privacy.visibleTo(FieldLanguages, viewer) {
		profile.Languages = u.Languages
	}
	if u.Privacy.visibleTo(FieldInterests, viewer) {
		profile.Interests = u.Interests
	}

	tabs := make([]string, 0, len(profileTabs))
	for _, tab := range profileTabs {
		if viewer == ViewerSelf || u.Privacy.TabVisible(tab) {
			tabs = append(tabs, tab)
		}
	}
	sort.Strings(tabs)
	profile.VisibleTabs = tabs

	return profile
}
