package models

type Visibility string

const (
	VisibilityPublic     Visibility = "public"
	VisibilityRegistered Visibility = "registered"
	VisibilityPrivate    Visibility = "private"
)

type ContactInfoVisibility struct {
	Email       Visibility `bson:"email" json:"email" validate:"omitempty,oneof=public registered private"`
	Phone       Visibility `bson:"phone" json:"phone" validate:"omitempty,oneof=public registered private"`
	SocialLinks Visibility `bson:"social_links" json:"socialLinks" validate:"omitempty,oneof=public registered private"`
}

type ActivityHistoryVisibility struct {
	Tries          Visibility `bson:"tries" json:"tries" validate:"omitempty,oneof=public registered private"`
	Evaluations    Visibility `bson:"evaluations" json:"evaluations" validate:"omitempty,oneof=public registered private"`
	Participations Visibility `bson:"participations" json:"participations" validate:"omitempty,oneof=public registered private"`
}

type PrivacySettings struct {
	ProfileVisibility   Visibility                `bson:"profile_visibility" json:"profileVisibility" validate:"omitempty,oneof=public registered private"`
	ContactInfo         ContactInfoVisibility     `bson:"contact_info" json:"contactInfoVisibility"`
	ActivityHistory     ActivityHistoryVisibility `bson:"activity_history" json:"activityHistoryVisibility"`
	Searchable          bool                      `bson:"searchable" json:"searchable"`
	ShowOnlineStatus    bool                      `bson:"show_online_status" json:"showOnlineStatus"`
	AllowDirectMessages bool                      `bson:"allow_direct_messages" json:"allowDirectMessages"`
}

func DefaultPrivacySettings() PrivacySettings {
	return PrivacySettings{
		ProfileVisibility: VisibilityRegistered,
		ContactInfo: ContactInfoVisibility{
			Email:       VisibilityPrivate,
			Phone:       VisibilityPrivate,
			SocialLinks: VisibilityRegistered,
		},
		ActivityHistory: ActivityHistoryVisibility{
			Tries:          VisibilityRegistered,
			Evaluations:    VisibilityRegistered,
			Participations: VisibilityRegistered,
		},
		Searchable:          true,
		ShowOnlineStatus:    true,
		AllowDirectMessages: true,
	}
}

// Normalize fills empty visibility levels with their defaults.
func (p PrivacySettings) Normalize() PrivacySettings {
	d := DefaultPrivacySettings()
	fill := func(v *Visibility, def Visibility) {
		if *v == "" {
			*v = def
		}
	}
	fill(&p.ProfileVisibility, d.ProfileVisibility)
	fill(&p.ContactInfo.Email, d.ContactInfo.Email)
	fill(&p.ContactInfo.Phone, d.ContactInfo.Phone)
	fill(&p.ContactInfo.SocialLinks, d.ContactInfo.SocialLinks)
	fill(&p.ActivityHistory.Tries, d.ActivityHistory.Tries)
	fill(&p.ActivityHistory.Evaluations, d.ActivityHistory.Evaluations)
	fill(&p.ActivityHistory.Participations, d.ActivityHistory.Participations)
	return p
}

// CanAccess decides whether viewerID may see content at level owned by ownerID.
// An empty viewerID is an anonymous visitor.
func CanAccess(level Visibility, ownerID, viewerID string) bool {
	if ownerID != "" && ownerID == viewerID {
		return true
	}
	switch level {
	case VisibilityPublic:
		return true
	case VisibilityRegistered:
		return viewerID != ""
	default:
		return false
	}
}

// UserView is a user profile with the fields the viewer may not see left empty.
type UserView struct {
	ID            string             `json:"id"`
	DisplayName   string             `json:"display_name"`
	PhotoURL      string             `json:"photo_url,omitempty"`
	Bio           string             `json:"bio,omitempty"`
	Email         string             `json:"email,omitempty"`
	PhoneNumber   string             `json:"phone_number,omitempty"`
	SocialLinks   map[string]string  `json:"social_links,omitempty"`
	Badge         Badge              `json:"badge,omitempty"`
	BadgeName     string             `json:"badge_name,omitempty"`
	RatingSummary *RatingSummaryView `json:"rating_summary,omitempty"`
	Privacy       *PrivacySettings   `json:"privacy,omitempty"`
	Restricted    bool               `json:"restricted"`
}

// FilterUser applies the owner's privacy settings to what viewerID gets to see.
func FilterUser(u *User, viewerID string, badge Badge) UserView {
	settings := u.PrivacyOrDefault()
	view := UserView{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
	}
	if u.ID == viewerID {
		summary := u.RatingSummary.View()
		view.Bio = u.Bio
		view.Email = u.Email
		view.PhoneNumber = u.PhoneNumber
		view.SocialLinks = u.SocialLinks
		view.Badge = badge
		view.BadgeName = badge.DisplayName()
		view.RatingSummary = &summary
		view.Privacy = &settings
		return view
	}
	if !CanAccess(settings.ProfileVisibility, u.ID, viewerID) {
		view.Restricted = true
		return view
	}
	view.Bio = u.Bio
	view.Badge = badge
	view.BadgeName = badge.DisplayName()
	if CanAccess(settings.ContactInfo.Email, u.ID, viewerID) {
		view.Email = u.Email
	}
	if CanAccess(settings.ContactInfo.Phone, u.ID, viewerID) {
		view.PhoneNumber = u.PhoneNumber
	}
	if CanAccess(settings.ContactInfo.SocialLinks, u.ID, viewerID) {
		view.SocialLinks = u.SocialLinks
	}
	if CanAccess(settings.ActivityHistory.Evaluations, u.ID, viewerID) {
		summary := u.RatingSummary.View()
		view.RatingSummary = &summary
	}
	return view
}
