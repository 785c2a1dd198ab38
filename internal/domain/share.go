package domain

// ShareChannel identifies a share target.
type ShareChannel string

const (
	ChannelWhatsApp ShareChannel = "whatsapp"
	ChannelSMS      ShareChannel = "sms"
	ChannelLinkedIn ShareChannel = "linkedin"
	ChannelCopy     ShareChannel = "copyLink"
)

// ShareLinks holds one URL per channel. A channel that does not apply is the
// empty string, never a missing value.
type ShareLinks struct {
	WhatsApp string `json:"whatsapp"`
	SMS      string `json:"sms"`
	LinkedIn string `json:"linkedin"`
	CopyLink string `json:"copyLink"`
}

// Get returns the link for channel, or "" for an unknown channel.
func (l ShareLinks) Get(channel ShareChannel) string {
	switch channel {
	case ChannelWhatsApp:
		return l.WhatsApp
	case ChannelSMS:
		return l.SMS
	case ChannelLinkedIn:
		return l.LinkedIn
	case ChannelCopy:
		return l.CopyLink
	default:
		return ""
	}
}

// IsEmpty reports whether no channel applies.
func (l ShareLinks) IsEmpty() bool {
	return l.WhatsApp == "" && l.SMS == "" && l.LinkedIn == "" && l.CopyLink == ""
}

// ShareInput is the profile subset used to build share links.
type ShareInput struct {
	Name        string
	Designation string
	CardURL     string
	Company     string
	Phone       string
	Email       string
	Office      string
	Socials     map[SocialPlatform]string
}

// ShareInputFrom extracts the share subset of a profile.
func ShareInputFrom(p ContactProfile) ShareInput {
	return ShareInput{
		Name:        p.Name,
		Designation: p.Role,
		CardURL:     p.CardURL,
		Company:     p.Company,
		Phone:       p.Phone,
		Email:       p.Email,
		Office:      p.Office,
		Socials:     p.Socials,
	}
}

// ShareResult combines the deterministic links with optional model suggestions.
type ShareResult struct {
	Links       ShareLinks  `json:"links"`
	Suggestions *ShareLinks `json:"suggestions,omitempty"`
	Recipient   *ShareLinks `json:"recipient,omitempty"`
}
