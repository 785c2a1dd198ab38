package domain

import (
	"strings"
	"unicode"

	"github.com/kapu/digital-card-go/internal/util"
)

// SocialPlatform names a social network shown on the card.
type SocialPlatform string

const (
	SocialFacebook  SocialPlatform = "facebook"
	SocialLinkedIn  SocialPlatform = "linkedin"
	SocialYouTube   SocialPlatform = "youtube"
	SocialInstagram SocialPlatform = "instagram"
)

// SocialPlatforms is the display order of social icons.
var SocialPlatforms = []SocialPlatform{
	SocialFacebook,
	SocialLinkedIn,
	SocialYouTube,
	SocialInstagram,
}

// Label returns the human readable platform name.
func (p SocialPlatform) Label() string {
	switch p {
	case SocialFacebook:
		return "Facebook"
	case SocialLinkedIn:
		return "LinkedIn"
	case SocialYouTube:
		return "YouTube"
	case SocialInstagram:
		return "Instagram"
	default:
		return string(p)
	}
}

// SocialLink is a platform entry that has a non-empty URL.
type SocialLink struct {
	Platform SocialPlatform `json:"platform"`
	Label    string         `json:"label"`
	URL      string         `json:"url"`
}

// ContactProfile describes the person published on the card. It is treated as a
// read-only value; use NewContactProfile so the socials map is not shared.
type ContactProfile struct {
	Name     string
	Role     string
	Phone    string
	Email    string
	Office   string
	PhotoURL string
	CardURL  string
	Company  string
	Socials  map[SocialPlatform]string
}

// NewContactProfile copies socials so later changes to the caller's map are not observed.
func NewContactProfile(p ContactProfile) ContactProfile {
	socials := make(map[SocialPlatform]string, len(p.Socials))
	for platform, link := range p.Socials {
		socials[platform] = link
	}
	p.Socials = socials
	return p
}

// Social returns the URL for platform when it is configured.
func (p ContactProfile) Social(platform SocialPlatform) (string, bool) {
	link := strings.TrimSpace(p.Socials[platform])
	return link, link != ""
}

// SocialLinks lists configured platforms in display order. Absent or blank
// entries are skipped so no empty href is ever produced.
func (p ContactProfile) SocialLinks() []SocialLink {
	links := make([]SocialLink, 0, len(SocialPlatforms))
	for _, platform := range SocialPlatforms {
		if link, ok := p.Social(platform); ok {
			links = append(links, SocialLink{
				Platform: platform,
				Label:    platform.Label(),
				URL:      link,
			})
		}
	}
	return links
}

// SplitName splits Name at the first whitespace run. A single word yields an
// empty last name.
func (p ContactProfile) SplitName() (first, last string) {
	name := strings.TrimSpace(p.Name)
	idx := strings.IndexFunc(name, unicode.IsSpace)
	if idx < 0 {
		return name, ""
	}
	return name[:idx], strings.TrimSpace(name[idx:])
}

// DisplayPhone formats the phone as "+CC REST" where the first two digits are the country code.
func (p ContactProfile) DisplayPhone() string {
	phone := strings.TrimSpace(p.Phone)
	if phone == "" {
		return ""
	}
	if len(phone) <= 2 {
		return "+" + phone
	}
	return "+" + phone[:2] + " " + phone[2:]
}

// MapsURL points at a map search for the office address.
func (p ContactProfile) MapsURL() string {
	return "https://www.google.com/maps/search/?api=1&query=" + util.EncodeURIComponent(p.Office)
}

// VCardFilename derives the download filename from the name.
func (p ContactProfile) VCardFilename() string {
	var sb strings.Builder
	for _, r := range p.Name {
		switch {
		case unicode.IsSpace(r):
			sb.WriteRune('_')
		case r == '"' || r == '\\':
			continue
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String() + ".vcf"
}
