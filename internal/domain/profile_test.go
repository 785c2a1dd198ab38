package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		name      string
		wantFirst string
		wantLast  string
	}{
		{"Jane Mary Doe", "Jane", "Mary Doe"},
		{"Prince", "Prince", ""},
		{"  Jane   Doe ", "Jane", "Doe"},
		{"Jane\tDoe", "Jane", "Doe"},
		{"", "", ""},
	}

	for _, tt := range tests {
		first, last := ContactProfile{Name: tt.name}.SplitName()
		assert.Equal(t, tt.wantFirst, first, "first name of %q", tt.name)
		assert.Equal(t, tt.wantLast, last, "last name of %q", tt.name)
	}
}

func TestDisplayPhone(t *testing.T) {
	assert.Equal(t, "+91 9876543210", ContactProfile{Phone: "919876543210"}.DisplayPhone())
	assert.Equal(t, "+1", ContactProfile{Phone: "1"}.DisplayPhone())
	assert.Equal(t, "", ContactProfile{}.DisplayPhone())
}

func TestVCardFilename(t *testing.T) {
	assert.Equal(t, "Jane_Mary_Doe.vcf", ContactProfile{Name: "Jane Mary Doe"}.VCardFilename())
	assert.Equal(t, "Jane_Doe.vcf", ContactProfile{Name: "Jane\tDoe"}.VCardFilename())
	assert.Equal(t, "JaneDoe.vcf", ContactProfile{Name: `Jane"Doe`}.VCardFilename())
}

func TestMapsURL(t *testing.T) {
	p := ContactProfile{Office: "Block A, Sector 5"}
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=Block%20A%2C%20Sector%205", p.MapsURL())
}

func TestSocialLinksOrderAndOmission(t *testing.T) {
	p := NewContactProfile(ContactProfile{
		Socials: map[SocialPlatform]string{
			SocialInstagram: "https://instagram.com/jane",
			SocialFacebook:  "",
			SocialYouTube:   "https://youtube.com/@jane",
		},
	})

	links := p.SocialLinks()
	require.Len(t, links, 2)
	assert.Equal(t, SocialYouTube, links[0].Platform)
	assert.Equal(t, "YouTube", links[0].Label)
	assert.Equal(t, SocialInstagram, links[1].Platform)
}

func TestNewContactProfileCopiesSocials(t *testing.T) {
	socials := map[SocialPlatform]string{SocialLinkedIn: "https://linkedin.com/in/jane"}
	p := NewContactProfile(ContactProfile{Socials: socials})

	socials[SocialFacebook] = "https://facebook.com/jane"

	_, ok := p.Social(SocialFacebook)
	assert.False(t, ok)
}

func TestShareLinksGet(t *testing.T) {
	links := ShareLinks{WhatsApp: "w", SMS: "s", LinkedIn: "l", CopyLink: "c"}
	assert.Equal(t, "w", links.Get(ChannelWhatsApp))
	assert.Equal(t, "c", links.Get(ChannelCopy))
	assert.Equal(t, "", links.Get("telegram"))
	assert.False(t, links.IsEmpty())
	assert.True(t, ShareLinks{}.IsEmpty())
}
