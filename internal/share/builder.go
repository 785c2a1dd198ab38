// Package share builds the deep links offered by the card's share dialog.
package share

import (
	"fmt"
	"strings"

	"github.com/kapu/digital-card-go/internal/constants"
	"github.com/kapu/digital-card-go/internal/domain"
	"github.com/kapu/digital-card-go/internal/util"
)

// Message is the text pre-filled into messaging channels.
func Message(cardURL string) string {
	return constants.ShareConfig.Message + cardURL
}

// Build returns the deterministic link set for in. When the card URL is missing
// no channel applies and every field is "".
func Build(in domain.ShareInput) domain.ShareLinks {
	cardURL := strings.TrimSpace(in.CardURL)
	if cardURL == "" {
		return domain.ShareLinks{}
	}

	encodedMessage := util.EncodeURIComponent(Message(cardURL))

	return domain.ShareLinks{
		WhatsApp: constants.ShareConfig.WhatsAppBaseURL + "?text=" + encodedMessage,
		SMS:      constants.ShareConfig.SMSScheme + "?body=" + encodedMessage,
		LinkedIn: constants.ShareConfig.LinkedInShareURL + util.EncodeURIComponent(cardURL),
		CopyLink: cardURL,
	}
}

// RecipientMessage is the message sent when sharing directly to a phone number.
func RecipientMessage(in domain.ShareInput) string {
	return fmt.Sprintf("%s - %s - %s - %s", in.Company, in.Designation, in.Name, strings.TrimSpace(in.CardURL))
}

// ForRecipient builds a WhatsApp or SMS link addressed to phone. It returns ""
// when the channel does not support recipients, the phone has no digits, or the
// card URL is missing.
func ForRecipient(in domain.ShareInput, channel domain.ShareChannel, phone string) string {
	digits := util.DigitsOnly(phone)
	if digits == "" || strings.TrimSpace(in.CardURL) == "" {
		return ""
	}

	encoded := util.EncodeURIComponent(RecipientMessage(in))

	switch channel {
	case domain.ChannelWhatsApp:
		return constants.ShareConfig.WhatsAppBaseURL + digits + "?text=" + encoded
	case domain.ChannelSMS:
		return constants.ShareConfig.SMSScheme + digits + "?body=" + encoded
	default:
		return ""
	}
}

// RecipientLinks fills the recipient-capable channels for phone. LinkedIn and the
// copy link do not address a person and are left as the plain links.
func RecipientLinks(in domain.ShareInput, phone string) domain.ShareLinks {
	base := Build(in)
	return domain.ShareLinks{
		WhatsApp: ForRecipient(in, domain.ChannelWhatsApp, phone),
		SMS:      ForRecipient(in, domain.ChannelSMS, phone),
		LinkedIn: base.LinkedIn,
		CopyLink: base.CopyLink,
	}
}
