// Package vcard renders a contact profile as a vCard 3.0 document.
package vcard

import (
	"fmt"
	"strings"

	"github.com/kapu/digital-card-go/internal/domain"
)

const (
	// ContentType is served with every encoded card.
	ContentType = "text/vcard; charset=utf-8"

	lineSeparator = "\n"
)

var (
	// ADR is a structured field: a literal comma in the street part must not split it.
	adrEscaper = strings.NewReplacer(",", `\,`)

	// One property per line; a stray line break would start a new property.
	lineBreakReplacer = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")
)

// Encode builds the vCard text for p. Phone and email are copied verbatim.
func Encode(p domain.ContactProfile) string {
	first, last := p.SplitName()

	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		fmt.Sprintf("N:%s;%s;;;", value(last), value(first)),
		"FN:" + value(p.Name),
		"ORG:" + value(p.Company),
		"TITLE:" + value(p.Role),
		"TEL;TYPE=WORK,VOICE:" + value(p.Phone),
		"EMAIL:" + value(p.Email),
		fmt.Sprintf("ADR;TYPE=WORK:;;%s;;;;", adrEscaper.Replace(value(p.Office))),
		"PHOTO;VALUE=URL;TYPE=JPEG:" + value(p.PhotoURL),
		"END:VCARD",
	}

	return strings.Join(lines, lineSeparator)
}

// ContentDisposition is the attachment header for p's vCard download.
func ContentDisposition(p domain.ContactProfile) string {
	return fmt.Sprintf(`attachment; filename="%s"`, p.VCardFilename())
}

func value(s string) string {
	return lineBreakReplacer.Replace(s)
}
