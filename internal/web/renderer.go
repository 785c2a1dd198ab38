// Package web renders the card page.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"

	"github.com/kapu/digital-card-go/internal/constants"
	"github.com/kapu/digital-card-go/internal/domain"
	"github.com/kapu/digital-card-go/internal/i18n"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PageData is the view model for the card page.
type PageData struct {
	Lang          i18n.Language
	OtherLang     i18n.Language
	OtherLangName string
	ToggleURL     string

	Profile      domain.ContactProfile
	DisplayPhone string
	MapsURL      string
	Socials      []domain.SocialLink

	Links     domain.ShareLinks
	Share     ShareHrefs
	QRURL     string
	QRDownURL string

	Brand i18n.BrandLockup
	Texts map[string]string
}

// ShareHrefs are the share links marked safe for href attributes. html/template
// rewrites sms: URLs to "#ZgotmplZ" unless they are typed as template.URL.
type ShareHrefs struct {
	WhatsApp template.URL
	SMS      template.URL
	LinkedIn template.URL
}

// NewShareHrefs trusts a link only when it starts with its channel's fixed base.
func NewShareHrefs(links domain.ShareLinks) ShareHrefs {
	return ShareHrefs{
		WhatsApp: trustedHref(links.WhatsApp, constants.ShareConfig.WhatsAppBaseURL),
		SMS:      trustedHref(links.SMS, constants.ShareConfig.SMSScheme),
		LinkedIn: trustedHref(links.LinkedIn, constants.ShareConfig.LinkedInShareURL),
	}
}

func trustedHref(link, prefix string) template.URL {
	if link == "" || !strings.HasPrefix(link, prefix) {
		return ""
	}
	return template.URL(link)
}

// T returns the rendered text for key, or the key itself.
func (p PageData) T(key string) string {
	if text, ok := p.Texts[key]; ok {
		return text
	}
	return key
}

// NewPageData assembles the view for the active language of session.
func NewPageData(profile domain.ContactProfile, loc *i18n.Localizer, session *i18n.Session, links domain.ShareLinks) PageData {
	lang := session.Active()
	other := session.Other()
	rendered := loc.Render(lang, map[string]any{"Name": profile.Name})

	return PageData{
		Lang:          lang,
		OtherLang:     other,
		OtherLangName: loc.Text(other, i18n.LanguageNameKey),
		ToggleURL:     "/?lang=" + url.QueryEscape(string(other)),
		Profile:       profile,
		DisplayPhone:  profile.DisplayPhone(),
		MapsURL:       profile.MapsURL(),
		Socials:       profile.SocialLinks(),
		Links:         links,
		Share:         NewShareHrefs(links),
		QRURL:         "/api/qr",
		QRDownURL:     "/api/qr?download=1",
		Brand:         rendered.Brand,
		Texts:         rendered.Texts,
	}
}

// Renderer executes the embedded page templates.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("_root").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the card page. Output is buffered so a template failure never
// leaves a partial page.
func (r *Renderer) Render(w io.Writer, data PageData) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("render card page: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
