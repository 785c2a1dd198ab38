package i18n

// BrandEntry is the company name in one script.
type BrandEntry struct {
	Lang    Language `json:"lang"`
	Name    string   `json:"name"`
	Visible bool     `json:"visible"`
}

// BrandLockup holds the company name in both scripts. Exactly one entry is
// visible, the one for the active language.
type BrandLockup struct {
	Active  Language     `json:"active"`
	Entries []BrandEntry `json:"entries"`
}

func (l *Localizer) BrandLockup(active Language) BrandLockup {
	if !l.Supports(active) {
		active = l.primary
	}

	entries := make([]BrandEntry, 0, 2)
	for _, lang := range l.Languages() {
		entries = append(entries, BrandEntry{
			Lang:    lang,
			Name:    l.Text(lang, CompanyNameKey),
			Visible: lang == active,
		})
	}
	return BrandLockup{Active: active, Entries: entries}
}

// Visible returns the entry shown for the active language.
func (b BrandLockup) Visible() BrandEntry {
	for _, entry := range b.Entries {
		if entry.Visible {
			return entry
		}
	}
	return BrandEntry{}
}
