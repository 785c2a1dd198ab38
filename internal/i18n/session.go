package i18n

// Session is the two-state active language selector. It starts on the primary
// language and changes only through Toggle or Select.
type Session struct {
	primary   Language
	secondary Language
	active    Language
}

func NewSession(primary, secondary Language) *Session {
	return &Session{primary: primary, secondary: secondary, active: primary}
}

// SessionFor starts a session for l, switched to lang when lang is the secondary language.
func (l *Localizer) SessionFor(lang Language) *Session {
	s := NewSession(l.primary, l.secondary)
	s.Select(lang)
	return s
}

func (s *Session) Active() Language {
	return s.active
}

// Other is the language Toggle would switch to.
func (s *Session) Other() Language {
	if s.active == s.primary {
		return s.secondary
	}
	return s.primary
}

// Toggle switches to the other language and returns it.
func (s *Session) Toggle() Language {
	s.active = s.Other()
	return s.active
}

// Select activates lang if it is one of the two languages and reports whether it did.
func (s *Session) Select(lang Language) bool {
	if lang != s.primary && lang != s.secondary {
		return false
	}
	s.active = lang
	return true
}
