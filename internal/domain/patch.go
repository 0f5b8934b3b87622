package domain

// Patch types model partial updates: a nil field was absent from the request
// and is left untouched; a non-nil field overwrites, even with an empty
// value. This is deliberately not a blind merge - only fields the caller
// actually sent are applied.

// SessionPatch is a partial update to a session's metadata. The slug,
// ledger, and owner token are never patchable.
type SessionPatch struct {
	Title       *string
	Description *string
}

// Apply copies the set fields onto s and reports whether anything changed.
func (p SessionPatch) Apply(s *RankingSession) bool {
	changed := false
	if p.Title != nil && *p.Title != s.Title {
		s.Title = *p.Title
		changed = true
	}
	if p.Description != nil && *p.Description != s.Description {
		s.Description = *p.Description
		changed = true
	}
	return changed
}

// CardPatch is a partial update to a card's display fields.
type CardPatch struct {
	Title       *string
	Description *string
	ImageURL    *string
	LinkURL     *string
	Tags        *[]string
}

// Apply copies the set fields onto c and reports whether anything changed.
func (p CardPatch) Apply(c *Card) bool {
	changed := false
	if p.Title != nil && *p.Title != c.Title {
		c.Title = *p.Title
		changed = true
	}
	if p.Description != nil && *p.Description != c.Description {
		c.Description = *p.Description
		changed = true
	}
	if p.ImageURL != nil && *p.ImageURL != c.ImageURL {
		c.ImageURL = *p.ImageURL
		changed = true
	}
	if p.LinkURL != nil && *p.LinkURL != c.LinkURL {
		c.LinkURL = *p.LinkURL
		changed = true
	}
	if p.Tags != nil {
		c.Tags = *p.Tags
		changed = true
	}
	return changed
}
