package models

// DataScope narrows which tickets a caller may see. The zero value matches nothing;
// use Unrestricted for roles that see everything.
type DataScope struct {
	Unrestricted bool    `json:"unrestricted"`
	OwnerID      *string `json:"owner_id,omitempty"`
	CreatedByID  *string `json:"created_by_id,omitempty"`
}

// UnrestrictedScope matches every resource.
func UnrestrictedScope() DataScope {
	return DataScope{Unrestricted: true}
}

// EmptyScope matches no resource.
func EmptyScope() DataScope {
	return DataScope{}
}

// OwnedBy restricts to tickets whose creator profile is ownerID.
func OwnedBy(ownerID string) DataScope {
	return DataScope{OwnerID: &ownerID}
}

// CreatedBy restricts to resources created by identityID.
func CreatedBy(identityID string) DataScope {
	return DataScope{CreatedByID: &identityID}
}

// IsEmpty reports whether the scope can never match.
func (s DataScope) IsEmpty() bool {
	return !s.Unrestricted && s.OwnerID == nil && s.CreatedByID == nil
}

// Matches evaluates the scope against a ticket.
func (s DataScope) Matches(t Ticket) bool {
	if s.Unrestricted {
		return true
	}
	if s.IsEmpty() {
		return false
	}
	if s.OwnerID != nil && t.CreatorID != *s.OwnerID {
		return false
	}
	if s.CreatedByID != nil && t.CreatedByID != *s.CreatedByID {
		return false
	}
	return true
}

// MatchesCreator evaluates the scope against a creator profile.
func (s DataScope) MatchesCreator(c Creator) bool {
	if s.Unrestricted {
		return true
	}
	if s.IsEmpty() {
		return false
	}
	if s.OwnerID != nil && c.ID != *s.OwnerID {
		return false
	}
	if s.CreatedByID != nil && c.CreatedByID != *s.CreatedByID {
		return false
	}
	return true
}
