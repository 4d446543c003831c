package domain

// Identity is the authenticated (subject, role) pair derived from a verified token.
type Identity struct {
	SubjectID string
	Role      Role
}
