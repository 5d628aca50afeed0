package domain

// Role represents a player's role in a round
type Role string

const (
	RoleJudge     Role = "judge"
	RoleSubmitter Role = "submitter"
)

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsJudge returns true if this role is the judge
func (r Role) IsJudge() bool {
	return r == RoleJudge
}
