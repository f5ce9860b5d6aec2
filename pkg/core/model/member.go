package model

import (
	"strings"
	"time"
)

// OrgRoleParent marks guardian profiles; they never log work
const OrgRoleParent = "parent"

// Member is a participant profile from the member source
type Member struct {
	ID                string
	FirstName         string
	LastName          string
	Email             string
	BankAccountNumber string
	DateOfBirth       *time.Time
	// Role is the organisational category (member, admin, parent), not the age tier
	Role     string
	CustomID *int
}

func (m Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// YearlyMemberCount is the number of registered members born in BirthYear
type YearlyMemberCount struct {
	BirthYear int
	Members   int
}

// SeasonalMemberCount is the number of registered members per role in a season
type SeasonalMemberCount struct {
	Season string
	Counts map[Role]int
}
