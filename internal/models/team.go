package models

// TeamType is one of the fixed team labels a booking is made for
type TeamType string

// Team constants
const (
	TeamSquad1  TeamType = "Squad1"
	TeamSquad2  TeamType = "Squad2"
	TeamSquad3  TeamType = "Squad3"
	TeamSquad4  TeamType = "Squad4"
	TeamSquad5  TeamType = "Squad5"
	TeamSquad6  TeamType = "Squad6"
	TeamSquad7  TeamType = "Squad7"
	TeamSquad8  TeamType = "Squad8"
	TeamBanQLDA TeamType = "BanQLDA"
	TeamKyThuat TeamType = "KyThuat"
)

// AllTeams lists the team labels in display order
var AllTeams = []TeamType{
	TeamSquad1, TeamSquad2, TeamSquad3, TeamSquad4,
	TeamSquad5, TeamSquad6, TeamSquad7, TeamSquad8,
	TeamBanQLDA, TeamKyThuat,
}

// Valid checks if the team is one of the known labels
func (t TeamType) Valid() bool {
	for _, known := range AllTeams {
		if t == known {
			return true
		}
	}
	return false
}
