package models

// xpThresholds[i] is the minimum XP for level i+1, for levels 1..10.
// Past level 10 each level costs a flat 1000 XP.
var xpThresholds = []int{0, 100, 300, 600, 1000, 1500, 2100, 2800, 3600, 4500, 5500}

// LevelFromXP calculates a user's level from their accumulated XP.
func LevelFromXP(xp int) int {
	if xp >= xpThresholds[10] {
		return 10 + (xp-xpThresholds[10])/1000
	}
	for level := 10; level >= 1; level-- {
		if xp >= xpThresholds[level-1] {
			return level
		}
	}
	return 1
}

// XPForLevel returns the minimum XP required to reach the given level.
func XPForLevel(level int) int {
	if level <= 0 {
		return 0
	}
	if level <= 10 {
		return xpThresholds[level-1]
	}
	return xpThresholds[10] + (level-10)*1000
}

// XPGain calculates XP awarded for a match result. Placement and kills both
// contribute; team formats pay out more.
func XPGain(rank, kills int, tournamentType TournamentType) int {
	const baseXP = 50

	var rankXP int
	switch {
	case rank == 1:
		rankXP = 200
	case rank <= 3:
		rankXP = 150
	case rank <= 10:
		rankXP = 100
	case rank <= 25:
		rankXP = 75
	default:
		rankXP = 25
	}

	killXP := kills * 10

	multiplier := 1.0
	switch tournamentType {
	case TypeElimination:
		multiplier = 1.2
	case TypeTeamVsTeam:
		multiplier = 1.5
	}

	return int(float64(baseXP+rankXP+killXP) * multiplier)
}
