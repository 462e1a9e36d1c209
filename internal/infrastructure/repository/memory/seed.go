package memory

import (
	"github.com/riskibarqy/squad-builder/internal/domain/athlete"
	"github.com/riskibarqy/squad-builder/internal/domain/team"
)

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: "idn-persija", Name: "Persija Jakarta", Short: "PSJ"},
		{ID: "idn-persib", Name: "Persib Bandung", Short: "PSB"},
		{ID: "idn-persebaya", Name: "Persebaya Surabaya", Short: "PRB"},
		{ID: "idn-baliutd", Name: "Bali United", Short: "BU"},
		{ID: "idn-arema", Name: "Arema Malang", Short: "ARE"},
		{ID: "idn-psm", Name: "PSM Makassar", Short: "PSM"},
	}
}

func SeedAthletes() []athlete.Athlete {
	return []athlete.Athlete{
		{ID: "idn-gk-01", TeamID: "idn-persija", Name: "Andritany Ardhiyasa", Position: athlete.PositionKeeper, Cost: 45},
		{ID: "idn-gk-02", TeamID: "idn-persib", Name: "Teja Paku Alam", Position: athlete.PositionKeeper, Cost: 40},
		{ID: "idn-gk-03", TeamID: "idn-arema", Name: "Adilson Maringa", Position: athlete.PositionKeeper, Cost: 42},
		{ID: "idn-def-01", TeamID: "idn-persija", Name: "Rizky Ridho", Position: athlete.PositionDefender, Cost: 55},
		{ID: "idn-def-02", TeamID: "idn-persib", Name: "Nick Kuipers", Position: athlete.PositionDefender, Cost: 52},
		{ID: "idn-def-03", TeamID: "idn-persebaya", Name: "Dusan Stevanovic", Position: athlete.PositionDefender, Cost: 50},
		{ID: "idn-def-04", TeamID: "idn-baliutd", Name: "Ricky Fajrin", Position: athlete.PositionDefender, Cost: 48},
		{ID: "idn-def-05", TeamID: "idn-arema", Name: "Syaeful Anwar", Position: athlete.PositionDefender, Cost: 47},
		{ID: "idn-def-06", TeamID: "idn-psm", Name: "Yuran Fernandes", Position: athlete.PositionDefender, Cost: 46},
		{ID: "idn-mid-01", TeamID: "idn-persija", Name: "Maciej Gajos", Position: athlete.PositionMidfielder, Cost: 75},
		{ID: "idn-mid-02", TeamID: "idn-persib", Name: "Marc Klok", Position: athlete.PositionMidfielder, Cost: 78},
		{ID: "idn-mid-03", TeamID: "idn-persebaya", Name: "Bruno Moreira", Position: athlete.PositionMidfielder, Cost: 72},
		{ID: "idn-mid-04", TeamID: "idn-baliutd", Name: "Eber Bessa", Position: athlete.PositionMidfielder, Cost: 70},
		{ID: "idn-mid-05", TeamID: "idn-arema", Name: "Renshi Yamaguchi", Position: athlete.PositionMidfielder, Cost: 68},
		{ID: "idn-mid-06", TeamID: "idn-psm", Name: "Rasyid Bakri", Position: athlete.PositionMidfielder, Cost: 66},
		{ID: "idn-fwd-01", TeamID: "idn-persebaya", Name: "Flavio Silva", Position: athlete.PositionForward, Cost: 85},
		{ID: "idn-fwd-02", TeamID: "idn-baliutd", Name: "Ilija Spasojevic", Position: athlete.PositionForward, Cost: 88},
		{ID: "idn-fwd-03", TeamID: "idn-psm", Name: "Everton Nascimento", Position: athlete.PositionForward, Cost: 82},
		{ID: "idn-fwd-04", TeamID: "idn-persib", Name: "David da Silva", Position: athlete.PositionForward, Cost: 90},
		{ID: "idn-fwd-05", TeamID: "idn-arema", Name: "Dedik Setiawan", Position: athlete.PositionForward, Cost: 80},
	}
}
