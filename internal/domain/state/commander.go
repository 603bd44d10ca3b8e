package state

// RankProgress is one rank category: the held rank plus percentage
// progress toward the next.
type RankProgress struct {
	Rank     int `json:"rank"`
	Progress int `json:"progress"`
}

// Ranks holds the eight rank categories the game reports.
type Ranks struct {
	Combat       RankProgress `json:"combat"`
	Trade        RankProgress `json:"trade"`
	Explore      RankProgress `json:"explore"`
	Soldier      RankProgress `json:"soldier"`
	Exobiologist RankProgress `json:"exobiologist"`
	Empire       RankProgress `json:"empire"`
	Federation   RankProgress `json:"federation"`
	CQC          RankProgress `json:"cqc"`
}

// Reputation holds standing with the four superpowers, -100..100.
type Reputation struct {
	Empire      float64 `json:"empire"`
	Federation  float64 `json:"federation"`
	Alliance    float64 `json:"alliance"`
	Independent float64 `json:"independent"`
}

// Commander is the player-identity slice.
type Commander struct {
	FID     string `json:"fid"`
	Name    string `json:"name"`
	Credits int64  `json:"credits"`
	Loan    int64  `json:"loan"`

	Ranks      Ranks      `json:"ranks"`
	Reputation Reputation `json:"reputation"`

	Horizons    bool   `json:"horizons"`
	Odyssey     bool   `json:"odyssey"`
	GameMode    string `json:"gameMode"`
	Group       string `json:"group"`
	Language    string `json:"language"`
	GameVersion string `json:"gameVersion"`
	Build       string `json:"build"`

	Power           string `json:"power"`
	PowerplayMerits int64  `json:"powerplayMerits"`
	PowerplayRank   int    `json:"powerplayRank"`
	TimePledged     int64  `json:"timePledged"`

	Squadron string `json:"squadron"`
}
