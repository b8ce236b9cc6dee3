package model

// Champion is a playable character, one per distinct champion id in the feed.
type Champion struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Chroma is a colour variant of a skin. ID is champion-local, like Skin.ID.
type Chroma struct {
	ID           int      `json:"id"`
	ChampionID   int      `json:"championId"`
	ChampionName string   `json:"championName"`
	Colors       []string `json:"colors"`
}

// Skin is a cosmetic variant of a champion. ID is local to the champion, not
// the flat feed id.
type Skin struct {
	ID           int      `json:"id"`
	ChampionID   int      `json:"championId"`
	ChampionName string   `json:"championName"`
	Name         string   `json:"name"`
	Image        string   `json:"image"`
	Chromas      []Chroma `json:"chromas"`
}

// Catalog is one load of the feed, normalised into champions and skins.
type Catalog struct {
	Champions []Champion
	Skins     []Skin
}

// ChampionByName returns the first champion accepted by match.
func (c *Catalog) ChampionByName(name string, match func(a, b string) bool) (Champion, bool) {
	for _, champ := range c.Champions {
		if match(champ.Name, name) {
			return champ, true
		}
	}
	return Champion{}, false
}

// SkinsOf returns the skins belonging to championID in feed order.
func (c *Catalog) SkinsOf(championID int) []Skin {
	out := make([]Skin, 0)
	for _, skin := range c.Skins {
		if skin.ChampionID == championID {
			out = append(out, skin)
		}
	}
	return out
}
