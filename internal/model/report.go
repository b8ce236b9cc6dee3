package model

// OrganizeReport counts what one organisation pass did to the repository.
type OrganizeReport struct {
	ChampionsRenamed int      `json:"champions_renamed"`
	ChampionsSkipped []string `json:"champions_skipped"`
	SkinsRenamed     int      `json:"skins_renamed"`
	SkinsUnmatched   []string `json:"skins_unmatched"`
	ChromasMoved     int      `json:"chromas_moved"`
	ChromaAborts     []string `json:"chroma_aborts"`
	ChromaSkipped    []string `json:"chroma_skipped"`
}
