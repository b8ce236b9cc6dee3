package model

import (
	"fmt"
	"strconv"
)

// AssetRef addresses a single organised asset: a skin or a chroma of a champion.
type AssetRef struct {
	ChampionID int `json:"championId"`
	SkinID     int `json:"id"`
}

// RefOf returns the asset reference of a skin.
func RefOf(s Skin) AssetRef {
	return AssetRef{ChampionID: s.ChampionID, SkinID: s.ID}
}

// ChromaRef returns the asset reference of a chroma.
func ChromaRef(c Chroma) AssetRef {
	return AssetRef{ChampionID: c.ChampionID, SkinID: c.ID}
}

// Dir is the organised directory name of the champion.
func (r AssetRef) Dir() string {
	return strconv.Itoa(r.ChampionID)
}

// FileName is the organised asset file name using ext (with leading dot).
func (r AssetRef) FileName(ext string) string {
	return strconv.Itoa(r.SkinID) + ext
}

func (r AssetRef) String() string {
	return fmt.Sprintf("%d/%d", r.ChampionID, r.SkinID)
}
