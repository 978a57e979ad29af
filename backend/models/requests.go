package models

import (
	"github.com/iceweasel13/solana-bomber/bomber/economy/house"
)

// Player requests

type SetReferrerRequest struct {
	Referrer string `json:"referrer"`
}

type BuyHeroesRequest struct {
	Quantity int `json:"quantity"`
}

type PlaceHeroRequest struct {
	HeroIndex  *int `json:"hero_index"`
	X          *int `json:"x"`
	Y          *int `json:"y"`
	IsRestroom bool `json:"is_restroom"`
}

type RemoveHeroRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

type BulkPlaceRequest struct {
	Placements []PlaceHeroRequest `json:"placements"`
}

type MoveToMiningRequest struct {
	HeroIndex *int `json:"hero_index"`
}

type BulkMoveRequest struct {
	HeroIndices []int `json:"hero_indices"`
}

// Admin requests

type SetTreasuryRequest struct {
	Treasury string `json:"treasury"`
}

type ToggleRequest struct {
	Enabled *bool `json:"enabled"`
}

type PauseRequest struct {
	Paused *bool `json:"paused"`
}

// Responses that wrap core values

type RemoveHeroResponse struct {
	HeroIndex uint16 `json:"hero_index"`
}

type UpgradeHouseResponse struct {
	Cost uint64 `json:"cost"`
}

// Placement converts a validated request.
func (r PlaceHeroRequest) Placement() house.Placement {
	return house.Placement{
		HeroIndex:  uint16(*r.HeroIndex),
		X:          uint8(*r.X),
		Y:          uint8(*r.Y),
		IsRestroom: r.IsRestroom,
	}
}
