package utils

import (
	"fmt"
	"math"
	"regexp"

	"github.com/iceweasel13/solana-bomber/backend/models"
)

var (
	// ValidIdentityRegex accepts account addresses and other opaque ids
	ValidIdentityRegex = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,64}$`)

	// MaxBatchItems bounds bulk placement and bulk move requests
	MaxBatchItems = 100
)

// ValidateIdentity validates an identity supplied in a request body
func ValidateIdentity(field, id string) []models.FieldValidationError {
	if id == "" {
		return []models.FieldValidationError{{Field: field, Message: "Identity is required"}}
	}
	if !ValidIdentityRegex.MatchString(id) {
		return []models.FieldValidationError{{Field: field, Message: "Identity contains invalid characters", Value: id}}
	}
	return nil
}

// ValidatePlaceHero validates a single placement
func ValidatePlaceHero(prefix string, req *models.PlaceHeroRequest) []models.FieldValidationError {
	var errors []models.FieldValidationError
	errors = append(errors, validateRange(prefix+"hero_index", req.HeroIndex, math.MaxUint16)...)
	errors = append(errors, validateRange(prefix+"x", req.X, math.MaxUint8)...)
	errors = append(errors, validateRange(prefix+"y", req.Y, math.MaxUint8)...)
	return errors
}

// ValidateRemoveHero validates a tile reference
func ValidateRemoveHero(req *models.RemoveHeroRequest) []models.FieldValidationError {
	var errors []models.FieldValidationError
	errors = append(errors, validateRange("x", req.X, math.MaxUint8)...)
	errors = append(errors, validateRange("y", req.Y, math.MaxUint8)...)
	return errors
}

// ValidateBulkPlace validates every placement in the batch
func ValidateBulkPlace(req *models.BulkPlaceRequest) []models.FieldValidationError {
	if len(req.Placements) == 0 {
		return []models.FieldValidationError{{Field: "placements", Message: "At least one placement is required"}}
	}
	if len(req.Placements) > MaxBatchItems {
		return []models.FieldValidationError{{Field: "placements", Message: fmt.Sprintf("At most %d placements are allowed", MaxBatchItems)}}
	}
	var errors []models.FieldValidationError
	for i := range req.Placements {
		errors = append(errors, ValidatePlaceHero(fmt.Sprintf("placements[%d].", i), &req.Placements[i])...)
	}
	return errors
}

// ValidateMoveToMining validates a single hero reference
func ValidateMoveToMining(req *models.MoveToMiningRequest) []models.FieldValidationError {
	return validateRange("hero_index", req.HeroIndex, math.MaxUint16)
}

// ValidateBulkMove validates the hero index list
func ValidateBulkMove(req *models.BulkMoveRequest) []models.FieldValidationError {
	if len(req.HeroIndices) == 0 {
		return []models.FieldValidationError{{Field: "hero_indices", Message: "At least one hero is required"}}
	}
	if len(req.HeroIndices) > MaxBatchItems {
		return []models.FieldValidationError{{Field: "hero_indices", Message: fmt.Sprintf("At most %d heroes are allowed", MaxBatchItems)}}
	}
	var errors []models.FieldValidationError
	for i, idx := range req.HeroIndices {
		if idx < 0 || idx > math.MaxUint16 {
			errors = append(errors, models.FieldValidationError{
				Field:   fmt.Sprintf("hero_indices[%d]", i),
				Message: "Hero index is out of range",
				Value:   idx,
			})
		}
	}
	return errors
}

func validateRange(field string, v *int, maxValue int) []models.FieldValidationError {
	if v == nil {
		return []models.FieldValidationError{{Field: field, Message: "Field is required"}}
	}
	if *v < 0 || *v > maxValue {
		return []models.FieldValidationError{{Field: field, Message: fmt.Sprintf("Must be between 0 and %d", maxValue), Value: *v}}
	}
	return nil
}
