package economy

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a GameError for callers that need to decide how to react
// (retry, surface to the player, alert an operator).
type ErrorKind int

const (
	// KindPrecondition is a rejected operation. State is untouched and the caller may fix the input.
	KindPrecondition ErrorKind = iota
	// KindArithmetic is an overflow or invalid calculation. It is fatal for the operation and not retryable.
	KindArithmetic
	// KindAuthorization is a caller that is not allowed to run the operation.
	KindAuthorization
	// KindNotFound is a missing profile or global state.
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindArithmetic:
		return "arithmetic"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// GameError is the single error type returned by the economy core.
type GameError struct {
	Code    string
	Kind    ErrorKind
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// Is matches on Code so wrapped copies still compare equal to the sentinels.
func (e *GameError) Is(target error) bool {
	t, ok := target.(*GameError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newError(kind ErrorKind, code, message string) *GameError {
	return &GameError{Code: code, Kind: kind, Message: message}
}

// Game lifecycle
var (
	ErrGamePaused         = newError(KindPrecondition, "GAME_PAUSED", "game is currently paused")
	ErrGameNotStarted     = newError(KindPrecondition, "GAME_NOT_STARTED", "game has not started yet")
	ErrGameAlreadyStarted = newError(KindPrecondition, "GAME_ALREADY_STARTED", "game has already started")
	ErrAlreadyInitialized = newError(KindPrecondition, "ALREADY_INITIALIZED", "game state is already initialized")
	ErrNotInitialized     = newError(KindNotFound, "NOT_INITIALIZED", "game state is not initialized")
	ErrMintingDisabled    = newError(KindPrecondition, "MINTING_DISABLED", "hero minting is currently disabled")
	ErrUpgradesDisabled   = newError(KindPrecondition, "HOUSE_UPGRADES_DISABLED", "house upgrades are currently disabled")
	ErrUnauthorized       = newError(KindAuthorization, "UNAUTHORIZED", "caller is not the game authority")
)

// Profiles and balances
var (
	ErrProfileNotFound      = newError(KindNotFound, "PROFILE_NOT_FOUND", "player profile not found")
	ErrProfileAlreadyExists = newError(KindPrecondition, "PROFILE_ALREADY_EXISTS", "player already owns a house")
	ErrInsufficientCoins    = newError(KindPrecondition, "INSUFFICIENT_COINS", "insufficient coins")
	ErrInvalidHeroQuantity  = newError(KindPrecondition, "INVALID_HERO_QUANTITY", "hero quantity must be between 1 and 10")
	ErrInventoryFull        = newError(KindPrecondition, "INVENTORY_FULL", "hero inventory is full")
	ErrReferrerAlreadySet   = newError(KindPrecondition, "REFERRER_ALREADY_SET", "referrer is already set")
	ErrCannotReferSelf      = newError(KindPrecondition, "CANNOT_REFER_SELF", "cannot set yourself as referrer")
	ErrInvalidIdentity      = newError(KindPrecondition, "INVALID_IDENTITY", "identity must not be empty")
)

// Grid and map
var (
	ErrInvalidHeroIndex       = newError(KindPrecondition, "INVALID_HERO_INDEX", "invalid hero index")
	ErrInvalidGridCoordinates = newError(KindPrecondition, "INVALID_GRID_COORDINATES", "grid coordinates are outside the house")
	ErrGridPositionOccupied   = newError(KindPrecondition, "GRID_POSITION_OCCUPIED", "grid position is already occupied")
	ErrGridPositionEmpty      = newError(KindPrecondition, "GRID_POSITION_EMPTY", "grid position is empty")
	ErrHeroAlreadyPlaced      = newError(KindPrecondition, "HERO_ALREADY_PLACED", "hero is already placed in the house")
	ErrDuplicatePlacement     = newError(KindPrecondition, "DUPLICATE_PLACEMENT", "batch places the same hero or tile twice")
	ErrRestroomFull           = newError(KindPrecondition, "RESTROOM_FULL", "restroom capacity reached")
	ErrEmptyBatch             = newError(KindPrecondition, "EMPTY_BATCH", "batch must not be empty")
	ErrHeroAlreadyOnMap       = newError(KindPrecondition, "HERO_ALREADY_ON_MAP", "hero is already on the mining map")
	ErrMapFull                = newError(KindPrecondition, "MAP_FULL", "mining map is full")
	ErrHeroIsSleeping         = newError(KindPrecondition, "HERO_IS_SLEEPING", "hero is sleeping and needs rest")
)

// Claims and upgrades
var (
	ErrNoHeroesOnMap         = newError(KindPrecondition, "NO_HEROES_ON_MAP", "no heroes on the mining map")
	ErrNoActiveHeroes        = newError(KindPrecondition, "NO_ACTIVE_HEROES", "every hero on the map is sleeping")
	ErrNoRewardsToClaim      = newError(KindPrecondition, "NO_REWARDS_TO_CLAIM", "no rewards to claim")
	ErrUpgradeCooldownActive = newError(KindPrecondition, "UPGRADE_COOLDOWN_ACTIVE", "house upgrade cooldown is still active")
	ErrMaxHouseLevelReached  = newError(KindPrecondition, "MAX_HOUSE_LEVEL_REACHED", "house is already at max level")
)

// Configuration
var (
	ErrInvalidBurnPercentage   = newError(KindPrecondition, "INVALID_BURN_PERCENTAGE", "burn percentage must not exceed 10000 basis points")
	ErrInvalidReferralFee      = newError(KindPrecondition, "INVALID_REFERRAL_FEE", "referral fee must not exceed 10000 basis points")
	ErrInvalidHalvingInterval  = newError(KindPrecondition, "INVALID_HALVING_INTERVAL", "halving interval must be positive")
	ErrInvalidRewardsPrecision = newError(KindPrecondition, "INVALID_REWARDS_PRECISION", "rewards precision must be positive")
)

// Arithmetic
var (
	ErrArithmeticOverflow = newError(KindArithmetic, "ARITHMETIC_OVERFLOW", "arithmetic overflow")
	ErrInvalidCalculation = newError(KindArithmetic, "INVALID_CALCULATION", "invalid calculation")
	ErrInvalidLevel       = newError(KindArithmetic, "INVALID_HOUSE_LEVEL", "house level outside the level table")
)

// Wrap annotates a sentinel with operation context while keeping errors.Is intact.
func Wrap(sentinel *GameError, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// AsGameError extracts the GameError from err, if any.
func AsGameError(err error) (*GameError, bool) {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// KindOf reports the kind of err. Errors that did not come from the core are
// treated as arithmetic (fatal) so they are never retried as user mistakes.
func KindOf(err error) ErrorKind {
	if ge, ok := AsGameError(err); ok {
		return ge.Kind
	}
	return KindArithmetic
}

// IsFatal reports whether err must abort the operation without retry.
func IsFatal(err error) bool {
	return err != nil && KindOf(err) == KindArithmetic
}
