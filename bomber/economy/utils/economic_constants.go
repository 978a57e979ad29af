package utils

// BasisPoints is the denominator for burn and referral percentages.
const BasisPoints = 10_000

// Hero market
const (
	HeroPrice       = 100 // internal coins per hero
	MinHeroPurchase = 1
	MaxHeroPurchase = 10
)

// SecondsPerHour converts the hourly emission rate to per-second accrual.
const SecondsPerHour = 3600

// Genesis defaults used when a parameter file leaves a field unset.
const (
	DefaultInitialHousePrice = 250_000_000
	DefaultInitialRate       = 1_000
	DefaultHalvingInterval   = 1_000_000_000
	DefaultBurnBps           = 5_000
	DefaultReferralBps       = 250
	DefaultRewardsPrecision  = 1
)
