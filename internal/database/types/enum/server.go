package enum

// ServerVendor identifies the chat platform a server belongs to.
//
//go:generate go tool enumer -type=ServerVendor -trimprefix=ServerVendor -transform=lower
type ServerVendor int

const (
	// ServerVendorDiscord is a Discord guild.
	ServerVendorDiscord ServerVendor = iota + 1
)

// ServerTier represents the subscription level of a server.
// Tiers are ordered, a higher value always grants a larger daily quota.
//
//go:generate go tool enumer -type=ServerTier -trimprefix=ServerTier
type ServerTier int

const (
	// ServerTierFree allows 3 posts per day.
	ServerTierFree ServerTier = iota + 1
	// ServerTierStandard allows 10 posts per day.
	ServerTierStandard
	// ServerTierPremium allows 25 posts per day.
	ServerTierPremium
	// ServerTierUltra has no daily limit.
	ServerTierUltra
)

// ServerStatus represents the lifecycle state of a server.
//
//go:generate go tool enumer -type=ServerStatus -trimprefix=ServerStatus
type ServerStatus int

const (
	// ServerStatusActive servers are served normally.
	ServerStatusActive ServerStatus = iota + 1
	// ServerStatusInactive servers were deactivated by an administrator.
	ServerStatusInactive
	// ServerStatusBlocked servers were blocked for abuse.
	ServerStatusBlocked
)
