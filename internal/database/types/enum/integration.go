package enum

// Integration identifies an external content platform. It is stored by name.
//
//go:generate go tool enumer -type=Integration -trimprefix=Integration -transform=lower -sql
type Integration int

const (
	IntegrationInstagram Integration = iota + 1
	IntegrationTikTok
	IntegrationYouTube
	IntegrationFacebook
	IntegrationReddit
	IntegrationTwitter
	IntegrationThreads
	IntegrationTwitch
	IntegrationBluesky
	IntegrationTruthSocial
	IntegrationLinkedIn
	IntegrationFourChan
	IntegrationNineGag
	IntegrationTwentyFourUr
)

// DefaultIntegrations are enabled for every newly created server.
var DefaultIntegrations = []Integration{
	IntegrationInstagram,
	IntegrationTikTok,
	IntegrationYouTube,
}
