package integration

import "github.com/robalyx/embedder/internal/database/types/enum"

// Post format lines. Formats are assembled from these so that every
// integration only shows the fields its platform provides.
const (
	lineURL         = "🔗 URL: {url}\n"
	lineAuthor      = "🧑🏻‍🎨 Author: {author}\n"
	lineCreated     = "📅 Created: {created}\n"
	lineViews       = "👀 Views: {views}\n"
	lineLikes       = "👍🏻 Likes: {likes}\n"
	lineReactions   = "👍🏻 Likes: {likes} 👎🏻 Dislikes: {dislikes}\n"
	lineDescription = "📕 Description: {description}\n"
	header          = lineURL + lineAuthor + lineCreated
)

// DefaultPostFormat shows every field a post can carry.
const DefaultPostFormat = header + lineViews + lineReactions + lineDescription + "\n"

// DefaultCommentFormat is used to render comments.
const DefaultCommentFormat = lineAuthor + lineCreated + lineLikes + "📕 Comment: {comment}\n\n"

var postFormats = map[enum.Integration]string{
	enum.IntegrationBluesky:      header + lineLikes + lineDescription + "\n",
	enum.IntegrationFacebook:     DefaultPostFormat,
	enum.IntegrationFourChan:     header + lineDescription + "\n",
	enum.IntegrationInstagram:    header + lineLikes + "\n",
	enum.IntegrationLinkedIn:     header + lineLikes + lineDescription + "\n",
	enum.IntegrationReddit:       header + lineReactions + lineDescription + "\n",
	enum.IntegrationThreads:      header + lineLikes + lineDescription + "\n",
	enum.IntegrationTikTok:       header + lineViews + lineLikes + "\n",
	enum.IntegrationTruthSocial:  header + lineLikes + lineDescription + "\n",
	enum.IntegrationTwentyFourUr: header + lineDescription + "\n",
	enum.IntegrationTwitch:       header + lineViews + lineDescription + "\n",
	enum.IntegrationTwitter:      header + lineViews + lineLikes + lineDescription + "\n",
	enum.IntegrationYouTube:      header + lineViews + lineReactions + "\n",
}

// PostFormat returns the built-in post format of an integration.
func PostFormat(i enum.Integration) string {
	if format, ok := postFormats[i]; ok {
		return format
	}
	return DefaultPostFormat
}
