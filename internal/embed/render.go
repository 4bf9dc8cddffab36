package embed

import (
	"strings"

	"github.com/robalyx/embedder/internal/database/types"
	"github.com/robalyx/embedder/internal/integration"
	"github.com/robalyx/embedder/pkg/utils"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MissingValue is shown for fields a platform did not provide.
const MissingValue = "❌"

var titleCase = cases.Title(language.English)

// RenderPost fills the post format of the result.
func RenderPost(result *Result) string {
	post := result.Post

	replacer := strings.NewReplacer(
		"{url}", result.URL,
		"{author}", orMissing(post.Author),
		"{created}", formatDate(post),
		"{views}", formatCount(post.Views),
		"{likes}", formatCount(post.Likes),
		"{dislikes}", formatCount(post.Dislikes),
		"{description}", spoiler(orMissing(post.Description), post.Spoiler),
	)

	return replacer.Replace(result.Format)
}

// RenderComments renders every comment with the comment format.
func RenderComments(comments []*integration.Comment) string {
	var b strings.Builder
	for _, comment := range comments {
		created := MissingValue
		if comment.Created != nil {
			created = utils.FormatDate(*comment.Created)
		}

		strings.NewReplacer(
			"{author}", orMissing(comment.Author),
			"{created}", created,
			"{likes}", formatCount(comment.Likes),
			"{comment}", spoiler(orMissing(comment.Text), comment.Spoiler),
		).WriteString(&b, integration.DefaultCommentFormat)
	}
	return b.String()
}

// RenderServerInfo renders the server settings as a yml code block.
func RenderServerInfo(server *types.Server) string {
	prefix := server.Prefix
	if prefix == "" {
		prefix = "No prefix"
	}

	var b strings.Builder
	b.WriteString("```yml\n")
	b.WriteString("Tier: " + titleCase.String(server.Tier.String()) + "\n")
	b.WriteString("Prefix: " + prefix + "\n")
	b.WriteString("Integrations:\n")
	for _, setting := range server.Integrations {
		state := "Disabled"
		if setting.Enabled {
			state = "Enabled"
		}
		b.WriteString("  - " + titleCase.String(setting.Integration.String()) + ": " + state + "\n")
	}
	b.WriteString("```\n")

	return b.String()
}

func orMissing(value string) string {
	if value == "" {
		return MissingValue
	}
	return value
}

func spoiler(value string, hidden bool) string {
	if hidden {
		return "||" + value + "||"
	}
	return value
}

func formatCount(value *int64) string {
	if value == nil {
		return MissingValue
	}
	return utils.FormatNumber(*value)
}

func formatDate(post *types.Post) string {
	if post.PostedAt == nil {
		return MissingValue
	}
	return utils.FormatDate(*post.PostedAt)
}
