package notifier

import (
	"fmt"
	"strings"

	"github.com/aleister1102/hashwatch/internal/models"
)

// DiscordMessagePayloadBuilder helps in constructing models.DiscordMessagePayload objects.
type DiscordMessagePayloadBuilder struct {
	payload models.DiscordMessagePayload
}

// NewDiscordMessagePayloadBuilder creates a new instance of DiscordMessagePayloadBuilder.
func NewDiscordMessagePayloadBuilder() *DiscordMessagePayloadBuilder {
	return &DiscordMessagePayloadBuilder{}
}

// WithContent sets the Content for the DiscordMessagePayload.
func (b *DiscordMessagePayloadBuilder) WithContent(content string) *DiscordMessagePayloadBuilder {
	b.payload.Content = content
	return b
}

// WithUsername sets the Username for the DiscordMessagePayload.
func (b *DiscordMessagePayloadBuilder) WithUsername(username string) *DiscordMessagePayloadBuilder {
	b.payload.Username = username
	return b
}

// AddEmbed adds a models.DiscordEmbed to the DiscordMessagePayload.
func (b *DiscordMessagePayloadBuilder) AddEmbed(embed models.DiscordEmbed) *DiscordMessagePayloadBuilder {
	b.payload.Embeds = append(b.payload.Embeds, embed)
	return b
}

// WithRoleMentions pings the given roles and restricts mentions to them.
func (b *DiscordMessagePayloadBuilder) WithRoleMentions(roleIDs []string) *DiscordMessagePayloadBuilder {
	if len(roleIDs) == 0 {
		return b
	}
	b.payload.Content = strings.TrimSpace(buildMentions(roleIDs) + " " + b.payload.Content)
	b.payload.AllowedMentions = &models.AllowedMentions{Roles: roleIDs}
	return b
}

// Build returns the constructed models.DiscordMessagePayload object.
func (b *DiscordMessagePayloadBuilder) Build() models.DiscordMessagePayload {
	return b.payload
}

// FormatDiscordPayload renders a Message as a single-embed webhook payload.
func FormatDiscordPayload(msg Message, mentionRoleIDs []string) models.DiscordMessagePayload {
	embed := NewDiscordEmbedBuilder().
		WithTitle(msg.Subject).
		WithDescription(msg.Summary).
		WithURL(msg.URL).
		WithColor(embedColor(msg)).
		WithTimestamp(msg.Timestamp).
		WithFooter(DiscordUsername)
	for _, f := range msg.Fields {
		value := f.Value
		if f.Name == "Errors" || strings.HasSuffix(f.Name, "hash") || f.Name == "Hash" {
			value = fmt.Sprintf("```%s```", f.Value)
		}
		embed.AddField(f.Name, value, f.Inline)
	}

	builder := NewDiscordMessagePayloadBuilder().
		WithUsername(DiscordUsername).
		AddEmbed(embed.Build())
	if msg.Severity != SeverityInfo {
		builder.WithRoleMentions(mentionRoleIDs)
	}
	return builder.Build()
}

func embedColor(msg Message) int {
	switch msg.Severity {
	case SeverityCritical:
		return CriticalErrorEmbedColor
	case SeverityWarning:
		return WarningEmbedColor
	}
	if msg.FirstSighting {
		return NewFileEmbedColor
	}
	return ChangeEmbedColor
}

// buildMentions creates mention strings for Discord role IDs
func buildMentions(roleIDs []string) string {
	mentions := make([]string, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		mentions = append(mentions, fmt.Sprintf("<@&%s>", roleID))
	}
	return strings.Join(mentions, " ")
}
