// Package prompts builds the text sent to the language and image models.
// Every function here is pure: identical inputs give identical prompts.
package prompts

import (
	"fmt"
	"strings"

	"github.com/maheshrc27/adwola-api/internal/models"
)

const StrategySystem = "You are an expert social media strategist. You always answer with valid JSON only, no prose and no markdown."

const CopywritingSystem = "You are an expert social media copywriter. You write ready-to-publish posts and return only the post text."

type platformGuide struct {
	Length   string
	Tone     string
	Hashtags string
	Extra    string
}

var platformGuides = map[string]platformGuide{
	models.PlatformLinkedIn: {
		Length:   "150-300 words",
		Tone:     "professional and insightful, written for a business audience",
		Hashtags: "3-5 relevant hashtags at the end",
		Extra:    "Open with a strong hook line and use short paragraphs with line breaks.",
	},
	models.PlatformTwitter: {
		Length:   "under 280 characters",
		Tone:     "concise, punchy and conversational",
		Hashtags: "1-2 hashtags at most",
		Extra:    "Every word must earn its place. No threads.",
	},
	models.PlatformInstagram: {
		Length:   "100-150 words",
		Tone:     "visual, engaging and authentic",
		Hashtags: "8-15 hashtags grouped at the end",
		Extra:    "Use emojis naturally and put the most important line first.",
	},
	models.PlatformFacebook: {
		Length:   "80-150 words",
		Tone:     "friendly, conversational and community focused",
		Hashtags: "1-3 hashtags",
		Extra:    "End with a question or prompt that invites comments.",
	},
}

// StrategyPrompt asks for exactly four post concepts as a JSON array.
func StrategyPrompt(brand *models.Brand, brief *models.ContentBrief) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a social media content strategy for the brand %q.\n\n", brand.BrandName)
	writeBrand(&b, brand)
	writeBrief(&b, brief)

	fmt.Fprintf(&b, "Propose exactly 4 post concepts spread across these platforms: %s.\n", strings.Join(models.Platforms, ", "))
	b.WriteString("Respond with a JSON array of exactly 4 objects and nothing else. Each object must have these fields:\n")
	fmt.Fprintf(&b, "- \"platform\": one of %s\n", strings.Join(models.Platforms, ", "))
	fmt.Fprintf(&b, "- \"post_type\": one of %s\n", strings.Join(models.PostTypes, ", "))
	b.WriteString("- \"key_message\": the single message the post must land\n")
	b.WriteString("- \"content_angle\": the creative angle or hook\n")
	b.WriteString("- \"hashtags\": an array of 3-5 hashtags\n")

	return b.String()
}

// CopywritingPrompt asks for the final text of one post. The writing rules
// depend on strategy.Platform; unknown platforms get a generic instruction.
func CopywritingPrompt(brand *models.Brand, brief *models.ContentBrief, strategy models.Strategy) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a %s post for the brand %q.\n\n", strategy.Platform, brand.BrandName)
	writeBrand(&b, brand)
	writeBrief(&b, brief)

	b.WriteString("Post concept:\n")
	fmt.Fprintf(&b, "- Format: %s\n", strategy.PostType)
	fmt.Fprintf(&b, "- Key message: %s\n", strategy.KeyMessage)
	fmt.Fprintf(&b, "- Content angle: %s\n", strategy.ContentAngle)
	if len(strategy.Hashtags) > 0 {
		fmt.Fprintf(&b, "- Suggested hashtags: %s\n", strings.Join(strategy.Hashtags, " "))
	}
	b.WriteString("\n")

	if guide, ok := platformGuides[strategy.Platform]; ok {
		fmt.Fprintf(&b, "%s guidelines:\n", strategy.Platform)
		fmt.Fprintf(&b, "- Length: %s\n", guide.Length)
		fmt.Fprintf(&b, "- Tone: %s\n", guide.Tone)
		fmt.Fprintf(&b, "- Hashtags: %s\n", guide.Hashtags)
		fmt.Fprintf(&b, "- %s\n", guide.Extra)
	} else {
		b.WriteString("Follow the best practices of the target platform for length, tone and hashtags.\n")
	}

	if brief.CTAText != "" {
		fmt.Fprintf(&b, "\nEnd with this call to action: %s\n", brief.CTAText)
	}
	b.WriteString("\nReturn only the post text, ready to publish.")

	return b.String()
}

// ImagePrompt describes the visual for an image+caption post.
func ImagePrompt(brand *models.Brand, brief *models.ContentBrief, strategy models.Strategy) string {
	return fmt.Sprintf(
		"A high quality social media image for %s about %s. Key message: %s. Creative angle: %s. Style: %s, modern, eye-catching, no text overlay.",
		brand.BrandName, brief.Topic, strategy.KeyMessage, strategy.ContentAngle, brand.ToneOfVoice,
	)
}

// RegenerationStrategy stands in for the concept of an existing post, whose
// original strategy is not stored.
func RegenerationStrategy(platform string) models.Strategy {
	return models.Strategy{
		Platform:     platform,
		PostType:     models.PostTypeTextOnly,
		KeyMessage:   "Regenerated content",
		ContentAngle: "Fresh perspective",
	}
}

func writeBrand(b *strings.Builder, brand *models.Brand) {
	b.WriteString("Brand:\n")
	fmt.Fprintf(b, "- Name: %s\n", brand.BrandName)
	fmt.Fprintf(b, "- Description: %s\n", brand.BrandDescription)
	fmt.Fprintf(b, "- Tone of voice: %s\n\n", brand.ToneOfVoice)
}

func writeBrief(b *strings.Builder, brief *models.ContentBrief) {
	b.WriteString("Brief:\n")
	fmt.Fprintf(b, "- Topic: %s\n", brief.Topic)
	if brief.Goal != "" {
		fmt.Fprintf(b, "- Goal: %s\n", brief.Goal)
	}
	if brief.CTAText != "" {
		fmt.Fprintf(b, "- Call to action: %s\n", brief.CTAText)
	}
	b.WriteString("\n")
}
