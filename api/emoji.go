package api

import (
	"strings"

	"github.com/forPelevin/gomoji"
)

var emojiShortcodes = map[string]string{
	":rocket:":     "🚀",
	":star:":       "⭐",
	":fire:":       "🔥",
	":check:":      "✅",
	":x:":          "❌",
	":warning:":    "⚠️",
	":bulb:":       "💡",
	":book:":       "📚",
	":folder:":     "📁",
	":calendar:":   "📅",
	":clock:":      "🕐",
	":email:":      "📧",
	":phone:":      "📞",
	":globe:":      "🌐",
	":heart:":      "❤️",
	":thumbsup:":   "👍",
	":thumbsdown:": "👎",
	":smile:":      "😊",
	":tada:":       "🎉",
	":sparkles:":   "✨",
}

// ParseEmoji resolves a known shortcode to its emoji. Anything else is
// returned unchanged.
func ParseEmoji(value string) string {
	trimmed := strings.TrimSpace(value)
	if emoji, ok := emojiShortcodes[trimmed]; ok {
		return emoji
	}
	return value
}

// IsEmoji reports whether value holds an emoji character.
func IsEmoji(value string) bool {
	return gomoji.ContainsEmoji(value)
}

// iconValue shapes an icon for page payloads. Strings become emoji icons
// unless they hold no emoji and look like a URL, which become external icons.
// Non-string values are passed through.
func iconValue(icon any) any {
	str, ok := icon.(string)
	if !ok {
		return icon
	}
	emoji := ParseEmoji(str)
	if !IsEmoji(emoji) && isURL(str) {
		return map[string]any{"type": "external", "external": map[string]any{"url": strings.TrimSpace(str)}}
	}
	return map[string]any{"type": "emoji", "emoji": emoji}
}

func isURL(value string) bool {
	value = strings.TrimSpace(value)
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}
