package api

import "testing"

func TestParseEmoji(t *testing.T) {
	if got := ParseEmoji(":rocket:"); got != "🚀" {
		t.Fatalf("expected rocket emoji, got %q", got)
	}
	if got := ParseEmoji("🦊"); got != "🦊" {
		t.Fatalf("expected pass-through, got %q", got)
	}
	if got := ParseEmoji(":unknown:"); got != ":unknown:" {
		t.Fatalf("expected unknown shortcode unchanged, got %q", got)
	}
}

func TestIconValue(t *testing.T) {
	emoji := iconValue(":tada:").(map[string]any)
	if emoji["type"] != "emoji" || emoji["emoji"] != "🎉" {
		t.Fatalf("unexpected emoji icon: %#v", emoji)
	}

	external := iconValue("https://example.com/icon.png").(map[string]any)
	if external["type"] != "external" {
		t.Fatalf("expected external icon, got %#v", external)
	}

	custom := map[string]any{"type": "file"}
	if got := iconValue(custom).(map[string]any); got["type"] != "file" {
		t.Fatalf("expected non-string icon passed through, got %#v", got)
	}
}
