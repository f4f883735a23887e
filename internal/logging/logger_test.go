package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestWithConversationAddsContext(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	logger := WithConversation(Component("chat-test"), "c42")
	logger.Info().Msg("hello")

	line := buf.String()
	if !strings.Contains(line, `"component":"chat-test"`) {
		t.Errorf("missing component field: %s", line)
	}
	if !strings.Contains(line, `"conversation_id":"c42"`) {
		t.Errorf("missing conversation field: %s", line)
	}
}
