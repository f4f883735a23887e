package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/gigspace/gigspace/internal/models"
	"github.com/gigspace/gigspace/internal/tui/styles"
)

func (v *messagesView) View(width, height int, theme styles.Theme) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	listWidth := width / 3
	if listWidth < 24 {
		listWidth = minInt(24, width)
	}
	threadWidth := width - listWidth

	list := v.renderList(listWidth-2, height-2, theme)
	thread := v.renderThread(threadWidth-2, height-2, theme)

	listPane := theme.PaneStyle(v.focus == focusList).Width(maxInt(0, listWidth-2)).Height(maxInt(0, height-2)).Render(list)
	threadPane := theme.PaneStyle(v.focus == focusCompose).Width(maxInt(0, threadWidth-2)).Height(maxInt(0, height-2)).Render(thread)

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, threadPane)
}

func (v *messagesView) renderList(width, height int, theme styles.Theme) string {
	conversations := v.engine.Store().Conversations()
	if len(conversations) == 0 {
		return theme.MutedStyle().Render("No conversations yet")
	}
	if v.selected >= len(conversations) {
		v.selected = len(conversations) - 1
	}

	activeID := v.engine.Store().ActiveID()
	rows := make([]string, 0, len(conversations))
	now := time.Now()

	for i, conversation := range conversations {
		if len(rows) >= height {
			break
		}
		counterparty := conversation.Counterparty(v.selfID)

		name := counterparty.DisplayName
		marker := "  "
		if conversation.ID == activeID {
			marker = "* "
		}

		badge := ""
		if conversation.UnreadCount > 0 {
			badge = theme.UnreadBadgeStyle().Render(fmt.Sprintf("%d", conversation.UnreadCount))
		}

		when := theme.MutedStyle().Render(relativeTime(conversation.LastActivity(), now))
		title := marker + name
		if i == v.selected && v.focus == focusList {
			title = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Chrome.SelectedItem)).Bold(true).Render(title)
		}
		gap := width - lipgloss.Width(title) - lipgloss.Width(badge) - lipgloss.Width(when) - 1
		if gap < 1 {
			gap = 1
		}
		rows = append(rows, truncate(title+strings.Repeat(" ", gap)+badge+" "+when, width))

		preview := ""
		if conversation.LinkedGig != nil {
			preview = "re: " + conversation.LinkedGig.Title
		} else if conversation.LastMessage != nil {
			preview = previewText(conversation.LastMessage)
		}
		if preview != "" && len(rows) < height {
			rows = append(rows, truncate("  "+theme.MutedStyle().Render(preview), width))
		}
	}
	return strings.Join(rows, "\n")
}

func (v *messagesView) renderThread(width, height int, theme styles.Theme) string {
	activeID := v.engine.Store().ActiveID()
	if activeID == "" {
		return theme.MutedStyle().Render("Select a conversation and press enter")
	}

	composeLine := v.renderCompose(width, theme)
	bodyHeight := height - 2

	messages := v.engine.Store().Messages(activeID)
	lines := make([]string, 0, bodyHeight)
	for i := range messages {
		lines = append(lines, v.renderMessage(&messages[i], width, theme)...)
		lines = append(lines, "")
	}

	// Anchor to the bottom, offset by the scroll position.
	end := len(lines) - v.scroll
	if end > len(lines) {
		end = len(lines)
	}
	start := end - bodyHeight
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}
	visible := lines[start:end]
	for len(visible) < bodyHeight {
		visible = append([]string{""}, visible...)
	}

	return strings.Join(visible, "\n") + "\n" + strings.Repeat("─", maxInt(0, width)) + "\n" + composeLine
}

func (v *messagesView) renderMessage(message *models.Message, width int, theme styles.Theme) []string {
	senderColor := theme.Message.Other
	sender := "them"
	if message.SenderID == v.selfID {
		senderColor = theme.Message.Own
		sender = "you"
	}
	if message.Pending() {
		senderColor = theme.Message.Pending
	}

	label := lipgloss.NewStyle().Foreground(lipgloss.Color(senderColor)).Bold(true).Render(sender)
	meta := ""
	if v.showTimestamps && !message.CreatedAt.IsZero() {
		meta = theme.MutedStyle().Render("  " + message.CreatedAt.Local().Format("15:04"))
	}
	if message.Pending() {
		meta += theme.MutedStyle().Render("  sending...")
	}

	out := []string{truncate(label+meta, width)}
	body := message.Text
	if message.AttachmentRef != "" {
		name := message.AttachmentRef
		if idx := strings.LastIndex(name, "/"); idx >= 0 {
			name = name[idx+1:]
		}
		if body != "" {
			body += "\n"
		}
		body += "[file] " + name
	}
	for _, line := range strings.Split(wordwrap.String(body, maxInt(10, width-2)), "\n") {
		out = append(out, "  "+line)
	}
	return out
}

func (v *messagesView) renderCompose(width int, theme styles.Theme) string {
	prompt := "> "
	line := prompt + string(v.input)
	if v.focus == focusCompose {
		line += "▌"
	}
	if v.sending {
		line = prompt + theme.MutedStyle().Render("sending...")
	}
	if v.sendErr != "" {
		line += "  " + lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Message.Failed)).Render("! "+v.sendErr)
	}
	return truncate(line, width)
}

func previewText(message *models.Message) string {
	if message.Text != "" {
		return strings.ReplaceAll(message.Text, "\n", " ")
	}
	if message.AttachmentRef != "" {
		return "[file]"
	}
	return ""
}

func relativeTime(ts time.Time, now time.Time) string {
	if ts.IsZero() {
		return ""
	}
	d := now.Sub(ts)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= max {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > max-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
