package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/pvictorino/supportchat/internal/chat"
)

// renderThread formats the ordered thread for the text view.
func renderThread(msgs []chat.Message, loading bool) string {
	if loading {
		return "[gray]loading conversation...[-]"
	}
	var b strings.Builder
	for _, m := range msgs {
		b.WriteString(renderMessage(m))
		b.WriteByte('\n')
	}
	return b.String()
}

func renderMessage(m chat.Message) string {
	ts := time.UnixMilli(m.CreatedAt).Format("15:04")
	who := "support"
	color := "[blue]"
	switch m.Sender {
	case chat.RoleUser:
		who = "you"
		color = "[green]"
	case chat.RoleSystem:
		who = "system"
		color = "[gray]"
	}

	suffix := ""
	switch m.Status {
	case chat.StatusSending:
		suffix = " [gray](sending...)[-]"
	case chat.StatusError:
		suffix = " [red](failed)[-]"
	}

	return fmt.Sprintf("%s%s %s:[-] %s%s", color, ts, who, escapeTags(m.Content), suffix)
}

func renderStatus(online bool, flash string) string {
	state := "[red]offline[-]"
	if online {
		state = "[green]online[-]"
	}
	if flash != "" {
		return state + "  [yellow]" + flash + "[-]"
	}
	return state
}

// escapeTags escapes bracketed text so message content can't inject color tags.
func escapeTags(s string) string {
	return strings.ReplaceAll(s, "[", "[[")
}
