package ui

import (
	"strings"
	"time"

	"github.com/shhac/shiptea/internal/agent"
	"github.com/shhac/shiptea/internal/i18n"
)

// checkpointInterval controls how often streamed text is re-rendered as markdown.
const checkpointInterval = 300 * time.Millisecond

// streamBuffer accumulates streamed agent text. It renders markdown at
// checkpoints and shows the raw tail received since the last one.
type streamBuffer struct {
	content     string
	rendered    string
	renderedLen int
	renderedAt  time.Time
}

func (sb *streamBuffer) append(chunk string, render func(string) string) {
	sb.content += chunk
	if time.Since(sb.renderedAt) >= checkpointInterval {
		sb.rendered = render(sb.content)
		sb.renderedLen = len(sb.content)
		sb.renderedAt = time.Now()
	}
}

func (sb *streamBuffer) reset() {
	*sb = streamBuffer{}
}

func (sb *streamBuffer) view(width int) string {
	if sb.rendered == "" {
		return wordWrap(sb.content, width)
	}
	if len(sb.content) > sb.renderedLen {
		return sb.rendered + "\n" + wordWrap(sb.content[sb.renderedLen:], width)
	}
	return sb.rendered
}

// transcript holds the chat history shown in the panel viewport.
type transcript struct {
	messages  []agent.ChatMessage
	isWaiting bool
	chatError string
	stream    streamBuffer

	cache      string
	cacheWidth int
}

func (t *transcript) startTurn(msg string) {
	t.messages = append(t.messages, agent.ChatMessage{Role: "user", Content: msg})
	t.isWaiting = true
	t.chatError = ""
	t.stream.reset()
	t.cache = ""
}

func (t *transcript) appendChunk(chunk string, md *MarkdownRenderer, width int) {
	t.stream.append(chunk, func(s string) string { return md.Render(s, width) })
}

func (t *transcript) finishTurn(content string) {
	t.messages = append(t.messages, agent.ChatMessage{Role: "assistant", Content: content})
	t.isWaiting = false
	t.chatError = ""
	t.stream.reset()
	t.cache = ""
}

func (t *transcript) fail(err string) {
	t.chatError = err
	t.isWaiting = false
	t.stream.reset()
	t.cache = ""
}

func (t *transcript) clear() {
	*t = transcript{}
}

func (t *transcript) render(width int, md *MarkdownRenderer, labels i18n.Labeler) string {
	if len(t.messages) == 0 && !t.isWaiting && t.chatError == "" {
		return renderEmptyState(labels.T(i18n.ChatEmpty), labels.T(i18n.ChatEmptyHint))
	}

	streaming := t.isWaiting && t.stream.content != ""
	if !streaming && t.cache != "" && t.cacheWidth == width {
		return t.cache
	}

	var b strings.Builder
	for i, msg := range t.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if msg.Role == "user" {
			b.WriteString(chatUserStyle.Render("You:"))
			b.WriteString("\n")
			b.WriteString(wordWrap(msg.Content, width))
			continue
		}
		b.WriteString(chatAgentStyle.Render("Agent:"))
		b.WriteString("\n")
		b.WriteString(md.Render(msg.Content, width))
	}

	if t.isWaiting {
		if len(t.messages) > 0 {
			b.WriteString("\n\n")
		}
		if streaming {
			b.WriteString(chatAgentStyle.Render("Agent:"))
			b.WriteString("\n")
			b.WriteString(t.stream.view(width))
		} else {
			b.WriteString(chatThinkingStyle.Render(labels.T(i18n.ChatThinking)))
		}
	}

	if t.chatError != "" {
		if len(t.messages) > 0 || t.isWaiting {
			b.WriteString("\n\n")
		}
		b.WriteString(chatErrorStyle.Render(formatUserError(t.chatError)))
	}

	out := b.String()
	if !streaming {
		t.cache = out
		t.cacheWidth = width
	}
	return out
}
