package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/go-go-golems/shopchat/pkg/chatwire"
	"github.com/go-go-golems/shopchat/pkg/conversation"
	"github.com/go-go-golems/shopchat/pkg/pushchannel"
	"github.com/go-go-golems/shopchat/pkg/session"
)

// quickAction pairs a menu label with the prompt it submits.
type quickAction struct {
	Label  string
	Prompt string
}

var quickActions = []quickAction{
	{Label: "Browse popular items", Prompt: "Show me popular products"},
	{Label: "Sports & Fitness", Prompt: "I need sports clothing"},
	{Label: "Today's deals", Prompt: "What deals do you have?"},
	{Label: "Search by image", Prompt: "How do I search with an image?"},
}

func renderWelcome(width int) string {
	var b strings.Builder
	b.WriteString(welcomeTitleStyle.Render("Welcome to AI Shopping Assistant"))
	b.WriteString("\n\n")
	b.WriteString(welcomeBodyStyle.Render(wordWrap(
		"I'm CommerceAI, your personal shopping assistant. I can help you find products, "+
			"compare prices, and discover items from images.", width)))
	b.WriteString("\n\n")
	for i, qa := range quickActions {
		b.WriteString(quickActionStyle.Render(fmt.Sprintf("  [%d] %s", i+1, qa.Label)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(tipStyle.Render("Tip: attach an image with /image <path> to find similar products. Press 1-4 for quick actions."))
	return b.String()
}

func renderMessage(m conversation.Message, width int) string {
	bubble := assistantBubbleStyle
	sender := "CommerceAI"
	if m.Sender == conversation.SenderUser {
		bubble = userBubbleStyle
		sender = "You"
	}
	if m.Kind == chatwire.KindErrorNotice {
		bubble = errorBubbleStyle
	}

	header := senderStyle.Render(sender) + " " + timestampStyle.Render(m.CreatedAt.Format("15:04"))

	body := m.Text
	if m.ImageBase64 != "" {
		body += "\n" + attachmentStyle.Render("[image attached]")
	}

	parts := []string{header, bubble.Width(min(width-2, 72)).Render(wordWrap(body, min(width-6, 68)))}
	for _, p := range m.Products {
		parts = append(parts, renderProductCard(p, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderProductCard(p chatwire.Product, width int) string {
	brand := p.Brand
	if brand == "" {
		brand = "Generic"
	}

	stock := inStockStyle.Render("In Stock")
	if !p.InStock {
		stock = outOfStockStyle.Render("Out of Stock")
	}

	var b strings.Builder
	b.WriteString(productNameStyle.Render(p.Name))
	if p.SimilarityScore != nil {
		pct := int(math.Round(*p.SimilarityScore * 100))
		b.WriteString(" " + matchStyle.Render(fmt.Sprintf("%d%% match", pct)))
	}
	b.WriteString("\n")
	b.WriteString(productBrandStyle.Render(brand))
	if p.Category != "" {
		b.WriteString(productBrandStyle.Render(" · " + p.Category))
	}
	if p.Color != "" {
		b.WriteString(productBrandStyle.Render(" · " + p.Color))
	}
	b.WriteString("\n")
	if p.Description != "" {
		b.WriteString(wordWrap(p.Description, min(width-8, 64)))
		b.WriteString("\n")
	}
	b.WriteString(productPriceStyle.Render(fmt.Sprintf("$%.2f", p.Price)))
	b.WriteString("  ")
	b.WriteString(stock)

	return productCardStyle.Width(min(width-4, 70)).Render(b.String())
}

func renderHeader(view conversation.View, width int) string {
	title := headerStyle.Render("AI Shopping Assistant")

	dot := dotClosedStyle.Render("●")
	connLabel := "Connecting..."
	if view.Connection == pushchannel.StateOpen {
		dot = dotOpenStyle.Render("●")
		connLabel = "Online"
	}

	sessionLabel := "Initializing"
	switch view.Session {
	case session.StatusActive:
		sessionLabel = "Active"
	case session.StatusFailed:
		sessionLabel = "Unavailable"
	}

	status := statusStyle.Render(fmt.Sprintf("%s · session: %s", connLabel, sessionLabel))
	line := title + " " + dot + " " + status
	if width > 0 {
		line = lipgloss.NewStyle().MaxWidth(width).Render(line)
	}
	return line
}

// wordWrap is a simple greedy wrapper; lipgloss handles the final clipping.
func wordWrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			out = append(out, line)
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			if len(cur)+1+len(w) > width {
				out = append(out, cur)
				cur = w
				continue
			}
			cur += " " + w
		}
		out = append(out, cur)
	}
	return strings.Join(out, "\n")
}
