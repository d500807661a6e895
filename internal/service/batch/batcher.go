// Package batch coalesces reserved occurrences into one outbound message
// per recipient and channel, so a recipient with several doses due on the
// same minute gets a single text instead of a burst.
package batch

import (
	"fmt"
	"html"
	"strings"

	"github.com/petfolio/reminder-dispatch/internal/domain"
)

// OutboundBatch is one rendered message covering every occurrence a
// recipient has due on a channel this tick. Keys lists the dispatch log
// entries the batch settles; all of them move to Sent or stay Reserved
// together.
type OutboundBatch struct {
	RecipientID string
	Channel     domain.Channel
	Keys        []string
	Message     domain.OutboundMessage
}

type groupKey struct {
	recipientID string
	channel     domain.Channel
}

// Batcher accumulates occurrences and renders them grouped by recipient and
// channel. Not safe for concurrent use; each tick builds its own.
type Batcher struct {
	order  []groupKey
	groups map[groupKey][]*domain.Occurrence
}

func NewBatcher() *Batcher {
	return &Batcher{groups: make(map[groupKey][]*domain.Occurrence)}
}

func (b *Batcher) Add(occ *domain.Occurrence) {
	k := groupKey{recipientID: occ.RecipientID, channel: occ.Channel}
	if _, seen := b.groups[k]; !seen {
		b.order = append(b.order, k)
	}
	b.groups[k] = append(b.groups[k], occ)
}

// Flush renders one batch per group in first-seen order. The first
// occurrence key doubles as the idempotency key: group membership is
// deterministic for a given tick instant, so a retried tick renders the
// same key.
func (b *Batcher) Flush() []*OutboundBatch {
	batches := make([]*OutboundBatch, 0, len(b.order))
	for _, k := range b.order {
		occs := b.groups[k]

		keys := make([]string, 0, len(occs))
		fragments := make([]string, 0, len(occs))
		for _, occ := range occs {
			keys = append(keys, occ.Key.String())
			fragments = append(fragments, occ.Fragment)
		}

		msg := domain.OutboundMessage{
			Address:        occs[0].Address,
			IdempotencyKey: keys[0],
		}
		switch k.channel {
		case domain.ChannelEmail:
			msg.Subject = occs[0].Subject
			msg.Body = strings.Join(fragments, "\n")
			msg.HTMLBody = renderHTMLList(fragments)
		default:
			msg.Body = strings.Join(fragments, "\n")
		}

		batches = append(batches, &OutboundBatch{
			RecipientID: k.recipientID,
			Channel:     k.channel,
			Keys:        keys,
			Message:     msg,
		})
	}
	return batches
}

func renderHTMLList(fragments []string) string {
	var sb strings.Builder
	sb.WriteString("<ul>")
	for _, f := range fragments {
		fmt.Fprintf(&sb, "<li>%s</li>", html.EscapeString(f))
	}
	sb.WriteString("</ul>")
	return sb.String()
}
