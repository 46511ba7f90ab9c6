package model

import (
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
)

// MessageTemplates holds the outbound message bodies of a workspace. Each
// template sees a fixed, enumerated set of fields; there is no dynamic
// property traversal.
type MessageTemplates struct {
	Broadcast string
	Confirm   string
}

// DefaultTemplates returns the built-in message bodies used when a workspace
// is created without explicit templates.
func DefaultTemplates() MessageTemplates {
	return MessageTemplates{
		Broadcast: "Hi {{.Name}}, the following appointment slots are available:\n{{.Slots}}\nReply with the number of your preferred slot.",
		Confirm:   "Thank you {{.Name}}, your appointment is confirmed for {{.Slot}}.",
	}
}

// BroadcastParams are the fields available to a broadcast template.
type BroadcastParams struct {
	Name  string
	Slots string
}

// ConfirmParams are the fields available to a confirmation template.
type ConfirmParams struct {
	Name string
	Slot string
}

func render(name, text string, data any) (string, error) {
	tpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", goerr.Wrap(err, "failed to parse message template", goerr.V("template", name))
	}
	var b strings.Builder
	if err := tpl.Execute(&b, data); err != nil {
		return "", goerr.Wrap(err, "failed to render message template", goerr.V("template", name))
	}
	return b.String(), nil
}

// RenderBroadcast renders the broadcast body for one contact.
func (t MessageTemplates) RenderBroadcast(p BroadcastParams) (string, error) {
	return render("broadcast", t.Broadcast, p)
}

// RenderConfirm renders the booking confirmation body.
func (t MessageTemplates) RenderConfirm(p ConfirmParams) (string, error) {
	return render("confirm", t.Confirm, p)
}
