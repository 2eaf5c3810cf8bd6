package mail

import (
	"fmt"
	"html/template"
	"strings"
)

// Body is a rendered email in both forms.
type Body struct {
	HTML string
	Text string
}

var inviteHTML = template.Must(template.New("invite").Parse(`<!doctype html>
<html>
  <body style="font-family: sans-serif; color: #1f2937;">
    <h2>Hi {{.Name}},</h2>
    <p>{{.Inviter}} has invited you to join <strong>{{.GroupName}}</strong> on budbudbud,
    a little app for picking days and places to meet up.</p>
    {{if .MemberSummary}}<p>You'd be joining {{.MemberSummary}}.</p>{{end}}
    <p><a href="{{.URL}}" style="background: #4f46e5; color: #fff; padding: 10px 18px; border-radius: 6px; text-decoration: none;">Join {{.GroupName}}</a></p>
    <p style="color: #6b7280; font-size: 12px;">This link is valid for 24 hours and can be used once.
    If you weren't expecting this invitation you can ignore this email.</p>
  </body>
</html>
`))

// renderInvite produces the HTML body and a plain-text fallback.
func renderInvite(inv Invite) (Body, error) {
	var sb strings.Builder
	if err := inviteHTML.Execute(&sb, inv); err != nil {
		return Body{}, fmt.Errorf("failed to render invite template: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\n", inv.Name)
	fmt.Fprintf(&text, "%s has invited you to join %s on budbudbud.\n", inv.Inviter, inv.GroupName)
	if inv.MemberSummary != "" {
		fmt.Fprintf(&text, "You'd be joining %s.\n", inv.MemberSummary)
	}
	fmt.Fprintf(&text, "\nJoin here: %s\n\n", inv.URL)
	text.WriteString("This link is valid for 24 hours and can be used once.\n")

	return Body{HTML: sb.String(), Text: text.String()}, nil
}
