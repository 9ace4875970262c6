package mailer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// Email kinds. Each kind selects a template pair and a default subject;
// kinds missing from the subject map fall back to the generic subject.
// The set is closed: Render rejects a kind with no template pair rather
// than guessing at a body, so adding a kind means adding its templates
// here.
const (
	KindRegisterConfirmation       = "register_confirmation"
	KindRepeatRegisterConfirmation = "repeat_register_confirmation"
	KindResetPasswordConfirmation  = "reset_password_confirmation"
	KindDeadlineNotification       = "deadline_notification"
)

// TemplateData carries the values interpolated into email bodies. Only
// the fields relevant to the kind being rendered need to be set.
type TemplateData struct {
	Username  string
	Link      string
	ExpiresAt string
	TaskTitle string
	Deadline  string
	// Relation is the clause describing the recipient's relationship to
	// the task, either "you created" or "you are executing". Deadline
	// notifications only.
	Relation string
}

// defaultSubject maps email kinds to subject lines. Kinds absent from
// the map fall back to genericSubject.
var defaultSubject = map[string]string{
	KindRegisterConfirmation:       "Confirm your registration",
	KindRepeatRegisterConfirmation: "Confirm your registration",
	KindResetPasswordConfirmation:  "Reset your password",
}

const genericSubject = "TaskFlow notification"

const textTemplates = `
{{define "register_confirmation"}}Hi {{.Username}},

Thanks for signing up. Confirm your registration by opening the link
below. The link is valid until {{.ExpiresAt}} and can be used once.

{{.Link}}

If you did not register, ignore this message.
{{end}}

{{define "repeat_register_confirmation"}}Hi {{.Username}},

Here is a fresh confirmation link, as requested. It is valid until
{{.ExpiresAt}} and can be used once; any earlier link no longer works.

{{.Link}}
{{end}}

{{define "reset_password_confirmation"}}Hi {{.Username}},

Someone asked to reset the password for this account. If that was you,
open the link below to choose a new password:

{{.Link}}

If it was not you, ignore this message and your password stays as it is.
{{end}}

{{define "deadline_notification"}}Hi {{.Username}},

The task "{{.TaskTitle}}" {{.Relation}} is due at {{.Deadline}}.
{{end}}
`

const htmlTemplates = `
{{define "register_confirmation"}}<p>Hi {{.Username}},</p>
<p>Thanks for signing up. Confirm your registration by opening the link
below. The link is valid until {{.ExpiresAt}} and can be used once.</p>
<p><a href="{{.Link}}">Confirm registration</a></p>
<p>If you did not register, ignore this message.</p>
{{end}}

{{define "repeat_register_confirmation"}}<p>Hi {{.Username}},</p>
<p>Here is a fresh confirmation link, as requested. It is valid until
{{.ExpiresAt}} and can be used once; any earlier link no longer works.</p>
<p><a href="{{.Link}}">Confirm registration</a></p>
{{end}}

{{define "reset_password_confirmation"}}<p>Hi {{.Username}},</p>
<p>Someone asked to reset the password for this account. If that was
you, open the link below to choose a new password:</p>
<p><a href="{{.Link}}">Reset password</a></p>
<p>If it was not you, ignore this message and your password stays as it
is.</p>
{{end}}

{{define "deadline_notification"}}<p>Hi {{.Username}},</p>
<p>The task &quot;{{.TaskTitle}}&quot; {{.Relation}} is due at
{{.Deadline}}.</p>
{{end}}
`

// Renderer turns an email kind plus template data into a rendered
// message. Safe for concurrent use.
type Renderer struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

// NewRenderer creates a renderer with the built-in template set.
func NewRenderer() *Renderer {
	return &Renderer{
		text: texttemplate.Must(texttemplate.New("text").Parse(textTemplates)),
		html: htmltemplate.Must(htmltemplate.New("html").Parse(htmlTemplates)),
	}
}

// Subject returns the default subject line for kind.
func (r *Renderer) Subject(kind string) string {
	if s, ok := defaultSubject[kind]; ok {
		return s
	}
	return genericSubject
}

// Render produces the message for kind addressed to to. The subject is
// the kind's default; callers may overwrite it afterwards.
func (r *Renderer) Render(kind, to string, data TemplateData) (Message, error) {
	text := r.text.Lookup(kind)
	html := r.html.Lookup(kind)
	if text == nil || html == nil {
		return Message{}, fmt.Errorf("unknown email kind %q", kind)
	}

	var textBuf bytes.Buffer
	if err := text.Execute(&textBuf, data); err != nil {
		return Message{}, fmt.Errorf("failed to render text body for %q: %w", kind, err)
	}

	var htmlBuf bytes.Buffer
	if err := html.Execute(&htmlBuf, data); err != nil {
		return Message{}, fmt.Errorf("failed to render html body for %q: %w", kind, err)
	}

	return Message{
		To:      to,
		Subject: r.Subject(kind),
		Text:    textBuf.String(),
		HTML:    htmlBuf.String(),
	}, nil
}
