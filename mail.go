package authflow

import (
	"strings"
	"text/template"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// MailParams is passed as data when executing the entry code mail templates.
type MailParams struct {
	SiteName   string
	Code       string
	Expiration time.Duration
}

var verificationMailBody = template.Must(template.New("verification").Parse(
	`Your verification code is {{.Code}}. It expires in {{printf "%.f" .Expiration.Minutes}} minutes.`,
))

var loginMailBody = template.Must(template.New("login").Parse(
	`Your login verification code is {{.Code}}. It expires in {{printf "%.f" .Expiration.Minutes}} minutes.`,
))

func verificationMail(params MailParams) (subject, body string, err error) {
	return renderMail("Your "+params.SiteName+" verification code", verificationMailBody, params)
}

func loginMail(params MailParams) (subject, body string, err error) {
	return renderMail("Your "+params.SiteName+" login code", loginMailBody, params)
}

func renderMail(subject string, tmpl *template.Template, params MailParams) (string, string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, params); err != nil {
		return "", "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to render mail body")
	}

	return subject, sb.String(), nil
}
