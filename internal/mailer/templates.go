package mailer

import (
	"fmt"
	"net/url"
	"strings"
)

// Link formats are part of the contract with the HTTP layer: the paths below
// must match the registered routes exactly.
const (
	validatePath  = "/auth/validate"
	resetFormPath = "/auth/password-reset-form"
)

// ValidationLink builds the absolute email-verification URL for a token.
func ValidationLink(siteRoot, token string) string {
	return strings.TrimRight(siteRoot, "/") + validatePath + "?seq=" + url.QueryEscape(token)
}

// ResetLink builds the absolute password-reset-form URL for a request id.
func ResetLink(siteRoot, requestID string) string {
	return strings.TrimRight(siteRoot, "/") + resetFormPath + "?requestId=" + url.QueryEscape(requestID)
}

// ValidationMail renders the verification mail for a freshly registered user.
func ValidationMail(siteRoot, token string) (subject, html string) {
	link := ValidationLink(siteRoot, token)
	subject = "Confirm your registration"
	html = fmt.Sprintf(
		`<p>Welcome! Please confirm your email address by following this link:</p>
<p><a href="%s">%s</a></p>
<p>The link expires in two hours. If you did not register, ignore this mail.</p>`,
		link, link,
	)
	return subject, html
}

// ResetMail renders the password-reset mail.
func ResetMail(siteRoot, requestID string) (subject, html string) {
	link := ResetLink(siteRoot, requestID)
	subject = "Password reset request"
	html = fmt.Sprintf(
		`<p>A password reset was requested for your account. Follow this link to choose a new password:</p>
<p><a href="%s">%s</a></p>
<p>The link expires in two hours. If you did not request this, ignore this mail.</p>`,
		link, link,
	)
	return subject, html
}
