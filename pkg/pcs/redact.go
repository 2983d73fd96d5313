package pcs

import "regexp"

const redacted = "<REDACTED>"

var redactPatterns = []*regexp.Regexp{
	// --password secret, --password=secret
	regexp.MustCompile(`(--password[ =])[^\s']+`),
	// -p secret
	regexp.MustCompile(`(\s-p )[^\s']+`),
	// 'password=sec ret'
	regexp.MustCompile(`('[^']*\bpassw(?:or)?d=)[^']*`),
	// password=secret, passwd=secret
	regexp.MustCompile(`(\bpassw(?:or)?d=)[^\s'"]+`),
	// name="password" value="secret"
	regexp.MustCompile(`(name="passw(?:or)?d" value=")[^"]*`),
	// "name": "password", "value": "secret"
	regexp.MustCompile(`("passw(?:or)?d", "value": ")[^"]*`),
}

// Redact replaces password-like values in command lines, command output
// and CIB fragments
func Redact(in string) string {
	out := in
	for _, re := range redactPatterns {
		out = re.ReplaceAllString(out, "${1}"+redacted)
	}
	return out
}
