package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// pdfLabelTokens are labels that PDF text extraction tends to glue onto the
// preceding value. NormalizePDF moves each onto its own line.
var pdfLabelTokens = []string{
	"Broker:",
	"Insured:",
	"Address:",
	"Building Type:",
	"Construction:",
	"Year Built:",
	"Area:",
	"Stories:",
	"Occupancy:",
	"Sprinklers:",
	"Alarm System:",
	"Coverage:",
	"Risk:",
	"Financials:",
}

var (
	lineBreakRe   = regexp.MustCompile(`\r\n?`)
	hspaceRe      = regexp.MustCompile(`[ \t\f\v]+`)
	camelRe       = regexp.MustCompile(`([a-z])([A-Z])`)
	digitLetterRe = regexp.MustCompile(`(\d)([A-Za-z])`)
	letterDigitRe = regexp.MustCompile(`([A-Za-z])(\d)`)
	labelBreakRe  = func() *regexp.Regexp {
		quoted := make([]string, len(pdfLabelTokens))
		for i, l := range pdfLabelTokens {
			quoted[i] = regexp.QuoteMeta(l)
		}
		return regexp.MustCompile(`(\S)[ \t]*(` + strings.Join(quoted, "|") + `)`)
	}()
)

// NormalizePDF repairs text produced by PDF text extraction. The result is
// stable: NormalizePDF(NormalizePDF(s)) == NormalizePDF(s).
//
// Whitespace is collapsed and letter/digit and camel-case boundaries are
// split before labels are moved onto their own lines, so that a label only
// revealed by a split is still broken out in the same pass.
func NormalizePDF(text string) string {
	text = norm.NFC.String(text)
	text = lineBreakRe.ReplaceAllString(text, "\n")
	text = hspaceRe.ReplaceAllString(text, " ")
	text = camelRe.ReplaceAllString(text, "$1 $2")
	text = digitLetterRe.ReplaceAllString(text, "$1 $2")
	text = letterDigitRe.ReplaceAllString(text, "$1 $2")
	// Adjacent labels share a boundary character, so one pass can miss the
	// second of "A:B:".
	for {
		next := labelBreakRe.ReplaceAllString(text, "$1\n$2")
		if next == text {
			break
		}
		text = next
	}
	return strings.TrimSpace(text)
}

// NormalizeEmail prepares a decoded email body. Email text is already line
// structured, so only line breaks and unicode composition are normalized.
func NormalizeEmail(text string) string {
	text = norm.NFC.String(text)
	text = lineBreakRe.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}
