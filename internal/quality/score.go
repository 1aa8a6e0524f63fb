// Package quality rates extracted text so backends can be compared.
package quality

import "unicode"

// Score rewards both the amount and the density of alphanumeric content:
// alnum + 1000*alnum/printable, with integer division. Text with no printable
// characters scores zero.
func Score(text string) int {
	var printable, alnum int
	for _, r := range text {
		if !unicode.IsPrint(r) {
			continue
		}
		printable++
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			alnum++
		}
	}
	if printable == 0 {
		return 0
	}
	return alnum + 1000*alnum/printable
}
