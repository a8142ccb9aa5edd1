package scan

// Classify guesses the symbology of a code typed by a keyboard-wedge
// scanner, which sends digits but no type. Only 13 or 8 digits with a valid
// GS1 check digit count as EAN.
func Classify(data string) string {
	if !allDigits(data) {
		return "code128"
	}
	switch len(data) {
	case 13:
		if validCheckDigit(data) {
			return "ean13"
		}
	case 8:
		if validCheckDigit(data) {
			return "ean8"
		}
	}
	return "code128"
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// validCheckDigit weights digits 3,1,3,... from the right, skipping the
// check digit itself.
func validCheckDigit(code string) bool {
	last := len(code) - 1
	sum := 0
	weight := 3
	for i := last - 1; i >= 0; i-- {
		sum += int(code[i]-'0') * weight
		weight = 4 - weight
	}
	return (10-sum%10)%10 == int(code[last]-'0')
}
