package tracker

import "strings"

// sensitiveFieldNames are matched as case-insensitive substrings of form field names.
var sensitiveFieldNames = []string{
	"password",
	"confirm_password",
	"credit_card",
	"creditcard",
	"ccnumber",
	"cvv",
	"ssn",
	"social_security",
}

func isSensitiveField(name string) bool {
	name = strings.ToLower(name)
	for _, s := range sensitiveFieldNames {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}
