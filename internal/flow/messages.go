package flow

import "github.com/af-corp/shetkari-gateway/internal/types"

// FetchErrorMessage is the banner shown when a load fails.
func FetchErrorMessage(lang types.Language) string {
	switch lang {
	case types.LangMarathi:
		return "माहिती मिळवण्यात त्रुटी आली. कृपया पुन्हा प्रयत्न करा."
	case types.LangHindi:
		return "जानकारी प्राप्त करने में त्रुटि। कृपया पुनः प्रयास करें।"
	default:
		return "Error fetching information. Please try again."
	}
}
