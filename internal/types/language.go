package types

type Language string

const (
	LangMarathi Language = "mr"
	LangHindi   Language = "hi"
	LangEnglish Language = "en"
)

// Name returns the English name of the language used inside prompts.
// Unrecognized codes fall back to English.
func (l Language) Name() string {
	switch l {
	case LangMarathi:
		return "Marathi"
	case LangHindi:
		return "Hindi"
	default:
		return "English"
	}
}

func ParseLanguage(s string) (Language, bool) {
	switch Language(s) {
	case LangMarathi, LangHindi, LangEnglish:
		return Language(s), true
	default:
		return "", false
	}
}

type SoilColor string

const (
	SoilBlack    SoilColor = "black"
	SoilRed      SoilColor = "red"
	SoilAlluvial SoilColor = "alluvial"
	SoilLaterite SoilColor = "laterite"
	SoilSandy    SoilColor = "sandy"
)

// SoilColors lists the soil colours offered to farmers, in display order.
var SoilColors = []SoilColor{SoilBlack, SoilRed, SoilAlluvial, SoilLaterite, SoilSandy}

type Season string

const (
	SeasonKharif Season = "kharif"
	SeasonRabi   Season = "rabi"
	SeasonZaid   Season = "zaid"
)

// Seasons lists the cropping seasons offered to farmers, in display order.
var Seasons = []Season{SeasonKharif, SeasonRabi, SeasonZaid}

// AspectRatio is an image aspect ratio accepted by the image model.
type AspectRatio string

const (
	Aspect1x1  AspectRatio = "1:1"
	Aspect3x4  AspectRatio = "3:4"
	Aspect4x3  AspectRatio = "4:3"
	Aspect9x16 AspectRatio = "9:16"
	Aspect16x9 AspectRatio = "16:9"

	DefaultAspectRatio = Aspect16x9
)

func ParseAspectRatio(s string) (AspectRatio, bool) {
	switch AspectRatio(s) {
	case Aspect1x1, Aspect3x4, Aspect4x3, Aspect9x16, Aspect16x9:
		return AspectRatio(s), true
	default:
		return "", false
	}
}
