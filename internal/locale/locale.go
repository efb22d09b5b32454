package locale

import "fmt"

// Language identifies one of the supported response languages. The wire
// protocol carries it as a 16-bit language code, bound 1:1 to a server port.
type Language uint16

// Supported language codes
const (
	English Language = 0x01
	Maori   Language = 0x02
	German  Language = 0x03
)

// pack bundles everything needed to render text for one language.
// The German date template reorders its arguments, so both templates use
// indexed verbs and are always applied as (monthName, day, year) and
// (hour, minute) respectively.
type pack struct {
	months       [12]string
	dateTemplate string
	timeTemplate string
}

// Static tables, initialized once and never mutated.
var packs = map[Language]pack{
	English: {
		months: [12]string{
			"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December",
		},
		dateTemplate: "Today's date is %[1]s %[2]d, %[3]d",
		timeTemplate: "The current time is %02d:%02d",
	},
	Maori: {
		months: [12]string{
			"Kohitātea", "Hui-tanguru", "Poutū-te-rangi", "Paenga-whāwhā", "Haratua", "Pipiri",
			"Hōngongoi", "Here-turi-kōkā", "Mahuru", "Whiringa-ā-nuku", "Whiringa-ā-rangi", "Hakihea",
		},
		dateTemplate: "Ko te ra o tenei ra ko %[1]s %[2]d, %[3]d",
		timeTemplate: "Ko te wa o tenei wa %02d:%02d",
	},
	German: {
		months: [12]string{
			"Januar", "Februar", "März", "April", "Mai", "Juni",
			"Juli", "August", "September", "Oktober", "November", "Dezember",
		},
		dateTemplate: "Heute ist der %[2]d. %[1]s %[3]d",
		timeTemplate: "Die Uhrzeit ist %02d:%02d",
	},
}

// Valid reports whether l is one of the supported language codes.
func (l Language) Valid() bool {
	_, ok := packs[l]
	return ok
}

// String returns a human-readable name for the language.
func (l Language) String() string {
	switch l {
	case English:
		return "English"
	case Maori:
		return "Māori"
	case German:
		return "German"
	default:
		return fmt.Sprintf("Unknown(0x%02x)", uint16(l))
	}
}

// lookup returns the pack for l. The dispatcher only ever queries languages
// it bound ports for, so a miss is a programming error, not an input error.
func lookup(l Language) pack {
	p, ok := packs[l]
	if !ok {
		panic(fmt.Sprintf("locale: no tables for language code 0x%02x", uint16(l)))
	}
	return p
}

// MonthName returns the localized name of month (1..12).
func MonthName(l Language, month int) string {
	if month < 1 || month > 12 {
		panic(fmt.Sprintf("locale: month %d out of range", month))
	}
	return lookup(l).months[month-1]
}

// DateText renders the localized "today's date" sentence.
func DateText(l Language, month, day, year int) string {
	return fmt.Sprintf(lookup(l).dateTemplate, MonthName(l, month), day, year)
}

// TimeText renders the localized "current time" sentence. Hours and minutes
// are zero-padded to two digits.
func TimeText(l Language, hour, minute int) string {
	return fmt.Sprintf(lookup(l).timeTemplate, hour, minute)
}
