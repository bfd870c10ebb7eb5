package domain

// Mood selects a cat face for log lines and error bodies.
type Mood int

const (
	MoodHappy Mood = iota
	MoodSleepy
	MoodConfused
	MoodSad
	MoodGoodbye
)

var portCats = []string{
	"(=^･ω･^=)", "(=^‥^=)", "(=｀ω´=)", "(=･ᴥ･=)",
	"(=˘ω˘=)", "(=TωT=)", "(=ΦωΦ=)", "(=ﾟωﾟ=)",
}

var moodCats = map[Mood]string{
	MoodHappy:    "(=^･ω･^=)",
	MoodSleepy:   "(=˘ω˘=)",
	MoodConfused: "(=･ω･=)?",
	MoodSad:      "(=；ω；=)",
	MoodGoodbye:  "(=^･ω･^=)ﾉ",
}

// CatForPort gives every port its own cat.
func CatForPort(port int) string {
	if port < 0 {
		port = -port
	}
	return portCats[port%len(portCats)]
}

func Cat(mood Mood) string {
	if cat, ok := moodCats[mood]; ok {
		return cat
	}
	return moodCats[MoodHappy]
}
