package core

const (
	Morning Greeting = iota
	Day
	Evening
	Night
)

// Greeting is the time-of-day bucket used to greet the user.
type Greeting int

// GreetingForHour maps an hour in [0, 23] to its greeting bucket.
func GreetingForHour(hour int) Greeting {
	switch {
	case hour < 12:
		return Morning
	case hour < 17:
		return Day
	case hour < 22:
		return Evening
	default:
		return Night
	}
}

func (g Greeting) String() string {
	switch g {
	case Morning:
		return "Доброе утро"
	case Day:
		return "Добрый день"
	case Evening:
		return "Добрый вечер"
	default:
		return "Доброй ночи"
	}
}
