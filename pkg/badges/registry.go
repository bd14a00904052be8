package badges

// Badge describes an achievement a user can unlock.
type Badge struct {
	Key         string
	Name        string
	Emoji       string
	Description string
}

// catalogue holds every known badge, keyed by the stable key stored with
// unlock records. Keys never change once released; display fields may.
var catalogue = map[string]Badge{
	"first_log": {
		Key:         "first_log",
		Name:        "First Step",
		Emoji:       "👣",
		Description: "Logged your first weight entry",
	},
	"week_streak": {
		Key:         "week_streak",
		Name:        "Week Warrior",
		Emoji:       "🔥",
		Description: "Logged your weight seven days in a row",
	},
	"month_streak": {
		Key:         "month_streak",
		Name:        "Habit Builder",
		Emoji:       "🏆",
		Description: "Logged your weight thirty days in a row",
	},
	"first_recipe": {
		Key:         "first_recipe",
		Name:        "Home Chef",
		Emoji:       "🍳",
		Description: "Cooked your first recipe",
	},
	"premium_member": {
		Key:         "premium_member",
		Name:        "Premium Member",
		Emoji:       "⭐",
		Description: "Upgraded to SmartDalle Premium",
	},
}

// Resolve looks up a badge by key. Unknown keys return ok=false; callers are
// expected to skip them silently so stale keys from old records never break
// a notification run.
func Resolve(key string) (Badge, bool) {
	b, ok := catalogue[key]
	return b, ok
}

// All returns the full badge catalogue.
func All() []Badge {
	out := make([]Badge, 0, len(catalogue))
	for _, b := range catalogue {
		out = append(out, b)
	}
	return out
}
