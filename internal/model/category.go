package model

// Category groups platforms by the kind of identity signal they provide.
// Categories drive the collection order: higher-reliability categories are
// processed first so that a constrained resource budget is spent on the
// most valuable sources.
//
// Design decision: We use iota-based constants ordered by collection
// priority so that sorting descriptors by Category directly yields the
// dispatch order. The String() method provides human-readable output.
type Category int

const (
	// CategoryProfessional covers professional networks (LinkedIn, AngelList).
	// These carry the strongest identity signals and run first.
	CategoryProfessional Category = iota

	// CategoryCode covers developer platforms (GitHub, GitLab).
	CategoryCode

	// CategorySocialMedia covers general social networks (Twitter, Facebook,
	// Instagram, Reddit).
	CategorySocialMedia

	// CategoryMessaging covers messaging platforms reachable by phone number
	// (Telegram, WhatsApp, Signal, Skype).
	CategoryMessaging

	// CategoryEmerging covers newer platforms with smaller coverage
	// (Bluesky, Threads, Mastodon).
	CategoryEmerging

	// CategorySpecialized covers niche platforms searched last
	// (Twitch, Flickr, VK).
	CategorySpecialized
)

// AllCategories lists every category in collection priority order.
var AllCategories = []Category{
	CategoryProfessional,
	CategoryCode,
	CategorySocialMedia,
	CategoryMessaging,
	CategoryEmerging,
	CategorySpecialized,
}

// String returns a human-readable representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryProfessional:
		return "professional"
	case CategoryCode:
		return "code"
	case CategorySocialMedia:
		return "social_media"
	case CategoryMessaging:
		return "messaging"
	case CategoryEmerging:
		return "emerging"
	case CategorySpecialized:
		return "specialized"
	default:
		return "unknown"
	}
}

// ParseCategory converts a category name (as written in the source
// inventory file) to a Category. The boolean reports whether the name
// was recognized.
func ParseCategory(name string) (Category, bool) {
	switch name {
	case "professional":
		return CategoryProfessional, true
	case "code":
		return CategoryCode, true
	case "social_media":
		return CategorySocialMedia, true
	case "messaging":
		return CategoryMessaging, true
	case "emerging":
		return CategoryEmerging, true
	case "specialized":
		return CategorySpecialized, true
	default:
		return 0, false
	}
}
