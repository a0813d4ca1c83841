package config

// DefaultSystemInstruction frames every inference call.
const DefaultSystemInstruction = "You are NutriBot, a careful nutrition and food safety assistant. " +
	"Give practical, personalized advice grounded in the context you are given. " +
	"You are not a doctor: recommend professional care for serious or persistent symptoms."

// DefaultMessages are the user-facing strings used when the config file does
// not override them. "@botname" is replaced with the bot's username.
var DefaultMessages = MessagesConfig{
	Welcome: "👋 Hi! I'm @botname, your nutrition assistant. Tell me about your health goals, " +
		"ask about a product's ingredients, or send a photo of a package with /analyze.",
	Help: "Commands:\n" +
		"/profile - show what I know about you\n" +
		"/set age 34 | conditions diabetes,celiac | allergies nut_allergy | diet vegan | baby 7 - update your profile\n" +
		"/analyze - reply to or caption a product photo to check it against your diets\n" +
		"/insights - what people with a similar profile report\n" +
		"/summary - summarize our conversation\n" +
		"/reset - forget our conversation\n" +
		"Anything else is answered as a question.",
	Unauthorized:      "🚫 This command is for the administrator only.",
	GeneralError:      "❌ Something went wrong. Please try again later.",
	ProvideMessage:    "ℹ️ Please send a message with your question.",
	ResetConfirm:      "🔄 Our conversation history has been cleared. Your profile is kept.",
	ProfileUpdated:    "✅ Profile updated.",
	ProfileUsage:      "Usage: /set age <years> | conditions <a,b> | allergies <a,b> | diet <a,b> | baby <months>",
	AnalyzeProgress:   "🔎 Reading the package and checking the ingredients...",
	AnalyzeNeedsPhoto: "📷 Send a product photo with /analyze as the caption, or reply /analyze to a photo.",
	AnalyzeFailed:     "😕 I couldn't identify this product. Try a clearer photo of the brand name.",
	InsightsHeader:    "👥 Community insights for your segment:\n\n",
	StatsFmt:          "Profiles: %d\nKnowledge passages: %d\nSegments:\n%s",
	AskAge:            "To give you better advice, could you tell me your age?",
	AskConditions:     "Do you have any medical conditions I should know about (e.g. diabetes, celiac, hypertension)?",
	AskDiet:           "Do you follow a particular diet (e.g. vegan, vegetarian, lactose-free)?",
}
