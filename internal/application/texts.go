package application

// User-facing message templates. Kept in one place so wording changes
// never touch flow logic.
const (
	textMenu            = "What can I do for you?"
	textPromptTime      = "Send the time for daily price checks as HH:MM, for example 18:30."
	textPromptLink      = "Send a link to the product you want to track."
	textPromptFeedback  = "Write your message and I will pass it on."
	textTimeSaved       = "Saved. Now send a link to the product you want to track."
	textTimeChanged     = "Got it. I will check your items daily at %s."
	textCreated         = "Tracking %s at %s. I will check it daily at your notify time and ping you when the price drops."
	textDeleted         = "Stopped tracking %s."
	textFeedbackThanks  = "Thanks for the feedback!"
	textListEmpty       = "You are not tracking anything yet."
	textListHeader      = "Your items:"
	textCheckStarted    = "Checking %d item(s) now, I will message you if anything changed."
	textCheckTooSoon    = "Too soon. On the %s tariff a manual check is available every %s."
	textSupportProject  = "Glad you like the bot! You can support the project here: https://pay.cloudtips.ru/p/whatsthepricenow"
	textCapacityError   = "You already track the maximum of %d items. Remove one first."
	textTimeFormatError = "That does not look like HH:MM. Try again, for example 09:00."
	textURLError        = "That does not look like a link. Send the product page URL."
	textUnsupported     = "I cannot track this shop yet. Supported shops: vinylbox.ru, pult.ru, doctorhead.ru, plastinka.com, korobkavinila.ru."
	textFetchFailed     = "I could not read the price from that page. Check the link or try again later."
	textGenericError    = "Something went wrong, please try again."
)
