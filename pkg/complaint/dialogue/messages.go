package dialogue

// User-facing texts of the complaint dialogue.
const (
	msgAskName    = "To file your complaint, I'll need some information. What is your name?"
	msgAskPhone   = "Thank you. What is your phone number? Please enter a 10-digit number without spaces or special characters."
	msgAskEmail   = "Got it. Please provide your email address in the format name@example.com."
	msgAskDetails = "Thanks. Now, please describe your complaint in detail."

	msgInvalidName  = "Please enter just your name (one to three words, without numbers or email addresses)."
	msgInvalidPhone = "Oops! The number you entered is not a valid phone number. Please enter a 10-digit phone number (e.g., 1234567890)."
	msgInvalidEmail = "Oops! The email address you entered is not valid. Please enter a valid email address (e.g., name@example.com)."

	msgRegistered     = "Your complaint has been registered with ID: %s. You'll hear back from us soon."
	msgSubmitFailed   = "There was an issue registering your complaint: %v. Send any message to try again, or type \"cancel\" to discard it."
	msgFilingCanceled = "Okay, I've discarded your complaint. How else can I help?"
	msgStillFiling    = "I'm processing your complaint. Could you please provide the requested information?"

	msgNoComplaintID     = "I couldn't identify a complaint ID in your message. Please provide a valid complaint ID."
	msgComplaintNotFound = "I couldn't find any complaint with ID: %s. Please verify the ID and try again."

	msgDocumentUnavailable = "Sorry, I couldn't look that up right now. Please try again in a moment."
)

// Greeting opens every conversation.
const Greeting = "How can I assist you?"
